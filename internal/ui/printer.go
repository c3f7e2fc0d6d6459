package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Detail is one key/value line in a header or result box. Details render in
// the order given.
type Detail struct {
	Key   string
	Value string
}

// Printer writes styled command output.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: TerminalWidth(w),
	}
}

// SetWidth overrides the detected width.
func (p *Printer) SetWidth(width int) *Printer {
	p.width = clampWidth(width)
	return p
}

// Width returns the width used for boxes.
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, details []Detail) {
	p.Println(RenderHeader(title, command, details, p.width))
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details []Detail) {
	p.Println(RenderResult(SuccessTitleStyle, SuccessColor, SuccessMarker+"  "+title, details, p.width))
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details []Detail) {
	p.Println(RenderResult(WarningTitleStyle, WarningColor, WarningMarker+"  "+title, details, p.width))
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(RenderErrorBox(title, err, troubleshooting, p.width))
}

// RenderHeader renders a command header box
func RenderHeader(title, command string, details []Detail, width int) string {
	sections := []string{
		HeaderTitleStyle.Render(strings.ToUpper(title)),
		HeaderCommandStyle.Render(command),
	}

	if len(details) > 0 {
		dividerWidth := width - 6
		if dividerWidth < 10 {
			dividerWidth = 10
		}
		sections = append(sections,
			lipgloss.NewStyle().Foreground(PrimaryColor).Render(strings.Repeat("─", dividerWidth)),
			renderDetails(details, "  "),
		)
	}

	return boxStyle(PrimaryColor, width).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// RenderResult renders a titled box of details.
func RenderResult(titleStyle lipgloss.Style, border lipgloss.Color, title string, details []Detail, width int) string {
	lines := []string{titleStyle.Render(title)}
	if len(details) > 0 {
		lines = append(lines, "", renderDetails(details, ""))
	}
	return boxStyle(border, width).Render(strings.Join(lines, "\n"))
}

// RenderErrorBox renders an error result box with troubleshooting
func RenderErrorBox(title string, err error, troubleshooting []string, width int) string {
	lines := []string{ErrorTitleStyle.Render(FailureMarker + "  " + title)}

	if err != nil {
		lines = append(lines, "", ErrorMessageStyle.Render("Error: "+err.Error()))
	}

	if len(troubleshooting) > 0 {
		lines = append(lines, "", TroubleshootingItemStyle.Render("Troubleshooting:"))
		for _, tip := range troubleshooting {
			lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
		}
	}

	return boxStyle(ErrorColor, width).Render(strings.Join(lines, "\n"))
}

func renderDetails(details []Detail, indent string) string {
	lines := make([]string, len(details))
	for i, d := range details {
		lines[i] = indent + DetailKeyStyle.Render(d.Key+":") + " " + DetailValueStyle.Render(d.Value)
	}
	return strings.Join(lines, "\n")
}
