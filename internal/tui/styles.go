package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/meshcfg/internal/urls"
	"github.com/muurk/meshcfg/internal/version"
)

// AppName is shown in the header.
const AppName = "MESHCFG"

// Layout constants
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#67EA94") // Meshtastic green
	SecondaryColor = lipgloss.Color("#43BF6D")
	WarningColor   = lipgloss.Color("#FFA500")
	ErrorColor     = lipgloss.Color("#FF5F5F")

	TextColor   = lipgloss.Color("#FFFFFF")
	SubtleColor = lipgloss.Color("#626262")
	BorderColor = lipgloss.Color("#67EA94")
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// Row styles for the field list
	RowStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(TextColor)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Bold(true).
			MarginTop(1)

	FieldErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			PaddingLeft(6)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// Status line badges
	PendingBadgeStyle = lipgloss.NewStyle().
				Foreground(WarningColor).
				Bold(true)

	SyncedBadgeStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor)

	ErrorBoxStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor).
			Padding(0, 1)
)

// RenderTitle renders a title with consistent styling
func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

// RenderSubtitle renders a subtitle with consistent styling
func RenderSubtitle(text string) string {
	return SubtitleStyle.Render(text)
}

// RenderRow renders a field row with a selection cursor.
func RenderRow(text string, selected bool) string {
	if selected {
		return SelectedRowStyle.Render("→ " + text)
	}
	return RowStyle.Render(text)
}

// RenderCheckbox renders a boolean field value.
func RenderCheckbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// BuildHeaderContent creates header content with app name, node and version.
func BuildHeaderContent(node string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + version.Version)

	parts := []string{left}
	if node != "" {
		parts = append(parts, " ", lipgloss.NewStyle().Foreground(PrimaryColor).Render(node))
	}
	parts = append(parts, " ", lipgloss.NewStyle().Foreground(SubtleColor).Render(strings.TrimPrefix(urls.Project, "https://")))

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// ContentWidth clamps the usable width inside the container.
func ContentWidth(terminalWidth int) int {
	w := terminalWidth - 4
	if w < MinTerminalWidth-4 {
		w = MinTerminalWidth - 4
	}
	if w > MaxContentWidth {
		w = MaxContentWidth
	}
	return w
}

// RenderApplicationContainer wraps a screen with the header and a footer
// holding context-sensitive help. A zero size (before the first
// tea.WindowSizeMsg) renders without the outer frame.
func RenderApplicationContainer(content, footerText, node string, terminalWidth, terminalHeight int) string {
	if terminalWidth == 0 || terminalHeight == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, BuildHeaderContent(node), "", content, "", footerText)
	}

	width := ContentWidth(terminalWidth)

	header := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(width).
		Padding(0, 1).
		Render(BuildHeaderContent(node))

	footer := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Foreground(SubtleColor).
		Width(width).
		Padding(0, 1).
		Render(footerText)

	body := lipgloss.NewStyle().
		Width(width).
		Padding(1, 1).
		Render(content)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}
