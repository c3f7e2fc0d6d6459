package ui

import (
	"bufio"
	"io"
	"strings"
)

// Confirm asks a yes/no question and reads the answer from in. Anything but
// "y" or "yes" (case-insensitive), including EOF, is a no.
func Confirm(in io.Reader, p *Printer, question string) bool {
	p.Printf("%s %s ", WarningTitleStyle.Render(question), HeaderCommandStyle.UnsetPaddingLeft().Render("[y/N]"))

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		p.Newline()
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
