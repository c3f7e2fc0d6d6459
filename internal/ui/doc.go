// Package ui renders the non-interactive output of the meshcfg commands.
//
// The full-screen editor lives in package tui. Commands such as show, scan
// and discard print once and exit; they use a Printer, which renders
// headers and result boxes with Lipgloss and sizes them to the terminal
// when writing to one.
//
// # Usage Pattern
//
//	p := ui.NewPrinter(cmd.OutOrStdout())
//	p.PrintHeader("Pending edits", "meshcfg discard", []ui.Detail{
//	    {Key: "Node", Value: "!a1b2c3d4"},
//	})
//
//	if !ui.Confirm(os.Stdin, p, "Discard pending remote hardware edits?") {
//	    return nil
//	}
//	p.PrintSuccess("Edits discarded", nil)
//
// # Logging Integration
//
// zap logging is silent unless MESHCFG_LOG_LEVEL is set, so the curated
// output is displayed cleanly.
package ui
