// Package tui implements the full-screen editor for meshcfg.
//
// The program is a single Bubble Tea model. The editor page from package
// editor runs entirely on the Bubble Tea event loop: key presses update the
// page's form, debounce timers are tea.Tick commands issued by
// TickScheduler, and remote snapshots arrive as SnapshotMsg values sent from
// the goroutine running a devicesync.Source.
//
// # Usage Example
//
//	app := tui.NewAppModel(tui.Options{Store: store, Translator: tr})
//	program := tea.NewProgram(app, tea.WithAltScreen())
//
//	go source.Run(ctx, func(s devicesync.Snapshot) {
//	    program.Send(tui.SnapshotMsg{Snapshot: s})
//	})
//
//	if _, err := program.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Keys
//
//   - ↑/↓, k/j: move between fields
//   - space/enter: toggle a switch or cycle a pin's type
//   - a / x: add or remove a pin
//   - d: discard pending edits for the module
//   - q, esc, ctrl+c: quit
package tui
