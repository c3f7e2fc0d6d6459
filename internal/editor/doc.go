// Package editor implements the value pipeline behind a module configuration
// page.
//
// A page keeps three tiers of a module's value consistent:
//
//   - the remote value, last confirmed by the node and replaced wholesale
//   - the edit overlay, pending local edits held by an OverlayStore
//   - the form, the values currently displayed by this page
//
// The Resolver merges overlay over remote to produce the form's defaults. The
// Dispatcher coalesces bursts of form changes into one overlay write per quiet
// window: the timer starts on the first change of a burst and the write
// carries the latest snapshot when it fires. Discard cancels any pending
// write, resets the form to the remote value and clears the overlay slice, in
// that order.
//
// # Lifecycle
//
//	Uninitialized -> Bound            remote value known, form initialized
//	Bound         -> Editing          first field change after being idle
//	Editing       -> Flushing -> Bound debounce window elapsed, one write
//	Bound|Editing -> Discarding -> Bound
//	*             -> Unmounted        teardown, cancels any pending write
//
// Everything in this package runs on one event loop. Timers are abstracted by
// Scheduler so the loop decides where deferred callbacks run; tests drive a
// virtual clock.
//
// # Usage Example
//
//	store := overlay.NewStore()
//	page := editor.NewPage(editor.RemoteHardwareBinding(), store, sched)
//	page.Mount(remote)
//
//	editor.SetField(page.Form(), editor.EnabledField, true)
//	// ...500ms later the overlay holds {enabled: true}
//
//	page.Discard()
//	page.Unmount()
package editor
