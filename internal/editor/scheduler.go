package editor

import "time"

// DefaultWindow is the quiet window used to coalesce form changes.
const DefaultWindow = 500 * time.Millisecond

// Scheduler runs fire once after d has elapsed, on the caller's event loop.
// The returned stop function prevents a not-yet-run fire and may be called
// more than once.
type Scheduler interface {
	After(d time.Duration, fire func()) (stop func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, fire func()) (stop func())

// After implements Scheduler.
func (f SchedulerFunc) After(d time.Duration, fire func()) func() {
	return f(d, fire)
}
