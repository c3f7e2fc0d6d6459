package editor

import "time"

// Dispatcher coalesces bursts of snapshots into one write per window. The
// window opens on the first Schedule of a burst and is not extended by later
// calls; when it elapses the most recent snapshot is passed to the sink.
//
// A Dispatcher is not safe for concurrent use. Schedule, Cancel and the
// scheduler's fire callbacks must all run on the same event loop.
type Dispatcher[P any] struct {
	sched  Scheduler
	window time.Duration
	sink   func(P)

	pending    bool
	latest     P
	generation uint64
	stop       func()
}

// NewDispatcher creates a dispatcher writing to sink. A non-positive window
// selects DefaultWindow.
func NewDispatcher[P any](sched Scheduler, window time.Duration, sink func(P)) *Dispatcher[P] {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Dispatcher[P]{
		sched:  sched,
		window: window,
		sink:   sink,
	}
}

// Window returns the coalescing window.
func (d *Dispatcher[P]) Window() time.Duration {
	return d.window
}

// Schedule records snapshot as the value to write at the end of the current
// window, opening a window if none is pending.
func (d *Dispatcher[P]) Schedule(snapshot P) {
	d.latest = snapshot
	if d.pending {
		return
	}

	d.pending = true
	d.generation++
	gen := d.generation
	d.stop = d.sched.After(d.window, func() { d.fire(gen) })
}

// Cancel drops the pending snapshot, if any, without writing it.
func (d *Dispatcher[P]) Cancel() {
	if !d.pending {
		return
	}

	d.pending = false
	d.generation++
	var zero P
	d.latest = zero
	if d.stop != nil {
		d.stop()
		d.stop = nil
	}
}

// Pending reports whether a window is open.
func (d *Dispatcher[P]) Pending() bool {
	return d.pending
}

func (d *Dispatcher[P]) fire(gen uint64) {
	// a stop that lost the race with an already queued fire
	if !d.pending || gen != d.generation {
		return
	}

	snapshot := d.latest
	var zero P
	d.latest = zero
	d.pending = false
	d.stop = nil

	d.sink(snapshot)
}
