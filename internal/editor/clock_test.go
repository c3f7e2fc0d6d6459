package editor

import (
	"sort"
	"time"
)

// virtualClock is a Scheduler driven by Advance instead of wall time.
type virtualClock struct {
	now    time.Duration
	timers []*virtualTimer
}

type virtualTimer struct {
	at      time.Duration
	fire    func()
	stopped bool
	fired   bool
}

func (c *virtualClock) After(d time.Duration, fire func()) func() {
	t := &virtualTimer{at: c.now + d, fire: fire}
	c.timers = append(c.timers, t)
	return func() { t.stopped = true }
}

// Advance moves the clock forward by d, running due timers in order.
func (c *virtualClock) Advance(d time.Duration) {
	target := c.now + d
	for {
		next := c.nextDue(target)
		if next == nil {
			break
		}
		c.now = next.at
		next.fired = true
		next.fire()
	}
	c.now = target
}

// AdvanceTo moves the clock to the absolute time at.
func (c *virtualClock) AdvanceTo(at time.Duration) {
	c.Advance(at - c.now)
}

func (c *virtualClock) nextDue(target time.Duration) *virtualTimer {
	var due []*virtualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	return due[0]
}

// active counts timers that are neither stopped nor fired.
func (c *virtualClock) active() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
