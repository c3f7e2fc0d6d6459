package editor

import (
	"testing"
	"time"
)

type write struct {
	at    time.Duration
	value string
}

func newRecordingDispatcher(clock *virtualClock, window time.Duration) (*Dispatcher[string], *[]write) {
	var writes []write
	d := NewDispatcher(clock, window, func(v string) {
		writes = append(writes, write{at: clock.now, value: v})
	})
	return d, &writes
}

func TestDispatcherCoalescesBurst(t *testing.T) {
	clock := &virtualClock{}
	d, writes := newRecordingDispatcher(clock, 500*time.Millisecond)

	d.Schedule("M1")
	clock.AdvanceTo(100 * time.Millisecond)
	d.Schedule("M2")
	clock.AdvanceTo(2 * time.Second)

	if len(*writes) != 1 {
		t.Fatalf("got %d writes, want 1: %v", len(*writes), *writes)
	}
	got := (*writes)[0]
	if got.at != 500*time.Millisecond {
		t.Errorf("write at %v, want 500ms", got.at)
	}
	if got.value != "M2" {
		t.Errorf("write carried %q, want M2", got.value)
	}
	if d.Pending() {
		t.Error("Pending() should be false after the flush")
	}
}

func TestDispatcherWindowNotExtended(t *testing.T) {
	clock := &virtualClock{}
	d, writes := newRecordingDispatcher(clock, 500*time.Millisecond)

	for i, at := range []time.Duration{0, 200, 400, 499} {
		clock.AdvanceTo(at * time.Millisecond)
		d.Schedule(string(rune('a' + i)))
	}
	clock.AdvanceTo(500 * time.Millisecond)

	if len(*writes) != 1 || (*writes)[0].value != "d" {
		t.Fatalf("writes = %v, want one write of %q at 500ms", *writes, "d")
	}
}

func TestDispatcherSeparateBursts(t *testing.T) {
	clock := &virtualClock{}
	d, writes := newRecordingDispatcher(clock, 500*time.Millisecond)

	d.Schedule("first")
	clock.AdvanceTo(700 * time.Millisecond)
	d.Schedule("second")
	clock.AdvanceTo(2 * time.Second)

	want := []write{{500 * time.Millisecond, "first"}, {1200 * time.Millisecond, "second"}}
	if len(*writes) != len(want) {
		t.Fatalf("writes = %v, want %v", *writes, want)
	}
	for i := range want {
		if (*writes)[i] != want[i] {
			t.Errorf("write %d = %v, want %v", i, (*writes)[i], want[i])
		}
	}
}

func TestDispatcherCancel(t *testing.T) {
	clock := &virtualClock{}
	d, writes := newRecordingDispatcher(clock, 500*time.Millisecond)

	d.Schedule("M1")
	clock.AdvanceTo(100 * time.Millisecond)
	d.Schedule("M2")
	d.Cancel()
	clock.AdvanceTo(5 * time.Second)

	if len(*writes) != 0 {
		t.Errorf("cancelled burst produced writes: %v", *writes)
	}
	if clock.active() != 0 {
		t.Errorf("cancel should stop the timer, %d still active", clock.active())
	}

	// cancel without a pending burst is a no-op
	d.Cancel()

	d.Schedule("after")
	clock.Advance(500 * time.Millisecond)
	if len(*writes) != 1 || (*writes)[0].value != "after" {
		t.Errorf("dispatcher unusable after cancel: %v", *writes)
	}
}

func TestDispatcherIgnoresStaleFire(t *testing.T) {
	var fires []func()
	sched := SchedulerFunc(func(d time.Duration, fire func()) func() {
		fires = append(fires, fire)
		// a scheduler whose stop cannot retract an already queued fire
		return func() {}
	})

	var writes []string
	d := NewDispatcher(sched, time.Second, func(v string) { writes = append(writes, v) })

	d.Schedule("stale")
	d.Cancel()
	d.Schedule("fresh")

	fires[0]()
	if len(writes) != 0 {
		t.Fatalf("stale fire wrote %v", writes)
	}
	fires[1]()
	if len(writes) != 1 || writes[0] != "fresh" {
		t.Errorf("writes = %v, want [fresh]", writes)
	}
}

func TestDispatcherForwardsEmptySnapshot(t *testing.T) {
	clock := &virtualClock{}
	d, writes := newRecordingDispatcher(clock, 0)

	if d.Window() != DefaultWindow {
		t.Errorf("Window() = %v, want %v", d.Window(), DefaultWindow)
	}

	d.Schedule("")
	clock.Advance(DefaultWindow)
	if len(*writes) != 1 {
		t.Errorf("empty snapshot should still be written, got %v", *writes)
	}
}
