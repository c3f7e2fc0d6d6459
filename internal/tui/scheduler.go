package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// timerFiredMsg is delivered when a scheduled timer elapses.
type timerFiredMsg struct {
	id uint64
}

// TickScheduler implements editor.Scheduler on top of the Bubble Tea event
// loop. After only records a tea.Tick command; the model returns the queued
// commands from Update via Drain, and the fire function runs when the
// resulting timerFiredMsg comes back through Update. Fire functions therefore
// always run on the UI goroutine.
type TickScheduler struct {
	nextID uint64
	timers map[uint64]func()
	queued []tea.Cmd
}

// NewTickScheduler creates an empty scheduler.
func NewTickScheduler() *TickScheduler {
	return &TickScheduler{timers: make(map[uint64]func())}
}

// After implements editor.Scheduler.
func (s *TickScheduler) After(d time.Duration, fire func()) func() {
	s.nextID++
	id := s.nextID
	s.timers[id] = fire
	s.queued = append(s.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return timerFiredMsg{id: id}
	}))

	return func() { delete(s.timers, id) }
}

// Drain returns the commands queued since the last call.
func (s *TickScheduler) Drain() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := s.queued
	s.queued = nil
	return tea.Batch(cmds...)
}

// Fire runs the timer identified by msg. Stopped timers are ignored.
func (s *TickScheduler) Fire(msg timerFiredMsg) bool {
	fire, ok := s.timers[msg.id]
	if !ok {
		return false
	}
	delete(s.timers, msg.id)
	fire()
	return true
}

// Active returns the number of timers that have not fired or been stopped.
func (s *TickScheduler) Active() int {
	return len(s.timers)
}
