// Package timer tracks how long the user has been actively solving one attempt.
//
// Only the phase, the start instant and the frozen elapsed value are stored.
// Elapsed time is derived from the clock whenever it is read, so the display
// refresh rate never affects what is measured.
package timer

import (
	"fmt"
	"time"
)

// Phase is the lifecycle state of a Timer.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Snapshot is a read-only view of a Timer at one instant.
type Snapshot struct {
	Phase     Phase
	StartedAt time.Time
	Elapsed   time.Duration
}

// Timer is not safe for concurrent use; its owner serialises access.
type Timer struct {
	now       func() time.Time
	phase     Phase
	startedAt time.Time
	frozen    time.Duration
}

// New creates an idle timer. A nil clock means time.Now.
func New(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now}
}

// Start moves idle to running and records the start instant.
// It returns false when the timer was not idle.
func (t *Timer) Start() bool {
	if t.phase != PhaseIdle {
		return false
	}
	t.phase = PhaseRunning
	t.startedAt = t.now()
	t.frozen = 0
	return true
}

// Stop freezes a running timer. Stopping an idle or stopped timer does nothing.
func (t *Timer) Stop() bool {
	if t.phase != PhaseRunning {
		return false
	}
	t.frozen = t.now().Sub(t.startedAt)
	t.phase = PhaseStopped
	return true
}

// Reset returns the timer to idle for a new attempt.
func (t *Timer) Reset() {
	t.phase = PhaseIdle
	t.startedAt = time.Time{}
	t.frozen = 0
}

func (t *Timer) Phase() Phase {
	return t.phase
}

func (t *Timer) StartedAt() time.Time {
	return t.startedAt
}

// Elapsed is wall-clock time since start while running, the frozen value once stopped.
func (t *Timer) Elapsed() time.Duration {
	switch t.phase {
	case PhaseRunning:
		d := t.now().Sub(t.startedAt)
		if d < 0 {
			return 0
		}
		return d
	case PhaseStopped:
		return t.frozen
	default:
		return 0
	}
}

func (t *Timer) Snapshot() Snapshot {
	return Snapshot{Phase: t.phase, StartedAt: t.startedAt, Elapsed: t.Elapsed()}
}

// Format renders d as MM:SS.CC. Minutes are not capped and there is no hour field.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	totalSeconds := ms / 1000
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60
	centis := (ms % 1000) / 10
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, centis)
}
