// Package attempt holds the per-selection editing state: the starter snapshot,
// the live code buffer and the solve timer.
package attempt

import (
	"time"

	"dvorak/internal/judge/timer"
)

// Selection is the (problem, language) pair currently being attempted.
type Selection struct {
	ProblemID string   `json:"problem_id"`
	Language  Language `json:"language"`
}

// HasProblem reports whether a problem has been chosen.
func (s Selection) HasProblem() bool {
	return s.ProblemID != ""
}

// Attempt is replaced wholesale whenever the Selection changes.
// It is not safe for concurrent use.
type Attempt struct {
	Selection   Selection
	InitialCode string
	Code        string
	Timer       *timer.Timer
}

// New establishes an attempt whose baseline is the selection's starter template.
func New(sel Selection, now func() time.Time) *Attempt {
	code := Template(sel.Language)
	return &Attempt{
		Selection:   sel,
		InitialCode: code,
		Code:        code,
		Timer:       timer.New(now),
	}
}

// Edit replaces the code buffer. The timer starts on the first buffer that
// differs from the starter snapshot; the return value reports that transition.
func (a *Attempt) Edit(code string) bool {
	a.Code = code
	if code == a.InitialCode {
		return false
	}
	return a.Timer.Start()
}

// Dirty reports whether the buffer differs from the starter snapshot.
func (a *Attempt) Dirty() bool {
	return a.Code != a.InitialCode
}
