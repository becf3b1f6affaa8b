package orchestrator

import (
	"context"

	"dvorak/internal/judge/verdict"
)

// Phase is the lifecycle state of one submission.
type Phase int

const (
	PhasePending Phase = iota
	PhasePolling
	PhaseCompleted
	PhaseFailedToSubmit
	PhaseCancelled
	PhaseAbandoned
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhasePolling:
		return "polling"
	case PhaseCompleted:
		return "completed"
	case PhaseFailedToSubmit:
		return "failed-to-submit"
	case PhaseCancelled:
		return "cancelled"
	case PhaseAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (p Phase) Terminal() bool {
	return p >= PhaseCompleted
}

// submission is one graded-request lifecycle. Mutable fields are guarded by Orchestrator.mu.
type submission struct {
	seq        uint64
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}

	jobID   string
	phase   Phase
	verdict *verdict.Verdict
	err     error
}

func newSubmission(seq, generation uint64) *submission {
	ctx, cancel := context.WithCancel(context.Background())
	return &submission{
		seq:        seq,
		generation: generation,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		phase:      PhasePending,
	}
}

// finishLocked moves the submission to a terminal phase exactly once and stops
// any work bound to its context.
func (s *submission) finishLocked(phase Phase, v *verdict.Verdict, err error) bool {
	if s.phase.Terminal() {
		return false
	}
	s.phase = phase
	s.verdict = v
	s.err = err
	s.cancel()
	close(s.done)
	return true
}

func (s *submission) viewLocked() *SubmissionView {
	view := &SubmissionView{
		Seq:   s.seq,
		JobID: s.jobID,
		Phase: s.phase,
	}
	if s.verdict != nil {
		v := *s.verdict
		view.Verdict = &v
	}
	if s.err != nil {
		view.Err = s.err.Error()
	}
	return view
}

// Handle observes one submission. It never changes orchestrator state.
type Handle struct {
	o *Orchestrator
	s *submission
}

func (h *Handle) Seq() uint64 {
	return h.s.seq
}

func (h *Handle) JobID() string {
	h.o.mu.Lock()
	defer h.o.mu.Unlock()
	return h.s.jobID
}

func (h *Handle) Phase() Phase {
	h.o.mu.Lock()
	defer h.o.mu.Unlock()
	return h.s.phase
}

// Done is closed once the submission reaches a terminal phase.
func (h *Handle) Done() <-chan struct{} {
	return h.s.done
}

// Wait blocks until the verdict is applied, the submission ends without one, or ctx ends.
func (h *Handle) Wait(ctx context.Context) (verdict.Verdict, error) {
	select {
	case <-h.s.done:
	case <-ctx.Done():
		return verdict.Verdict{}, ctx.Err()
	}
	h.o.mu.Lock()
	defer h.o.mu.Unlock()
	if h.s.verdict != nil {
		return *h.s.verdict, nil
	}
	return verdict.Verdict{}, h.s.err
}
