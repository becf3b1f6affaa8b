// Package orchestrator drives one user's attempt at a problem: it owns the
// code buffer and solve timer, dispatches submissions to the judge gateway,
// polls for their verdicts and publishes every state change to subscribers.
//
// All state lives behind a single mutex. Network calls never run while it is
// held, so edits and selection changes stay responsive during grading.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"dvorak/internal/judge/attempt"
	"dvorak/internal/judge/model"
	"dvorak/internal/judge/timer"
	"dvorak/internal/judge/verdict"
	appErr "dvorak/pkg/errors"
	"dvorak/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	DefaultPollInterval   = 800 * time.Millisecond
	DefaultMaxPollBackoff = 5 * time.Second

	readyMessage = "ready."
)

// Gateway is the remote judge as seen by the orchestrator.
type Gateway interface {
	Submit(ctx context.Context, req model.SubmitRequest) (model.SubmitResponse, error)
	Result(ctx context.Context, jobID string) (model.ResultResponse, error)
}

// Config tunes polling. Zero values fall back to defaults; zero limits mean unlimited.
type Config struct {
	PollInterval    time.Duration
	MaxPollBackoff  time.Duration
	MaxPollFailures int
	MaxPollDuration time.Duration
	Selection       attempt.Selection
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxPollBackoff <= 0 {
		c.MaxPollBackoff = DefaultMaxPollBackoff
	}
	if c.MaxPollBackoff < c.PollInterval {
		c.MaxPollBackoff = c.PollInterval
	}
	if !c.Selection.Language.Valid() {
		c.Selection.Language = attempt.LanguagePython
	}
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now for the solve timer.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// SubmissionView is the presentation copy of a submission.
type SubmissionView struct {
	Seq     uint64
	JobID   string
	Phase   Phase
	Verdict *verdict.Verdict
	Err     string
}

// Snapshot is everything the presentation layer needs to render one frame.
type Snapshot struct {
	Version     uint64
	Selection   attempt.Selection
	InitialCode string
	Code        string
	Timer       timer.Snapshot
	Submission  *SubmissionView
	Status      verdict.Code
	Emphasis    verdict.Emphasis
	Message     string
}

// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	gateway Gateway
	cfg     Config
	now     func() time.Time

	mu          sync.Mutex
	attempt     *attempt.Attempt
	generation  uint64
	seq         uint64
	active      *submission
	last        *submission
	status      verdict.Code
	message     string
	version     uint64
	subscribers map[uint64]chan Snapshot
	nextSubID   uint64
	closed      bool

	wg sync.WaitGroup
}

func New(gateway Gateway, cfg Config, opts ...Option) *Orchestrator {
	cfg.applyDefaults()
	o := &Orchestrator{
		gateway:     gateway,
		cfg:         cfg,
		now:         time.Now,
		status:      verdict.CodeReady,
		message:     readyMessage,
		subscribers: make(map[uint64]chan Snapshot),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.attempt = attempt.New(cfg.Selection, o.now)
	return o
}

// Select switches to sel. Re-selecting the current pair keeps the attempt.
func (o *Orchestrator) Select(sel attempt.Selection) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selectLocked(sel)
}

// SelectProblem changes only the problem component of the selection.
func (o *Orchestrator) SelectProblem(problemID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	sel := o.attempt.Selection
	sel.ProblemID = problemID
	return o.selectLocked(sel)
}

// SelectLanguage changes only the language component of the selection.
func (o *Orchestrator) SelectLanguage(lang attempt.Language) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	sel := o.attempt.Selection
	sel.Language = lang
	return o.selectLocked(sel)
}

// selectLocked resets to sel unless it is already the current selection.
// The read of the current selection and the reset happen under one lock hold.
func (o *Orchestrator) selectLocked(sel attempt.Selection) error {
	if !sel.Language.Valid() {
		return appErr.Newf(appErr.LanguageNotSupported, "unsupported language %q", sel.Language)
	}
	if o.closed {
		return appErr.New(appErr.OrchestratorClosed)
	}
	if sel == o.attempt.Selection {
		return nil
	}
	o.resetLocked(sel)
	return nil
}

// Reset starts a fresh attempt for the current selection, re-arming a stopped timer.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return appErr.New(appErr.OrchestratorClosed)
	}
	o.resetLocked(o.attempt.Selection)
	return nil
}

func (o *Orchestrator) resetLocked(sel attempt.Selection) {
	o.cancelActiveLocked(appErr.New(appErr.SubmissionCancelled).WithMessage("attempt was reset"))
	o.generation++
	o.attempt = attempt.New(sel, o.now)
	o.last = nil
	logger.Debug(context.Background(), "attempt established",
		zap.String("problem_id", sel.ProblemID),
		zap.String("language", string(sel.Language)),
		zap.Uint64("generation", o.generation),
	)
	o.setStatusLocked(verdict.CodeReady, readyMessage)
}

// Edit replaces the code buffer and reports whether this edit started the timer.
func (o *Orchestrator) Edit(code string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	started := o.attempt.Edit(code)
	if started {
		logger.Debug(context.Background(), "solve timer started",
			zap.String("problem_id", o.attempt.Selection.ProblemID),
			zap.Time("started_at", o.attempt.Timer.StartedAt()),
		)
	}
	o.publishLocked()
	return started
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Subscribe returns a channel that always holds the most recent snapshot not yet
// received. Intermediate snapshots may be skipped: a completed submission followed
// at once by Select, Reset or Submit may never appear on the channel. Callers that
// must see a particular verdict should keep its Handle. The channel is closed by
// the returned cancel func or by Close.
func (o *Orchestrator) Subscribe() (<-chan Snapshot, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ch := make(chan Snapshot, 1)
	if o.closed {
		close(ch)
		return ch, func() {}
	}
	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = ch
	ch <- o.snapshotLocked()
	return ch, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if sub, ok := o.subscribers[id]; ok {
			delete(o.subscribers, id)
			close(sub)
		}
	}
}

// Close tears down the attempt, stops polling and waits for background work.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.cancelActiveLocked(appErr.New(appErr.OrchestratorClosed))
	for id, ch := range o.subscribers {
		delete(o.subscribers, id)
		close(ch)
	}
	o.mu.Unlock()
	o.wg.Wait()
	return nil
}

func (o *Orchestrator) cancelActiveLocked(reason error) {
	if o.active == nil {
		return
	}
	sub := o.active
	o.active = nil
	if sub.finishLocked(PhaseCancelled, nil, reason) {
		logger.Info(context.Background(), "submission cancelled",
			zap.Uint64("seq", sub.seq),
			zap.String("job_id", sub.jobID),
			zap.String("reason", reason.Error()),
		)
	}
}

func (o *Orchestrator) setStatusLocked(code verdict.Code, message string) {
	o.status = code
	o.message = message
	o.publishLocked()
}

func (o *Orchestrator) publishLocked() {
	o.version++
	if len(o.subscribers) == 0 {
		return
	}
	snap := o.snapshotLocked()
	for _, ch := range o.subscribers {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:     o.version,
		Selection:   o.attempt.Selection,
		InitialCode: o.attempt.InitialCode,
		Code:        o.attempt.Code,
		Timer:       o.attempt.Timer.Snapshot(),
		Status:      o.status,
		Emphasis:    verdict.Classify(o.status),
		Message:     o.message,
	}
	if o.last != nil {
		snap.Submission = o.last.viewLocked()
	}
	return snap
}
