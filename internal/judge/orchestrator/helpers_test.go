package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"dvorak/internal/judge/attempt"
	"dvorak/internal/judge/model"
	"dvorak/internal/judge/verdict"
)

const waitTimeout = 3 * time.Second

var errUnavailable = errors.New("connection refused")

type resultStep struct {
	resp model.ResultResponse
	err  error
}

func pending() resultStep {
	return resultStep{resp: model.ResultResponse{Done: false}}
}

func done(v verdict.Verdict) resultStep {
	return resultStep{resp: model.ResultResponse{Done: true, Result: &v}}
}

func failed() resultStep {
	return resultStep{err: errUnavailable}
}

// fakeGateway hands out job ids J1, J2, ... and replays scripted result steps
// per job. The last step of a script repeats; unscripted jobs stay pending.
type fakeGateway struct {
	mu          sync.Mutex
	nextJob     int
	submitErr   error
	submitGate  chan struct{}
	submits     []model.SubmitRequest
	scripts     map[string][]resultStep
	resultCalls map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		scripts:     make(map[string][]resultStep),
		resultCalls: make(map[string]int),
	}
}

func (g *fakeGateway) script(jobID string, steps ...resultStep) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scripts[jobID] = steps
}

func (g *fakeGateway) Submit(ctx context.Context, req model.SubmitRequest) (model.SubmitResponse, error) {
	g.mu.Lock()
	gate := g.submitGate
	g.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.SubmitResponse{}, ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.submits = append(g.submits, req)
	if g.submitErr != nil {
		return model.SubmitResponse{}, g.submitErr
	}
	g.nextJob++
	return model.SubmitResponse{OK: true, JobID: fmt.Sprintf("J%d", g.nextJob)}, nil
}

func (g *fakeGateway) Result(ctx context.Context, jobID string) (model.ResultResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.resultCalls[jobID]
	g.resultCalls[jobID] = n + 1
	steps := g.scripts[jobID]
	if len(steps) == 0 {
		return model.ResultResponse{Done: false}, nil
	}
	if n >= len(steps) {
		n = len(steps) - 1
	}
	return steps[n].resp, steps[n].err
}

func (g *fakeGateway) submitCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.submits)
}

func (g *fakeGateway) pollCount(jobID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resultCalls[jobID]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestOrchestrator(t *testing.T, gw Gateway, cfg Config, clock *fakeClock) *Orchestrator {
	t.Helper()
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 2 * time.Millisecond
	}
	if cfg.MaxPollBackoff == 0 {
		cfg.MaxPollBackoff = 5 * time.Millisecond
	}
	if cfg.Selection.ProblemID == "" && cfg.Selection.Language == "" {
		cfg.Selection = attempt.Selection{ProblemID: "P1", Language: attempt.LanguagePython}
	}
	o := New(gw, cfg, WithClock(clock.Now))
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func waitVerdict(t *testing.T, h *Handle) (verdict.Verdict, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	v, err := h.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("submission %d did not finish in time", h.Seq())
	}
	return v, err
}
