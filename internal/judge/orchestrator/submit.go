package orchestrator

import (
	"context"
	"fmt"
	"time"

	"dvorak/internal/judge/model"
	"dvorak/internal/judge/verdict"
	appErr "dvorak/pkg/errors"
	"dvorak/pkg/utils/contextkey"
	"dvorak/pkg/utils/logger"

	"go.uber.org/zap"
)

// Submit sends the current code for grading and starts polling its result.
// Any submission still in flight for this attempt is cancelled first, so only
// the newest job can ever publish a verdict. The returned error distinguishes a
// missing selection from a failed submit call; graded failures are not errors.
func (o *Orchestrator) Submit(ctx context.Context) (*Handle, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, appErr.New(appErr.OrchestratorClosed)
	}
	sel := o.attempt.Selection
	if !sel.HasProblem() {
		err := appErr.New(appErr.NoProblemSelected)
		o.setStatusLocked(verdict.CodeNoSelection, err.Error())
		o.mu.Unlock()
		return nil, err
	}
	o.cancelActiveLocked(appErr.New(appErr.SubmissionSuperseded))
	o.seq++
	sub := newSubmission(o.seq, o.generation)
	o.active = sub
	o.last = sub
	req := model.SubmitRequest{
		ProblemID: sel.ProblemID,
		Language:  string(sel.Language),
		Code:      o.attempt.Code,
	}
	o.setStatusLocked(verdict.CodeSubmitting, "submitting...")
	o.mu.Unlock()

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(sub.ctx, cancel)
	defer stop()

	start := time.Now()
	resp, err := o.gateway.Submit(reqCtx, req)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != sub {
		logger.Info(ctx, "submit response discarded",
			zap.Uint64("seq", sub.seq),
			zap.String("job_id", resp.JobID),
		)
		return nil, sub.err
	}
	if err == nil && resp.JobID == "" {
		err = appErr.New(appErr.GatewayProtocol).WithMessage("gateway did not return a job id")
	}
	if err != nil {
		o.active = nil
		failure := appErr.Wrapf(err, appErr.SubmitFailed, "submit failed: %v", err)
		sub.finishLocked(PhaseFailedToSubmit, nil, failure)
		o.setStatusLocked(verdict.CodeSubmitFailed, failure.Error())
		logger.Warn(ctx, "submit failed",
			zap.String("problem_id", req.ProblemID),
			zap.String("language", req.Language),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, failure
	}

	sub.jobID = resp.JobID
	sub.phase = PhasePolling
	o.setStatusLocked(verdict.CodeGrading, fmt.Sprintf("submitted. job_id=%s, grading...", resp.JobID))
	logger.Info(ctx, "submission accepted by gateway",
		zap.Uint64("seq", sub.seq),
		zap.String("job_id", resp.JobID),
		zap.String("problem_id", req.ProblemID),
		zap.String("language", req.Language),
		zap.Duration("latency", time.Since(start)),
	)
	o.wg.Add(1)
	go o.poll(sub, resp.JobID)
	return &Handle{o: o, s: sub}, nil
}

// poll queries the job on a fixed interval until it completes or sub is cancelled.
// Transport failures are retried with backoff unless a failure limit is configured.
func (o *Orchestrator) poll(sub *submission, jobID string) {
	defer o.wg.Done()
	ctx := context.WithValue(sub.ctx, contextkey.JobID, jobID)

	var deadline <-chan time.Time
	if o.cfg.MaxPollDuration > 0 {
		limit := time.NewTimer(o.cfg.MaxPollDuration)
		defer limit.Stop()
		deadline = limit.C
	}

	wait := time.NewTimer(o.cfg.PollInterval)
	defer wait.Stop()
	failures := 0
	polls := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			o.abandon(ctx, sub, appErr.Newf(appErr.PollTimeout, "no result for job %s after %s", jobID, o.cfg.MaxPollDuration))
			return
		case <-wait.C:
		}

		polls++
		resp, err := o.gateway.Result(ctx, jobID)
		if ctx.Err() != nil {
			return
		}
		if err == nil && resp.Done && resp.Result == nil {
			err = appErr.New(appErr.GatewayProtocol).WithMessage("completed result without verdict")
		}
		if err != nil {
			failures++
			logger.Warn(ctx, "poll result failed",
				zap.Int("failures", failures),
				zap.Error(err),
			)
			if o.cfg.MaxPollFailures > 0 && failures >= o.cfg.MaxPollFailures {
				o.abandon(ctx, sub, appErr.Wrapf(err, appErr.PollFailed, "could not retrieve result for job %s: %v", jobID, err))
				return
			}
			wait.Reset(pollBackoff(failures, o.cfg.PollInterval, o.cfg.MaxPollBackoff))
			continue
		}
		failures = 0
		if resp.Done {
			o.complete(ctx, sub, *resp.Result, polls)
			return
		}
		wait.Reset(o.cfg.PollInterval)
	}
}

// complete applies a verdict at most once, and only for the active submission.
func (o *Orchestrator) complete(ctx context.Context, sub *submission, v verdict.Verdict, polls int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != sub || sub.generation != o.generation || sub.phase != PhasePolling {
		logger.Debug(ctx, "stale result discarded", zap.Uint64("seq", sub.seq))
		return false
	}
	o.active = nil
	stopped := false
	if v.Accepted() {
		stopped = o.attempt.Timer.Stop()
	}
	sub.finishLocked(PhaseCompleted, &v, nil)
	o.setStatusLocked(v.Result, verdict.Format(v))
	logger.Info(ctx, "verdict received",
		zap.Uint64("seq", sub.seq),
		zap.String("result", string(v.Result)),
		zap.Int("case", v.CaseIndex()),
		zap.Int("polls", polls),
		zap.Bool("timer_stopped", stopped),
	)
	return true
}

func (o *Orchestrator) abandon(ctx context.Context, sub *submission, reason error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != sub {
		return
	}
	o.active = nil
	sub.finishLocked(PhaseAbandoned, nil, reason)
	o.setStatusLocked(verdict.CodeUnavailable, reason.Error())
	logger.Warn(ctx, "stopped polling", zap.Uint64("seq", sub.seq), zap.Error(reason))
}
