package service

import (
	"context"
	"time"

	"dvorak/internal/judge/attempt"
	"dvorak/internal/judge/model"
	"dvorak/internal/judge/verdict"
	appErr "dvorak/pkg/errors"
	"dvorak/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultMaxCodeBytes = 64 * 1024

// ProblemStore is the read side of the problem catalog.
type ProblemStore interface {
	List(ctx context.Context) ([]model.ProblemSummary, error)
	Get(ctx context.Context, id string) (model.ProblemDetail, error)
}

// JobQueue hands jobs to graders.
type JobQueue interface {
	Enqueue(ctx context.Context, job model.JudgeJob) error
	Len(ctx context.Context) (int64, error)
}

// ResultStore looks up finished verdicts.
type ResultStore interface {
	Get(ctx context.Context, jobID string) (verdict.Verdict, bool, error)
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JudgeServiceConfig bounds what the gateway accepts.
type JudgeServiceConfig struct {
	MaxCodeBytes  int
	MaxQueueDepth int64 // 0 disables the check
	PingTimeout   time.Duration
}

// JudgeService implements the gateway contract on top of a problem directory
// and a Redis job queue.
type JudgeService struct {
	problems ProblemStore
	queue    JobQueue
	results  ResultStore
	health   Pinger
	cfg      JudgeServiceConfig
	newJobID func() string
}

func NewJudgeService(problems ProblemStore, queue JobQueue, results ResultStore, health Pinger, cfg JudgeServiceConfig) *JudgeService {
	if cfg.MaxCodeBytes <= 0 {
		cfg.MaxCodeBytes = DefaultMaxCodeBytes
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = time.Second
	}
	return &JudgeService{
		problems: problems,
		queue:    queue,
		results:  results,
		health:   health,
		cfg:      cfg,
		newJobID: uuid.NewString,
	}
}

func (s *JudgeService) ListProblems(ctx context.Context) ([]model.ProblemSummary, error) {
	return s.problems.List(ctx)
}

func (s *JudgeService) GetProblem(ctx context.Context, id string) (model.ProblemDetail, error) {
	return s.problems.Get(ctx, id)
}

// Submit validates the request against the catalog and enqueues a judge job.
func (s *JudgeService) Submit(ctx context.Context, req model.SubmitRequest) (model.SubmitResponse, error) {
	if req.ProblemID == "" {
		return model.SubmitResponse{}, appErr.New(appErr.RequiredFieldEmpty).WithMessage("problem_id is required")
	}
	lang, err := attempt.ParseLanguage(req.Language)
	if err != nil {
		return model.SubmitResponse{}, err
	}
	req.Language = string(lang)
	if len(req.Code) > s.cfg.MaxCodeBytes {
		return model.SubmitResponse{}, appErr.Newf(appErr.CodeTooLarge, "code is %d bytes, limit is %d", len(req.Code), s.cfg.MaxCodeBytes)
	}
	if _, err := s.problems.Get(ctx, req.ProblemID); err != nil {
		return model.SubmitResponse{}, err
	}
	if s.cfg.MaxQueueDepth > 0 {
		depth, err := s.queue.Len(ctx)
		if err != nil {
			return model.SubmitResponse{}, err
		}
		if depth >= s.cfg.MaxQueueDepth {
			return model.SubmitResponse{}, appErr.New(appErr.JudgeQueueFull).WithDetail("depth", depth)
		}
	}

	job := model.JudgeJob{
		Type:    model.JobTypeJudge,
		JobID:   s.newJobID(),
		Payload: req,
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return model.SubmitResponse{}, err
	}
	logger.Info(ctx, "judge job enqueued",
		zap.String("job_id", job.JobID),
		zap.String("problem_id", req.ProblemID),
		zap.String("language", req.Language),
		zap.Int("code_bytes", len(req.Code)),
	)
	return model.SubmitResponse{OK: true, JobID: job.JobID}, nil
}

// Result returns done=false until a grader has stored the verdict.
func (s *JudgeService) Result(ctx context.Context, jobID string) (model.ResultResponse, error) {
	if jobID == "" {
		return model.ResultResponse{}, appErr.New(appErr.RequiredFieldEmpty).WithMessage("job_id is required")
	}
	v, ok, err := s.results.Get(ctx, jobID)
	if err != nil {
		return model.ResultResponse{}, err
	}
	if !ok {
		return model.ResultResponse{Done: false}, nil
	}
	return model.ResultResponse{Done: true, Result: &v}, nil
}

// Health never fails; an unreachable backend is reported in the body.
func (s *JudgeService) Health(ctx context.Context) model.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PingTimeout)
	defer cancel()
	if err := s.health.Ping(ctx); err != nil {
		return model.HealthResponse{OK: false, Err: err.Error()}
	}
	return model.HealthResponse{OK: true}
}
