package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dvorak/internal/judge/model"
	"dvorak/internal/judge/verdict"
	"dvorak/internal/testutil"
	appErr "dvorak/pkg/errors"
)

type fakeProblems struct {
	problems map[string]model.ProblemDetail
}

func (f *fakeProblems) List(ctx context.Context) ([]model.ProblemSummary, error) {
	out := make([]model.ProblemSummary, 0, len(f.problems))
	for id, p := range f.problems {
		out = append(out, model.ProblemSummary{ID: id, Title: p.Title})
	}
	return out, nil
}

func (f *fakeProblems) Get(ctx context.Context, id string) (model.ProblemDetail, error) {
	p, ok := f.problems[id]
	if !ok {
		return model.ProblemDetail{}, appErr.New(appErr.ProblemNotFound)
	}
	return p, nil
}

type fakeQueue struct {
	jobs  []model.JudgeJob
	depth int64
	err   error
}

func (f *fakeQueue) Enqueue(ctx context.Context, job model.JudgeJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeQueue) Len(ctx context.Context) (int64, error) {
	return f.depth + int64(len(f.jobs)), nil
}

type fakeResults map[string]verdict.Verdict

func (f fakeResults) Get(ctx context.Context, jobID string) (verdict.Verdict, bool, error) {
	v, ok := f[jobID]
	return v, ok, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func newTestJudgeService(queue *fakeQueue, results fakeResults, cfg JudgeServiceConfig) *JudgeService {
	problems := &fakeProblems{problems: map[string]model.ProblemDetail{
		"sum": {ID: "sum", Title: "A+B"},
	}}
	svc := NewJudgeService(problems, queue, results, fakePinger{}, cfg)
	svc.newJobID = func() string { return "job-fixed" }
	return svc
}

func TestJudgeServiceSubmit(t *testing.T) {
	queue := &fakeQueue{}
	svc := newTestJudgeService(queue, fakeResults{}, JudgeServiceConfig{})

	resp, err := svc.Submit(context.Background(), model.SubmitRequest{ProblemID: "sum", Language: "C++", Code: "int main(){}"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	testutil.AssertTrue(t, resp.OK, "submit ok")
	testutil.AssertEqual(t, resp.JobID, "job-fixed")
	if len(queue.jobs) != 1 {
		t.Fatalf("expected one job, got %d", len(queue.jobs))
	}
	job := queue.jobs[0]
	testutil.AssertEqual(t, job.Type, model.JobTypeJudge)
	testutil.AssertEqual(t, job.Payload.Language, "cpp")
	testutil.AssertEqual(t, job.Payload.Code, "int main(){}")
}

func TestJudgeServiceSubmitValidation(t *testing.T) {
	tests := []struct {
		name string
		req  model.SubmitRequest
		want appErr.ErrorCode
	}{
		{"missing problem", model.SubmitRequest{Language: "python"}, appErr.RequiredFieldEmpty},
		{"unknown language", model.SubmitRequest{ProblemID: "sum", Language: "rust"}, appErr.LanguageNotSupported},
		{"unknown problem", model.SubmitRequest{ProblemID: "nope", Language: "python"}, appErr.ProblemNotFound},
		{"code too large", model.SubmitRequest{ProblemID: "sum", Language: "python", Code: strings.Repeat("x", 65)}, appErr.CodeTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &fakeQueue{}
			svc := newTestJudgeService(queue, fakeResults{}, JudgeServiceConfig{MaxCodeBytes: 64})
			_, err := svc.Submit(context.Background(), tt.req)
			testutil.AssertEqual(t, appErr.GetCode(err), tt.want)
			testutil.AssertEqual(t, len(queue.jobs), 0)
		})
	}
}

func TestJudgeServiceQueueFull(t *testing.T) {
	queue := &fakeQueue{depth: 2}
	svc := newTestJudgeService(queue, fakeResults{}, JudgeServiceConfig{MaxQueueDepth: 2})

	_, err := svc.Submit(context.Background(), model.SubmitRequest{ProblemID: "sum", Language: "python"})
	testutil.AssertEqual(t, appErr.GetCode(err), appErr.JudgeQueueFull)
	testutil.AssertEqual(t, appErr.GetCode(err).HTTPStatus(), 503)
}

func TestJudgeServiceEnqueueFailure(t *testing.T) {
	queue := &fakeQueue{err: appErr.Wrapf(errors.New("down"), appErr.CacheError, "enqueue judge job failed")}
	svc := newTestJudgeService(queue, fakeResults{}, JudgeServiceConfig{})

	_, err := svc.Submit(context.Background(), model.SubmitRequest{ProblemID: "sum", Language: "python"})
	testutil.AssertEqual(t, appErr.GetCode(err), appErr.CacheError)
}

func TestJudgeServiceResult(t *testing.T) {
	results := fakeResults{"done": {Result: verdict.CodeAC}}
	svc := newTestJudgeService(&fakeQueue{}, results, JudgeServiceConfig{})
	ctx := context.Background()

	resp, err := svc.Result(ctx, "pending")
	if err != nil {
		t.Fatalf("result failed: %v", err)
	}
	testutil.AssertFalse(t, resp.Done, "pending job is not done")
	testutil.AssertTrue(t, resp.Result == nil, "pending job has no result")

	resp, _ = svc.Result(ctx, "done")
	testutil.AssertTrue(t, resp.Done, "finished job is done")
	testutil.AssertEqual(t, resp.Result.Result, verdict.CodeAC)

	_, err = svc.Result(ctx, "")
	testutil.AssertEqual(t, appErr.GetCode(err), appErr.RequiredFieldEmpty)
}

func TestJudgeServiceHealth(t *testing.T) {
	svc := newTestJudgeService(&fakeQueue{}, fakeResults{}, JudgeServiceConfig{})
	testutil.AssertTrue(t, svc.Health(context.Background()).OK, "healthy backend")

	svc.health = fakePinger{err: errors.New("dial tcp: connection refused")}
	health := svc.Health(context.Background())
	testutil.AssertFalse(t, health.OK, "unreachable backend")
	testutil.AssertEqual(t, health.Err, "dial tcp: connection refused")
}
