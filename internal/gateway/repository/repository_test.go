package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dvorak/internal/common/cache"
	"dvorak/internal/judge/model"
	"dvorak/internal/judge/verdict"
	"dvorak/internal/testutil"
	appErr "dvorak/pkg/errors"

	"github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := cache.DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	rc, err := cache.NewRedisCacheWithConfig(cfg)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func writeProblem(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write problem failed: %v", err)
	}
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, 0)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Set("c", 3, 0)

	_, ok := c.Get("b")
	testutil.AssertFalse(t, ok, "least recently used entry is evicted")
	v, ok := c.Get("a")
	testutil.AssertTrue(t, ok, "recently read entry survives")
	testutil.AssertEqual(t, v, 1)
	testutil.AssertEqual(t, c.Len(), 2)

	c.Delete("a")
	testutil.AssertEqual(t, c.Len(), 1)
}

func TestLRUCacheExpires(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewLRUCache[string](4, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v", 0)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected fresh entry")
	}
	now = now.Add(2 * time.Minute)
	_, ok := c.Get("k")
	testutil.AssertFalse(t, ok, "entry past its ttl is dropped")
	testutil.AssertEqual(t, c.Len(), 0)
}

func TestProblemRepositoryList(t *testing.T) {
	dir := t.TempDir()
	writeProblem(t, dir, "sum.json", `{"id":"sum","title":"A+B"}`)
	writeProblem(t, dir, "echo.json", `{"title":"Echo"}`)
	writeProblem(t, dir, "broken.json", `{not json`)
	writeProblem(t, dir, "notes.txt", `ignored`)

	repo := NewProblemRepository(dir, []string{"python", "cpp"})
	problems, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(problems) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(problems))
	}
	testutil.AssertEqual(t, problems[0].ID, "echo")
	testutil.AssertEqual(t, problems[1].ID, "sum")
	testutil.AssertEqual(t, problems[1].Title, "A+B")
	testutil.AssertEqual(t, len(problems[1].Languages), 2)
}

func TestProblemRepositoryGet(t *testing.T) {
	dir := t.TempDir()
	writeProblem(t, dir, "sum.json", `{"id":"sum","title":"A+B","description":"add","time_limit_ms":1000}`)
	writeProblem(t, dir, "bad.json", `[]`)
	repo := NewProblemRepository(dir, nil)
	ctx := context.Background()

	detail, err := repo.Get(ctx, "sum")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	testutil.AssertEqual(t, detail.Description, "add")
	testutil.AssertEqual(t, detail.TimeLimitMs, 1000)
	testutil.AssertEqual(t, detail.MemoryLimitMB, model.DefaultMemoryLimitMB)

	_, err = repo.Get(ctx, "missing")
	testutil.AssertEqual(t, appErr.GetCode(err), appErr.ProblemNotFound)

	_, err = repo.Get(ctx, "../etc/passwd")
	testutil.AssertEqual(t, appErr.GetCode(err), appErr.ProblemNotFound)

	_, err = repo.Get(ctx, "bad")
	testutil.AssertEqual(t, appErr.GetCode(err), appErr.ProblemInvalid)
}

func TestJobQueueEnqueue(t *testing.T) {
	rc, mr := newTestCache(t)
	queue := NewJobQueue(rc, "", time.Second)
	ctx := context.Background()

	job := model.JudgeJob{
		Type:    model.JobTypeJudge,
		JobID:   "job-1",
		Payload: model.SubmitRequest{ProblemID: "sum", Language: "python", Code: "print(1)"},
	}
	if err := queue.Enqueue(ctx, job); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	n, err := queue.Len(ctx)
	if err != nil {
		t.Fatalf("len failed: %v", err)
	}
	testutil.AssertEqual(t, n, int64(1))

	items, err := mr.List(DefaultQueueKey)
	if err != nil {
		t.Fatalf("read list failed: %v", err)
	}
	var got model.JudgeJob
	testutil.MustUnmarshalJSON(t, []byte(items[0]), &got)
	testutil.AssertEqual(t, got.JobID, "job-1")
	testutil.AssertEqual(t, got.Payload.Code, "print(1)")
}

func TestJobQueueCacheFailure(t *testing.T) {
	rc, mr := newTestCache(t)
	queue := NewJobQueue(rc, "q", time.Second)
	mr.SetError("ERR injected failure")

	err := queue.Enqueue(context.Background(), model.JudgeJob{JobID: "x"})
	testutil.AssertEqual(t, appErr.GetCode(err), appErr.CacheError)
}

func TestResultRepository(t *testing.T) {
	rc, mr := newTestCache(t)
	local := NewLRUCache[verdict.Verdict](8, time.Minute)
	repo := NewResultRepository(rc, local, time.Minute, time.Second)
	ctx := context.Background()

	_, ok, err := repo.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	testutil.AssertFalse(t, ok, "no verdict yet")

	caseNo := 2
	if err := repo.Save(ctx, "job-1", verdict.Verdict{Result: verdict.CodeWA, Case: &caseNo, Got: "3", Exp: "4"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	testutil.AssertEqual(t, mr.TTL(ResultKey("job-1")), time.Minute)

	v, ok, err := repo.Get(ctx, "job-1")
	if err != nil || !ok {
		t.Fatalf("expected verdict, ok=%v err=%v", ok, err)
	}
	testutil.AssertEqual(t, v.Result, verdict.CodeWA)
	testutil.AssertEqual(t, v.CaseIndex(), 2)
	testutil.AssertEqual(t, local.Len(), 1)

	// served from the local cache once redis forgets it
	mr.Del(ResultKey("job-1"))
	v, ok, _ = repo.Get(ctx, "job-1")
	testutil.AssertTrue(t, ok, "cached verdict survives")
	testutil.AssertEqual(t, v.Exp, "4")
}

func TestResultRepositoryInvalidJSON(t *testing.T) {
	rc, mr := newTestCache(t)
	repo := NewResultRepository(rc, nil, 0, time.Second)
	if err := mr.Set(ResultKey("job-2"), "{oops"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, _, err := repo.Get(context.Background(), "job-2")
	testutil.AssertEqual(t, appErr.GetCode(err), appErr.InternalServerError)

	raw, _ := json.Marshal(verdict.Verdict{Result: verdict.CodeAC})
	_ = mr.Set(ResultKey("job-3"), string(raw))
	v, ok, err := repo.Get(context.Background(), "job-3")
	testutil.AssertTrue(t, err == nil && ok, "valid verdict is returned")
	testutil.AssertTrue(t, v.Accepted(), "verdict is accepted")
}
