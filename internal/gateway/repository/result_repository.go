package repository

import (
	"context"
	"encoding/json"
	"time"

	"dvorak/internal/common/cache"
	"dvorak/internal/judge/verdict"
	appErr "dvorak/pkg/errors"
)

const (
	resultKeyPrefix  = "result:"
	DefaultResultTTL = 600 * time.Second
)

// ResultRepository reads verdicts graders store under result:{job_id}.
// Finished verdicts never change, so hits are kept in a local LRU.
type ResultRepository struct {
	cache   cache.BasicOps
	local   *LRUCache[verdict.Verdict]
	ttl     time.Duration
	timeout time.Duration
}

func NewResultRepository(cacheClient cache.BasicOps, local *LRUCache[verdict.Verdict], ttl, timeout time.Duration) *ResultRepository {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &ResultRepository{cache: cacheClient, local: local, ttl: ttl, timeout: timeout}
}

func ResultKey(jobID string) string {
	return resultKeyPrefix + jobID
}

// Get reports ok=false while no grader has stored a verdict for jobID.
func (r *ResultRepository) Get(ctx context.Context, jobID string) (verdict.Verdict, bool, error) {
	if r.local != nil {
		if v, ok := r.local.Get(jobID); ok {
			return v, true, nil
		}
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	raw, err := r.cache.Get(ctx, ResultKey(jobID))
	if err != nil {
		return verdict.Verdict{}, false, appErr.Wrapf(err, appErr.CacheError, "read result failed")
	}
	if raw == "" {
		return verdict.Verdict{}, false, nil
	}
	var v verdict.Verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return verdict.Verdict{}, false, appErr.Wrapf(err, appErr.InternalServerError, "stored result for %s is not valid json", jobID).
			WithDetail("job_id", jobID)
	}
	if r.local != nil {
		r.local.Set(jobID, v, r.ttl)
	}
	return v, true, nil
}

// Save stores a verdict with the result TTL, the way graders publish them.
func (r *ResultRepository) Save(ctx context.Context, jobID string, v verdict.Verdict) error {
	data, err := json.Marshal(v)
	if err != nil {
		return appErr.Wrapf(err, appErr.InternalServerError, "encode result failed")
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.cache.Set(ctx, ResultKey(jobID), string(data), r.ttl); err != nil {
		return appErr.Wrapf(err, appErr.CacheError, "store result failed")
	}
	return nil
}

func (r *ResultRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
