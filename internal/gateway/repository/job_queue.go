package repository

import (
	"context"
	"encoding/json"
	"time"

	"dvorak/internal/common/cache"
	"dvorak/internal/judge/model"
	appErr "dvorak/pkg/errors"
)

// DefaultQueueKey is the Redis list graders consume from.
const DefaultQueueKey = "judge:queue"

// JobQueue pushes judge jobs onto a Redis list, newest at the head.
type JobQueue struct {
	cache   cache.ListOps
	key     string
	timeout time.Duration
}

func NewJobQueue(cacheClient cache.ListOps, key string, timeout time.Duration) *JobQueue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &JobQueue{cache: cacheClient, key: key, timeout: timeout}
}

func (q *JobQueue) Enqueue(ctx context.Context, job model.JudgeJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return appErr.Wrapf(err, appErr.InternalServerError, "encode judge job failed")
	}
	ctx, cancel := q.withTimeout(ctx)
	defer cancel()
	if err := q.cache.LPush(ctx, q.key, string(data)); err != nil {
		return appErr.Wrapf(err, appErr.CacheError, "enqueue judge job failed")
	}
	return nil
}

func (q *JobQueue) Len(ctx context.Context) (int64, error) {
	ctx, cancel := q.withTimeout(ctx)
	defer cancel()
	n, err := q.cache.LLen(ctx, q.key)
	if err != nil {
		return 0, appErr.Wrapf(err, appErr.CacheError, "read judge queue length failed")
	}
	return n, nil
}

func (q *JobQueue) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, q.timeout)
}
