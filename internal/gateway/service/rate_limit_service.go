package service

import (
	"context"
	"time"

	"dvorak/internal/common/cache"
	appErr "dvorak/pkg/errors"
)

// RateDecision describes one fixed-window check.
type RateDecision struct {
	Limit     int
	Count     int64
	Remaining int
	ResetIn   time.Duration
}

// RateLimitService enforces fixed-window limits using Redis.
type RateLimitService struct {
	cache        cache.BasicOps
	window       time.Duration
	redisTimeout time.Duration
}

func NewRateLimitService(cacheClient cache.BasicOps, window time.Duration, redisTimeout time.Duration) *RateLimitService {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimitService{cache: cacheClient, window: window, redisTimeout: redisTimeout}
}

// Allow counts one hit against key. The first hit opens the window; a key that
// lost its expiry is given a fresh one so it cannot block forever.
func (s *RateLimitService) Allow(ctx context.Context, key string, max int, window time.Duration) (RateDecision, error) {
	decision := RateDecision{Limit: max}
	if s.cache == nil {
		return decision, appErr.New(appErr.ServiceUnavailable).WithMessage("rate limit cache is unavailable")
	}
	if max <= 0 {
		return decision, nil
	}
	if window <= 0 {
		window = s.window
	}

	ctxCache, cancel := context.WithTimeout(ctx, s.redisTimeout)
	defer cancel()

	acquired, err := s.cache.SetNX(ctxCache, key, 1, window)
	if err != nil {
		return decision, appErr.Wrapf(err, appErr.CacheError, "rate limit check failed")
	}
	decision.Count = 1
	decision.ResetIn = window
	if !acquired {
		decision.Count, err = s.cache.Incr(ctxCache, key)
		if err != nil {
			return decision, appErr.Wrapf(err, appErr.CacheError, "rate limit check failed")
		}
		ttl, ttlErr := s.cache.TTL(ctxCache, key)
		switch {
		case ttlErr != nil:
		case ttl <= 0:
			_ = s.cache.Expire(ctxCache, key, window)
		default:
			decision.ResetIn = ttl
		}
	}
	decision.Remaining = max - int(decision.Count)
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	if int(decision.Count) > max {
		return decision, appErr.New(appErr.SubmitTooFrequently).
			WithMessagef("submit limit of %d per %s exceeded", max, window).
			WithDetail("retry_after_seconds", int(decision.ResetIn.Seconds()+0.5))
	}
	return decision, nil
}
