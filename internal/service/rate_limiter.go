package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/luxbridge-ai/luxbridge-auth/pkg/store"
)

// RateLimiter enforces a sliding-window request limit per caller key. The
// window rides on the shared credential store, so the limit is best effort:
// two concurrent requests can both pass under last-writer-wins, which is an
// accepted trade against holding per-key locks.
type RateLimiter struct {
	store  store.Store
	limit  int
	window time.Duration
	logger *zap.Logger
}

// NewRateLimiter creates a rate limiter allowing limit requests per window
func NewRateLimiter(s store.Store, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		store:  s,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

func rateLimitKey(key string) string {
	return "ratelimit:" + key
}

// Allow records the request and reports whether the caller is still under
// the limit. On store failure it fails open and logs.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	storeKey := rateLimitKey(key)
	now := time.Now()
	cutoff := now.Add(-rl.window)

	var stamps []time.Time
	raw, err := rl.store.Get(ctx, storeKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		rl.logger.Warn("rate limiter store read failed", zap.Error(err))
		return true
	}
	if err == nil {
		if err := json.Unmarshal([]byte(raw), &stamps); err != nil {
			stamps = nil
		}
	}

	live := stamps[:0]
	for _, t := range stamps {
		if t.After(cutoff) {
			live = append(live, t)
		}
	}
	if len(live) >= rl.limit {
		return false
	}

	live = append(live, now)
	data, err := json.Marshal(live)
	if err != nil {
		rl.logger.Warn("rate limiter marshal failed", zap.Error(err))
		return true
	}
	if err := rl.store.Set(ctx, storeKey, string(data), rl.window); err != nil {
		rl.logger.Warn("rate limiter store write failed", zap.Error(err))
	}
	return true
}

// Reset clears the window for a caller key.
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	if err := rl.store.Delete(ctx, rateLimitKey(key)); err != nil {
		return fmt.Errorf("failed to reset rate limit window: %w", err)
	}
	return nil
}
