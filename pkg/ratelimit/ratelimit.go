// Package ratelimit implements fixed-window request limiting backed by redis.
//
// Every window is a separate counter key that expires when the window ends,
// so no cleanup is needed:
//
//	limiter := ratelimit.NewRedisLimiter(client, "unkani:ratelimit")
//	res, err := limiter.Allow(ctx, "fhir.valueset:user:7", 5, 15*time.Second)
//	if err == nil && !res.Allowed {
//	    // reject with 429
//	}
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces limiter keys in redis
const DefaultPrefix = "unkani:ratelimit"

// Result describes the state of one window after a request was counted
type Result struct {
	Limit     int
	Remaining int
	Reset     time.Time
	Allowed   bool
}

// Limiter counts requests per key and window
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, period time.Duration) (Result, error)
}

// RedisLimiter is a fixed-window Limiter using INCR and EXPIREAT
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// Ensure RedisLimiter implements Limiter
var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a limiter storing counters under prefix
func NewRedisLimiter(client redis.Cmdable, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisLimiter{client: client, prefix: prefix, now: time.Now}
}

// WithClock replaces the limiter clock
func (l *RedisLimiter) WithClock(now func() time.Time) *RedisLimiter {
	l.now = now
	return l
}

// WindowReset returns the end of the window containing now
func WindowReset(now time.Time, period time.Duration) time.Time {
	secs := int64(period / time.Second)
	if secs <= 0 {
		secs = 1
	}
	unix := now.Unix()
	return time.Unix((unix/secs)*secs+secs, 0)
}

// Allow counts one request for key and reports whether it fits within limit
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, period time.Duration) (Result, error) {
	if limit <= 0 {
		return Result{}, errors.New("ratelimit: limit must be positive")
	}

	reset := WindowReset(l.now(), period)
	counterKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, reset.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, counterKey)
	// A little slack so clock skew between hosts never drops a live counter
	pipe.ExpireAt(ctx, counterKey, reset.Add(10*time.Second))
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("ratelimit: counting %q: %w", key, err)
	}

	count := int(incr.Val())
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Limit:     limit,
		Remaining: remaining,
		Reset:     reset,
		Allowed:   count <= limit,
	}, nil
}
