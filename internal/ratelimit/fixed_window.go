package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/observability"
	"github.com/relaydocs/relaygw/internal/ratelimit/store"
)

// KeyPrefix namespaces rate limit counters in the counter store.
const KeyPrefix = "ratelimit:"

// FixedWindowLimiter implements the fixed window rate limiting algorithm.
// The first request for a key opens a window of the configured length;
// requests beyond MaxRequests inside that window are rejected.
type FixedWindowLimiter struct {
	source  store.Source
	local   *LocalWindows
	limit   int
	window  time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// Option is a functional option for configuring the limiter.
type Option func(*FixedWindowLimiter)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *FixedWindowLimiter) {
		l.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(l *FixedWindowLimiter) {
		l.metrics = m
	}
}

// WithClock overrides the clock used for local windows.
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindowLimiter) {
		l.now = now
	}
}

// NewFixedWindowLimiter creates a new fixed window rate limiter. A nil
// source or local set is replaced with an empty one.
func NewFixedWindowLimiter(
	source store.Source,
	local *LocalWindows,
	cfg Config,
	opts ...Option,
) *FixedWindowLimiter {
	if source == nil {
		source = store.Static{}
	}
	if local == nil {
		local = NewLocalWindows()
	}
	defaults := DefaultConfig()
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = defaults.MaxRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = defaults.Window
	}

	l := &FixedWindowLimiter{
		source: source,
		local:  local,
		limit:  cfg.MaxRequests,
		window: cfg.Window,
		logger: zap.NewNop(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Allow implements Limiter. It never returns an error: a failing counter
// store degrades to the local window for that call.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	if s, ok := l.source.Store(ctx); ok {
		result, err := l.allowDistributed(ctx, s, key)
		if err == nil {
			return result, nil
		}

		l.logger.Warn("counter store call failed, using local rate limit window",
			zap.String("key", key),
			zap.Error(err),
		)
		l.metrics.RecordFallback("ratelimit")
	}

	return l.allowLocal(key), nil
}

// allowLocal performs rate limiting using in-memory windows.
func (l *FixedWindowLimiter) allowLocal(key string) *Result {
	count, left := l.local.hit(key, l.now(), l.window)
	return l.result(int64(count), left)
}

// allowDistributed performs rate limiting using the counter store.
func (l *FixedWindowLimiter) allowDistributed(ctx context.Context, s store.CounterStore, key string) (*Result, error) {
	redisKey := KeyPrefix + key

	count, err := s.Increment(ctx, redisKey)
	if err != nil {
		return nil, err
	}

	if count == 1 {
		if err := s.Expire(ctx, redisKey, l.window); err != nil {
			return nil, fmt.Errorf("failed to arm window expiry: %w", err)
		}
	}

	if count <= int64(l.limit) {
		return l.result(count, 0), nil
	}

	ttl, err := s.TTL(ctx, redisKey)
	if err != nil {
		return nil, err
	}

	// A counter without expiry would reject the key forever.
	if ttl == store.NoExpiry {
		if err := s.Expire(ctx, redisKey, l.window); err != nil {
			return nil, fmt.Errorf("failed to re-arm window expiry: %w", err)
		}
		ttl = l.window
	}

	return l.result(count, ttl), nil
}

func (l *FixedWindowLimiter) result(count int64, left time.Duration) *Result {
	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	r := &Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining,
	}
	if !r.Allowed && left > 0 {
		r.RetryAfter = left
	}
	return r
}
