// Package lockout tracks failed login attempts per username and source
// address and locks the pair out once too many failures pile up.
package lockout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/observability"
	"github.com/relaydocs/relaygw/internal/ratelimit/store"
)

// Counter store key prefixes.
const (
	FailureKeyPrefix = "auth:fail:"
	LockKeyPrefix    = "auth:lock:"
)

// Config holds lockout policy.
type Config struct {
	// Threshold is the number of failures that triggers a lock.
	Threshold int

	// Window is how long failures are remembered after the first one.
	Window time.Duration

	// Duration is how long a lock lasts.
	Duration time.Duration
}

// DefaultConfig returns the default lockout policy.
func DefaultConfig() Config {
	return Config{
		Threshold: 5,
		Window:    15 * time.Minute,
		Duration:  15 * time.Minute,
	}
}

// Key returns the tracking key for a username and source address.
func Key(username, address string) string {
	return strings.ToLower(username) + "::" + address
}

// Tracker records login failures and answers lock queries.
type Tracker struct {
	source  store.Source
	local   *LocalEntries
	cfg     Config
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// Option is a functional option for configuring the tracker.
type Option func(*Tracker)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(t *Tracker) {
		t.metrics = m
	}
}

// WithClock overrides the clock used for local entries.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker creates a tracker. Non-positive config values are replaced
// with defaults.
func NewTracker(source store.Source, local *LocalEntries, cfg Config, opts ...Option) *Tracker {
	if source == nil {
		source = store.Static{}
	}
	if local == nil {
		local = NewLocalEntries()
	}
	defaults := DefaultConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = defaults.Threshold
	}
	if cfg.Window <= 0 {
		cfg.Window = defaults.Window
	}
	if cfg.Duration <= 0 {
		cfg.Duration = defaults.Duration
	}

	t := &Tracker{
		source: source,
		local:  local,
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Config returns the effective policy.
func (t *Tracker) Config() Config {
	return t.cfg
}

// IsLocked reports whether the username and address pair is locked.
func (t *Tracker) IsLocked(ctx context.Context, username, address string) bool {
	key := Key(username, address)

	if s, ok := t.source.Store(ctx); ok {
		ttl, err := s.TTL(ctx, LockKeyPrefix+key)
		switch {
		case err != nil:
			t.fallback("lock lookup", key, err)
		case ttl > 0:
			return true
		}
	}

	return t.local.isLocked(key, t.now())
}

// RecordFailure counts a failed login and reports whether the pair is
// locked as a result.
func (t *Tracker) RecordFailure(ctx context.Context, username, address string) bool {
	key := Key(username, address)

	if s, ok := t.source.Store(ctx); ok {
		locked, err := t.recordDistributed(ctx, s, key)
		if err != nil {
			t.fallback("failure record", key, err)
		} else if locked {
			t.lockedOut(key)
			return true
		}
	}

	if t.local.recordFailure(key, t.now(), t.cfg) {
		t.lockedOut(key)
		return true
	}
	return false
}

// ClearFailures forgets the failures recorded for the pair. An active
// distributed lock is left to expire on its own.
func (t *Tracker) ClearFailures(ctx context.Context, username, address string) {
	key := Key(username, address)

	if s, ok := t.source.Store(ctx); ok {
		if err := s.Delete(ctx, FailureKeyPrefix+key); err != nil {
			t.fallback("failure clear", key, err)
		}
	}

	t.local.clear(key)
}

func (t *Tracker) recordDistributed(ctx context.Context, s store.CounterStore, key string) (bool, error) {
	failureKey := FailureKeyPrefix + key

	count, err := s.Increment(ctx, failureKey)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := s.Expire(ctx, failureKey, t.cfg.Window); err != nil {
			return false, fmt.Errorf("failed to arm failure window: %w", err)
		}
	} else {
		ttl, err := s.TTL(ctx, failureKey)
		if err != nil {
			return false, err
		}
		// A counter left without expiry has no window; start a fresh one.
		if ttl == store.NoExpiry {
			if err := s.SetWithExpiry(ctx, failureKey, "1", t.cfg.Window); err != nil {
				return false, fmt.Errorf("failed to re-arm failure window: %w", err)
			}
			count = 1
		}
	}

	if count < int64(t.cfg.Threshold) {
		return false, nil
	}

	if err := s.SetWithExpiry(ctx, LockKeyPrefix+key, "1", t.cfg.Duration); err != nil {
		return false, fmt.Errorf("failed to set lock: %w", err)
	}
	if err := s.Delete(ctx, failureKey); err != nil {
		// The lock is in place; a leftover counter only expires later.
		t.logger.Warn("failed to reset failure counter after lock",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	return true, nil
}

func (t *Tracker) fallback(op, key string, err error) {
	t.logger.Warn("counter store call failed, using local lockout state",
		zap.String("operation", op),
		zap.String("key", key),
		zap.Error(err),
	)
	t.metrics.RecordFallback("lockout")
}

func (t *Tracker) lockedOut(key string) {
	t.logger.Info("account locked",
		zap.String("key", key),
		zap.Duration("duration", t.cfg.Duration),
	)
	t.metrics.RecordLockout()
}
