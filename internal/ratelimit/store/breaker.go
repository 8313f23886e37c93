package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig configures the counter store circuit breaker.
type BreakerConfig struct {
	// Threshold is the minimum number of requests in an interval before
	// the failure ratio is considered.
	Threshold int

	// Timeout is how long the breaker stays open.
	Timeout time.Duration
}

// DefaultBreakerConfig returns a BreakerConfig with default values.
func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		Threshold: 5,
		Timeout:   10 * time.Second,
	}
}

// BreakerStore short-circuits calls to a failing store. An open breaker is
// reported as ErrUnavailable so callers fall back for that call.
type BreakerStore struct {
	next   CounterStore
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewBreakerStore wraps next in a circuit breaker.
func NewBreakerStore(next CounterStore, config *BreakerConfig, logger *zap.Logger) *BreakerStore {
	if config == nil {
		config = DefaultBreakerConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	threshold := safeIntToUint32(config.Threshold)

	b := &BreakerStore{
		next:   next,
		logger: logger,
	}

	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "counter-store",
		MaxRequests: 1,
		Interval:    config.Timeout,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= threshold && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.Info("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// A cancelled request says nothing about the store.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return b
}

// safeIntToUint32 safely converts int to uint32.
func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > int(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n) //nolint:gosec // bounds checked above
}

// State returns the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return result, err
}

// Increment implements CounterStore.
func (b *BreakerStore) Increment(ctx context.Context, key string) (int64, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.next.Increment(ctx, key)
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// Expire implements CounterStore.
func (b *BreakerStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.Expire(ctx, key, ttl)
	})
	return err
}

// TTL implements CounterStore.
func (b *BreakerStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.next.TTL(ctx, key)
	})
	if err != nil {
		return 0, err
	}
	return result.(time.Duration), nil
}

// SetWithExpiry implements CounterStore.
func (b *BreakerStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.SetWithExpiry(ctx, key, value, ttl)
	})
	return err
}

// Delete implements CounterStore.
func (b *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return err
}

// Ping bypasses the breaker so readiness reflects the store itself.
func (b *BreakerStore) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

// Close implements CounterStore.
func (b *BreakerStore) Close() error {
	return b.next.Close()
}
