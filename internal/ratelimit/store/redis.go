package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Prometheus metrics for counter store operations
var (
	counterStoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_counter_store_operations_total",
			Help: "Total number of counter store operations",
		},
		[]string{"operation", "status"},
	)

	counterStoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_counter_store_operation_duration_seconds",
			Help:    "Duration of counter store operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// RedisStore implements CounterStore using Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
	closed bool
	mu     sync.Mutex
}

// RedisConfig holds configuration for the Redis counter store.
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string

	// Prefix is prepended to every key. Empty by default.
	Prefix string

	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger *zap.Logger
}

// DefaultRedisConfig returns a RedisConfig with default values.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		PoolSize:     10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
}

// NewRedisStore parses the configured URL and builds a store. It does not
// contact the server; use Ping for that.
func NewRedisStore(config *RedisConfig) (*RedisStore, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	// Failures surface to the caller, which falls back locally.
	opts.MaxRetries = -1
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.DialTimeout > 0 {
		opts.DialTimeout = config.DialTimeout
	}
	if config.ReadTimeout > 0 {
		opts.ReadTimeout = config.ReadTimeout
	}
	if config.WriteTimeout > 0 {
		opts.WriteTimeout = config.WriteTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisStore{
		client: redis.NewClient(opts),
		prefix: config.Prefix,
		logger: logger,
	}, nil
}

// ready rejects calls on a closed store or with a finished context.
func (s *RedisStore) ready(ctx context.Context, op string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error before redis %s: %w", op, err)
	}
	return nil
}

// prefixKey adds the prefix to the key.
func (s *RedisStore) prefixKey(key string) string {
	return s.prefix + key
}

// observe records the outcome of one operation.
func observe(operation string, start time.Time, err error) {
	counterStoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	counterStoreOperationsTotal.WithLabelValues(operation, status).Inc()
}

// Increment implements CounterStore.
func (s *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	if err := s.ready(ctx, "incr"); err != nil {
		return 0, err
	}

	start := time.Now()
	val, err := s.client.Incr(ctx, s.prefixKey(key)).Result()
	observe("increment", start, err)
	if err != nil {
		return 0, fmt.Errorf("redis incr error: %w", err)
	}
	return val, nil
}

// Expire implements CounterStore.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.ready(ctx, "pexpire"); err != nil {
		return err
	}

	start := time.Now()
	err := s.client.PExpire(ctx, s.prefixKey(key), ttl).Err()
	observe("expire", start, err)
	if err != nil {
		return fmt.Errorf("redis pexpire error: %w", err)
	}
	return nil
}

// TTL implements CounterStore.
func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	if err := s.ready(ctx, "pttl"); err != nil {
		return 0, err
	}

	start := time.Now()
	ttl, err := s.client.PTTL(ctx, s.prefixKey(key)).Result()
	observe("ttl", start, err)
	if err != nil {
		return 0, fmt.Errorf("redis pttl error: %w", err)
	}

	// go-redis reports the -1/-2 sentinels unscaled.
	switch ttl {
	case -1:
		return NoExpiry, nil
	case -2:
		return Missing, nil
	}
	return ttl, nil
}

// SetWithExpiry implements CounterStore.
func (s *RedisStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.ready(ctx, "set"); err != nil {
		return err
	}

	start := time.Now()
	err := s.client.Set(ctx, s.prefixKey(key), value, ttl).Err()
	observe("set", start, err)
	if err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// Delete implements CounterStore.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.ready(ctx, "del"); err != nil {
		return err
	}

	start := time.Now()
	err := s.client.Del(ctx, s.prefixKey(key)).Err()
	observe("delete", start, err)
	if err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}

// Ping implements CounterStore.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.ready(ctx, "ping"); err != nil {
		return err
	}

	start := time.Now()
	err := s.client.Ping(ctx).Err()
	observe("ping", start, err)
	if err != nil {
		return fmt.Errorf("redis ping error: %w", err)
	}
	return nil
}

// Close implements CounterStore.
// Close is idempotent - calling it multiple times is safe.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
