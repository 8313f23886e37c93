package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultConnectTimeout bounds the first connection attempt.
const DefaultConnectTimeout = 2 * time.Second

// Provider lazily connects to Redis on first use and memoizes the outcome.
//
// A failed first attempt is remembered for the life of the process: the
// provider never reconnects. Per-call errors on a connected store are the
// caller's concern and do not change what the provider hands out.
type Provider struct {
	url            string
	logger         *zap.Logger
	connectTimeout time.Duration
	breaker        *BreakerConfig

	once  sync.Once
	mu    sync.Mutex
	store CounterStore
}

// ProviderOption is a functional option for configuring the provider.
type ProviderOption func(*Provider)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithConnectTimeout bounds the first connection attempt.
func WithConnectTimeout(d time.Duration) ProviderOption {
	return func(p *Provider) {
		if d > 0 {
			p.connectTimeout = d
		}
	}
}

// WithBreaker wraps the connected store in a circuit breaker.
func WithBreaker(config *BreakerConfig) ProviderOption {
	return func(p *Provider) {
		p.breaker = config
	}
}

// NewProvider creates a provider for the given Redis URL. An empty URL
// disables the distributed path entirely.
func NewProvider(url string, opts ...ProviderOption) *Provider {
	p := &Provider{
		url:            url,
		logger:         zap.NewNop(),
		connectTimeout: DefaultConnectTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Enabled reports whether a Redis URL was configured.
func (p *Provider) Enabled() bool {
	return p.url != ""
}

// Store implements Source.
func (p *Provider) Store(ctx context.Context) (CounterStore, bool) {
	if p.url == "" {
		return nil, false
	}

	p.once.Do(func() {
		p.connect(ctx)
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store, p.store != nil
}

// connect makes the single connection attempt.
func (p *Provider) connect(ctx context.Context) {
	config := DefaultRedisConfig()
	config.URL = p.url
	config.DialTimeout = p.connectTimeout
	config.Logger = p.logger

	rs, err := NewRedisStore(config)
	if err != nil {
		p.logger.Warn("counter store disabled",
			zap.Error(err),
		)
		return
	}

	// The caller's request may finish before the connection does.
	connectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.connectTimeout)
	defer cancel()

	if err := rs.Ping(connectCtx); err != nil {
		_ = rs.Close()
		p.logger.Warn("counter store unreachable, using local state for the rest of the process",
			zap.Error(err),
		)
		return
	}

	var cs CounterStore = rs
	if p.breaker != nil {
		cs = NewBreakerStore(rs, p.breaker, p.logger)
	}

	p.mu.Lock()
	p.store = cs
	p.mu.Unlock()

	p.logger.Info("counter store connected")
}

// Close releases the connection if one was made.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store == nil {
		return nil
	}
	err := p.store.Close()
	p.store = nil
	return err
}

// Static is a Source that always returns the same store. A nil store
// behaves like a disabled provider.
type Static struct {
	S CounterStore
}

// Store implements Source.
func (s Static) Store(context.Context) (CounterStore, bool) {
	return s.S, s.S != nil
}
