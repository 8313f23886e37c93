package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/auth"
	"github.com/relaydocs/relaygw/internal/auth/jwt"
	"github.com/relaydocs/relaygw/internal/backend/docservice"
	"github.com/relaydocs/relaygw/internal/config"
	"github.com/relaydocs/relaygw/internal/gateway/handlers"
	gwhttp "github.com/relaydocs/relaygw/internal/gateway/server/http"
	"github.com/relaydocs/relaygw/internal/health"
	"github.com/relaydocs/relaygw/internal/lockout"
	"github.com/relaydocs/relaygw/internal/observability"
	"github.com/relaydocs/relaygw/internal/ratelimit"
	"github.com/relaydocs/relaygw/internal/ratelimit/store"
)

const serviceName = "relaygw"

// application holds all application components.
type application struct {
	config   *config.Config
	server   *gwhttp.Server
	provider *store.Provider
	tracer   *observability.Tracer
	metrics  *observability.Metrics
	pruner   *pruner
}

// newApplication wires every component from cfg.
func newApplication(ctx context.Context, cfg *config.Config, logger observability.Logger) (*application, error) {
	zl := logger.Zap()
	metrics := observability.NewMetrics("gateway")

	tracer, err := observability.NewTracer(ctx, observability.TracerConfig{
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing tracer: %w", err)
	}

	providerOpts := []store.ProviderOption{store.WithLogger(zl)}
	if cfg.CounterStoreBreaker {
		providerOpts = append(providerOpts, store.WithBreaker(store.DefaultBreakerConfig()))
	}
	provider := store.NewProvider(cfg.RedisURL, providerOpts...)

	windows := ratelimit.NewLocalWindows()
	limiter := ratelimit.NewFixedWindowLimiter(provider, windows,
		ratelimit.Config{MaxRequests: cfg.RateLimit.MaxRequests, Window: cfg.RateLimit.Window},
		ratelimit.WithLogger(zl),
		ratelimit.WithMetrics(metrics),
	)

	entries := lockout.NewLocalEntries()
	tracker := lockout.NewTracker(provider, entries,
		lockout.Config{
			Threshold: cfg.Lockout.Threshold,
			Window:    cfg.Lockout.Window,
			Duration:  cfg.Lockout.Duration,
		},
		lockout.WithLogger(zl),
		lockout.WithMetrics(metrics),
	)

	signer, err := jwt.NewSigner(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token signer: %w", err)
	}
	validator, err := jwt.NewValidator(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token validator: %w", err)
	}
	authenticator := auth.NewAuthenticator(validator,
		auth.WithDevTokens(cfg.AllowDevTokens),
		auth.WithLogger(zl),
		auth.WithMetrics(metrics),
	)

	httpClient := docservice.NewHTTPClient(docservice.DefaultPoolConfig())
	client := docservice.NewClient(cfg.DocumentServiceBaseURL,
		docservice.WithHTTPClient(httpClient),
		docservice.WithLogger(zl),
		docservice.WithMetrics(metrics),
	)

	checker := health.NewChecker(zl, health.DefaultCheckTimeout)
	checker.Register(health.HTTPCheck("document_service", cfg.DocumentServiceBaseURL+"/health", httpClient, true))
	if provider.Enabled() {
		checker.Register(health.CounterStoreCheck(provider))
	}

	serverCfg := gwhttp.DefaultServerConfig()
	serverCfg.Port = cfg.Port
	serverCfg.TrustedProxies = cfg.TrustedProxies
	server, err := gwhttp.NewServer(serverCfg, zl)
	if err != nil {
		return nil, err
	}

	gwhttp.RegisterRoutes(server.Engine(), gwhttp.Routes{
		Logger:        zl,
		Metrics:       metrics,
		ServiceName:   serviceName,
		WebOrigin:     cfg.WebOrigin,
		AuthLimiter:   limiter,
		Authenticator: authenticator,
		Health:        checker,
		Auth:          handlers.NewAuthHandler(client, signer, tracker, zl, metrics),
		Documents:     handlers.NewDocumentHandler(client, zl),
	})

	var p *pruner
	if cfg.LocalStatePruneEvery > 0 {
		p = newPruner(cfg.LocalStatePruneEvery, windows, entries, zl)
	}

	return &application{
		config:   cfg,
		server:   server,
		provider: provider,
		tracer:   tracer,
		metrics:  metrics,
		pruner:   p,
	}, nil
}

// closeAll releases resources in reverse start order.
func (a *application) closeAll(ctx context.Context, logger *zap.Logger) {
	if a.pruner != nil {
		a.pruner.Stop()
	}

	if err := a.provider.Close(); err != nil {
		logger.Warn("failed to close counter store", zap.Error(err))
	}

	if err := a.tracer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown tracer", zap.Error(err))
	}
}
