package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/gateway/handlers"
	"github.com/relaydocs/relaygw/internal/gateway/server/http/middleware"
	"github.com/relaydocs/relaygw/internal/health"
	"github.com/relaydocs/relaygw/internal/observability"
	"github.com/relaydocs/relaygw/internal/ratelimit"
)

// Routes collects everything the router mounts.
type Routes struct {
	Logger  *zap.Logger
	Metrics *observability.Metrics

	ServiceName string
	WebOrigin   string

	// AuthLimiter guards signup and login, keyed by client address.
	AuthLimiter   ratelimit.Limiter
	Authenticator middleware.Authenticator

	Health    *health.Checker
	Auth      *handlers.AuthHandler
	Documents *handlers.DocumentHandler
}

// RegisterRoutes installs the middleware chain and every route on engine.
func RegisterRoutes(engine *gin.Engine, r Routes) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Tracing(r.ServiceName),
		middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger:    logger,
			SkipPaths: []string{"/health", "/ready", "/metrics"},
		}),
		middleware.Metrics(r.Metrics),
		middleware.SecurityHeaders(),
		middleware.CORS(r.WebOrigin),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.MessageBody{Message: "Not found"})
	})

	if r.Health != nil {
		r.Health.RegisterRoutes(engine)
	}
	if r.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(r.Metrics.Handler()))
	}

	api := engine.Group("/api/v1")

	if r.Auth != nil {
		authGroup := api.Group("/auth", middleware.RateLimit(r.AuthLimiter, middleware.ClientIPKey, logger, r.Metrics))
		r.Auth.Register(authGroup)
	}

	if r.Documents != nil {
		docs := api.Group("/documents", middleware.RequireAuth(r.Authenticator, logger))
		r.Documents.Register(docs)
	}
}
