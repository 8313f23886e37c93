package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Status values reported by the readiness endpoint.
const (
	StatusOK        = "ok"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// ServiceName is reported by the liveness endpoint.
const ServiceName = "gateway"

// DefaultCheckTimeout bounds a whole readiness run.
const DefaultCheckTimeout = 3 * time.Second

// Check is a named dependency probe.
type Check struct {
	Name string
	// Critical checks make the gateway unhealthy when they fail.
	Critical bool
	Probe    func(ctx context.Context) error
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Status   string `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// Readiness is the readiness response body.
type Readiness struct {
	Service string                 `json:"service"`
	Status  string                 `json:"status"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// Checker runs readiness checks.
type Checker struct {
	mu      sync.RWMutex
	checks  []Check
	timeout time.Duration
	logger  *zap.Logger
}

// NewChecker creates a checker. A non-positive timeout uses DefaultCheckTimeout.
func NewChecker(logger *zap.Logger, timeout time.Duration) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &Checker{logger: logger, timeout: timeout}
}

// Register adds a check.
func (c *Checker) Register(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check)
}

// Names returns the registered check names, sorted.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for _, check := range c.checks {
		names = append(names, check.Name)
	}
	sort.Strings(names)
	return names
}

// Run executes every check concurrently.
func (c *Checker) Run(ctx context.Context) Readiness {
	c.mu.RLock()
	checks := make([]Check, len(c.checks))
	copy(checks, c.checks)
	c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := Readiness{
		Service: ServiceName,
		Status:  StatusOK,
		Checks:  make(map[string]CheckResult, len(checks)),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, check := range checks {
		wg.Add(1)
		go func(check Check) {
			defer wg.Done()

			start := time.Now()
			err := check.Probe(ctx)
			result := CheckResult{
				Status:   StatusOK,
				Critical: check.Critical,
				Duration: time.Since(start).String(),
			}
			recordCheck(check.Name, err == nil)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				result.Status = StatusUnhealthy
				result.Error = err.Error()
				switch {
				case check.Critical:
					out.Status = StatusUnhealthy
				case out.Status == StatusOK:
					out.Status = StatusDegraded
				}
				c.logger.Warn("readiness check failed",
					zap.String("check", check.Name),
					zap.Bool("critical", check.Critical),
					zap.Error(err),
				)
			}
			out.Checks[check.Name] = result
		}(check)
	}
	wg.Wait()

	return out
}

// LivenessHandler answers GET /health.
func (c *Checker) LivenessHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"service": ServiceName, "status": StatusOK})
	}
}

// ReadinessHandler answers GET /ready.
func (c *Checker) ReadinessHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		readiness := c.Run(ctx.Request.Context())

		status := http.StatusOK
		if readiness.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		ctx.JSON(status, readiness)
	}
}

// RegisterRoutes registers /health and /ready on a gin router.
func (c *Checker) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", c.LivenessHandler())
	r.GET("/ready", c.ReadinessHandler())
}
