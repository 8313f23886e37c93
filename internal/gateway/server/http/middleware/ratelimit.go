package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/observability"
	"github.com/relaydocs/relaygw/internal/ratelimit"
)

// MessageTooManyRequests is the body message of a rate-limited response.
const MessageTooManyRequests = "Too many requests"

// KeyFunc extracts the rate limit key from a request.
type KeyFunc func(c *gin.Context) string

// ClientIPKey keys on the caller address, or "unknown" when it cannot be
// determined.
func ClientIPKey(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// RateLimit rejects requests over the limiter's budget with 429 and a
// Retry-After header. A limiter error admits the request.
func RateLimit(
	limiter ratelimit.Limiter,
	keyFunc KeyFunc,
	logger *zap.Logger,
	metrics *observability.Metrics,
) gin.HandlerFunc {
	if limiter == nil {
		limiter = ratelimit.NewNoopLimiter()
	}
	if keyFunc == nil {
		keyFunc = ClientIPKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := keyFunc(c)

		result, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Error("rate limit check failed",
				zap.String("key", key),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !result.Allowed {
			logger.Debug("rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", result.Limit),
				zap.String("requestID", GetRequestID(c)),
			)
			metrics.RecordRateLimitRejection(c.FullPath())

			c.Header("Retry-After", strconv.Itoa(result.RetryAfterSeconds()))
			abortWithMessage(c, http.StatusTooManyRequests, MessageTooManyRequests)
			return
		}

		c.Next()
	}
}
