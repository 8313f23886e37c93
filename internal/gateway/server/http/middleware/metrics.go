package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/relaydocs/relaygw/internal/observability"
)

// Metrics returns a middleware that records request count and latency by
// route template.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
