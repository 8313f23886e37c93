package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MessageUnexpectedError is the body message of a recovered panic.
const MessageUnexpectedError = "Unexpected error"

// Recovery returns a middleware that turns panics into a 500 response.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("requestID", GetRequestID(c)),
					zap.ByteString("stack", debug.Stack()),
				)

				if span := GetSpan(c); span != nil {
					span.RecordError(fmt.Errorf("panic: %v", err))
				}

				abortWithMessage(c, http.StatusInternalServerError, MessageUnexpectedError)
			}
		}()

		c.Next()
	}
}
