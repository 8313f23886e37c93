// Package middleware provides the gin middleware chain of the gateway:
// request ids, access logging, panic recovery, security headers, CORS,
// tracing, request metrics, rate limiting and bearer authentication.
package middleware

import "github.com/gin-gonic/gin"

// MessageBody is the JSON error body every middleware writes.
type MessageBody struct {
	Message string `json:"message"`
}

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, MessageBody{Message: message})
}
