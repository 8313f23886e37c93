package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	// AllowOrigin is the single web origin allowed to call the gateway.
	AllowOrigin string

	AllowMethods []string
	AllowHeaders []string
	MaxAge       int
}

// DefaultCORSConfig returns a CORS config for origin.
func DefaultCORSConfig(origin string) CORSConfig {
	return CORSConfig{
		AllowOrigin:  origin,
		AllowMethods: []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
		AllowHeaders: []string{"Authorization", "Content-Type", RequestIDHeader},
		MaxAge:       600,
	}
}

// CORS returns a middleware allowing requests from origin.
func CORS(origin string) gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig(origin))
}

// CORSWithConfig returns a CORS middleware with custom configuration.
// Preflight requests are answered with 204 and never reach the handlers.
func CORSWithConfig(config CORSConfig) gin.HandlerFunc {
	methods := strings.Join(config.AllowMethods, ", ")
	headers := strings.Join(config.AllowHeaders, ", ")
	maxAge := ""
	if config.MaxAge > 0 {
		maxAge = strconv.Itoa(config.MaxAge)
	}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", config.AllowOrigin)
		c.Header("Vary", "Origin")

		if c.Request.Method != http.MethodOptions || c.GetHeader("Access-Control-Request-Method") == "" {
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Methods", methods)
		if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" && headers == "" {
			c.Header("Access-Control-Allow-Headers", requested)
		} else if headers != "" {
			c.Header("Access-Control-Allow-Headers", headers)
		}
		if maxAge != "" {
			c.Header("Access-Control-Max-Age", maxAge)
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}
