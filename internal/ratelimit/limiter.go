// Package ratelimit provides fixed-window rate limiting for the gateway.
// Counters live in the shared counter store when it is reachable and in
// process memory otherwise.
package ratelimit

import (
	"context"
	"time"
)

// Limiter defines the interface for rate limiting.
type Limiter interface {
	// Allow counts one request for key and reports whether it is admitted.
	Allow(ctx context.Context, key string) (*Result, error)
}

// Result represents the result of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool

	// Limit is the maximum number of requests allowed.
	Limit int

	// Remaining is the number of requests remaining in the current window.
	Remaining int

	// RetryAfter is the duration to wait before retrying (when not allowed).
	RetryAfter time.Duration
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds, never
// less than one.
func (r *Result) RetryAfterSeconds() int {
	secs := int((r.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// Config holds configuration for a fixed-window limiter.
type Config struct {
	// MaxRequests is the number of requests admitted per window.
	MaxRequests int

	// Window is the fixed window length.
	Window time.Duration
}

// DefaultConfig returns the policy applied to authentication endpoints.
func DefaultConfig() Config {
	return Config{
		MaxRequests: 20,
		Window:      60 * time.Second,
	}
}

// NoopLimiter is a rate limiter that always allows requests.
type NoopLimiter struct{}

// NewNoopLimiter creates a new noop limiter.
func NewNoopLimiter() *NoopLimiter {
	return &NoopLimiter{}
}

// Allow implements Limiter.
func (l *NoopLimiter) Allow(context.Context, string) (*Result, error) {
	return &Result{Allowed: true}, nil
}
