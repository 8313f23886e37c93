// Package health serves the liveness and readiness endpoints.
//
// Liveness always reports ok. Readiness runs the registered dependency
// checks: a failed critical check makes the gateway unhealthy (503), a
// failed non-critical check only marks it degraded (200).
package health
