// Package auth authenticates gateway callers from their bearer token.
//
// Two token kinds are accepted: HS256 session tokens issued by the gateway
// and, outside production, development tokens of the form
// "dev-token-<userId>". Every rejection carries one of two wire messages,
// "Unauthorized" when no bearer token was sent and "Invalid token"
// otherwise. The precise Reason is kept for logs and metrics.
package auth
