package auth

import "context"

// Scheme names the kind of token that produced an identity.
type Scheme string

// Token schemes.
const (
	SchemeDev Scheme = "dev"
	SchemeJWT Scheme = "jwt"
)

// Identity is the authenticated caller.
type Identity struct {
	// UserID is the opaque user identifier forwarded downstream.
	UserID string

	// Scheme is informational and only used in logs.
	Scheme Scheme
}

type identityKey struct{}

// ContextWithIdentity stores the identity in ctx.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored in ctx.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
