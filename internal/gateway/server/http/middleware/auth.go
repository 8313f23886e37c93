package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/auth"
)

// IdentityKey is the gin context key for the authenticated identity.
const IdentityKey = "identity"

// Authenticator resolves an Authorization header to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (auth.Identity, error)
}

// RequireAuth rejects requests without a valid bearer token with 401.
// On success the identity is stored in the gin context and in the request
// context.
func RequireAuth(authenticator Authenticator, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		identity, err := authenticator.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			logger.Debug("authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("requestID", GetRequestID(c)),
				zap.Error(err),
			)
			abortWithMessage(c, http.StatusUnauthorized, auth.MessageFor(err))
			return
		}

		c.Set(IdentityKey, identity)
		c.Request = c.Request.WithContext(auth.ContextWithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// GetIdentity returns the authenticated identity, if any.
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	if v, exists := c.Get(IdentityKey); exists {
		if identity, ok := v.(auth.Identity); ok {
			return identity, true
		}
	}
	return auth.Identity{}, false
}
