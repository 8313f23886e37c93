package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/auth/jwt"
	"github.com/relaydocs/relaygw/internal/observability"
)

const (
	bearerPrefix   = "Bearer "
	devTokenPrefix = "dev-token-"
)

// TokenValidator verifies signed session tokens.
type TokenValidator interface {
	Validate(token string) (*jwt.Claims, error)
}

// Authenticator resolves an Authorization header to an Identity.
type Authenticator struct {
	validator      TokenValidator
	allowDevTokens bool
	logger         *zap.Logger
	metrics        *observability.Metrics
}

// Option is a functional option for configuring the authenticator.
type Option func(*Authenticator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Authenticator) {
		a.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Authenticator) {
		a.metrics = m
	}
}

// WithDevTokens enables "dev-token-<userId>" bearer tokens.
func WithDevTokens(allow bool) Option {
	return func(a *Authenticator) {
		a.allowDevTokens = allow
	}
}

// NewAuthenticator creates an authenticator backed by validator.
func NewAuthenticator(validator TokenValidator, opts ...Option) *Authenticator {
	a := &Authenticator{
		validator: validator,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// DevTokensAllowed reports whether development tokens are accepted.
func (a *Authenticator) DevTokensAllowed() bool {
	return a.allowDevTokens
}

// Authenticate checks the raw Authorization header value. Every failure is
// an *Error matching ErrUnauthorized.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (Identity, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return Identity{}, a.reject(ctx, ReasonMissingBearer, nil)
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return Identity{}, a.reject(ctx, ReasonMissingBearer, nil)
	}

	if a.allowDevTokens && strings.HasPrefix(token, devTokenPrefix) {
		userID := token[len(devTokenPrefix):]
		if userID == "" {
			return Identity{}, a.reject(ctx, ReasonEmptyDevIdentity, nil)
		}
		return Identity{UserID: userID, Scheme: SchemeDev}, nil
	}

	if a.validator == nil {
		return Identity{}, a.reject(ctx, ReasonInvalidSignature, errors.New("no token validator configured"))
	}

	claims, err := a.validator.Validate(token)
	if err != nil {
		return Identity{}, a.reject(ctx, reasonFor(err), err)
	}

	return Identity{UserID: claims.Subject, Scheme: SchemeJWT}, nil
}

func (a *Authenticator) reject(ctx context.Context, reason Reason, err error) error {
	a.logger.Debug("bearer token rejected",
		zap.String("reason", string(reason)),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
		zap.Error(err),
	)
	a.metrics.RecordAuthFailure(string(reason))
	return &Error{Reason: reason, Err: err}
}

func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenNotYetValid):
		return ReasonNotYetValid
	case errors.Is(err, jwt.ErrTokenMissingSubject):
		return ReasonMissingSubject
	default:
		return ReasonInvalidSignature
	}
}
