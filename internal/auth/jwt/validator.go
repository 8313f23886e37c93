package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	jwxjwt "github.com/lestrrat-go/jwx/v2/jwt"
)

// Claims are the verified claims of a session token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Validator verifies HS256 tokens.
type Validator struct {
	key []byte
	options
}

// NewValidator creates a validator for the given secret.
func NewValidator(secret string, opts ...Option) (*Validator, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrInvalidKey)
	}
	return &Validator{
		key:     []byte(secret),
		options: newOptions(opts),
	}, nil
}

// Validate verifies the signature and time claims of token and requires a
// non-empty subject. Tokens without "exp" are accepted.
func (v *Validator) Validate(token string) (*Claims, error) {
	if _, err := jws.Parse([]byte(token)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	tok, err := jwxjwt.Parse([]byte(token),
		jwxjwt.WithKey(jwa.HS256, v.key),
		jwxjwt.WithValidate(true),
		jwxjwt.WithClock(jwxjwt.ClockFunc(v.now)),
	)
	if err != nil {
		return nil, classify(err)
	}

	if tok.Subject() == "" {
		return nil, ErrTokenMissingSubject
	}

	return &Claims{
		Subject:   tok.Subject(),
		IssuedAt:  tok.IssuedAt(),
		ExpiresAt: tok.Expiration(),
	}, nil
}

// classify maps a jwx parse or validation error onto a sentinel.
func classify(err error) error {
	switch {
	case errors.Is(err, jwxjwt.ErrTokenExpired()):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwxjwt.ErrTokenNotYetValid()), errors.Is(err, jwxjwt.ErrInvalidIssuedAt()):
		return fmt.Errorf("%w: %w", ErrTokenNotYetValid, err)
	default:
		return fmt.Errorf("%w: %w", ErrTokenInvalidSignature, err)
	}
}
