package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	jwxjwt "github.com/lestrrat-go/jwx/v2/jwt"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = 2 * time.Hour

// options holds settings shared by Signer and Validator.
type options struct {
	ttl time.Duration
	now func() time.Time
}

// Option configures a Signer or Validator.
type Option func(*options)

// WithTTL sets the lifetime of issued tokens. Ignored by Validator.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Signer issues HS256 tokens.
type Signer struct {
	key []byte
	options
}

// NewSigner creates a signer for the given secret.
func NewSigner(secret string, opts ...Option) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrInvalidKey)
	}
	return &Signer{
		key:     []byte(secret),
		options: newOptions(opts),
	}, nil
}

// Issue returns a signed token for subject, valid from now for the
// configured TTL.
func (s *Signer) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("cannot issue token without subject")
	}

	now := s.now()
	tok, err := jwxjwt.NewBuilder().
		Subject(subject).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwxjwt.Sign(tok, jwxjwt.WithKey(jwa.HS256, s.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// TTL returns the lifetime of issued tokens.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}
