package jwt

import "errors"

// Sentinel errors for JWT operations.
var (
	// ErrTokenMalformed indicates that the token is not a parseable JWS.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrTokenExpired indicates that the token has expired.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenNotYetValid indicates that the token is not yet valid.
	ErrTokenNotYetValid = errors.New("token is not yet valid")

	// ErrTokenInvalidSignature indicates that the signature does not verify
	// with the configured secret and algorithm.
	ErrTokenInvalidSignature = errors.New("token signature is invalid")

	// ErrTokenMissingSubject indicates that "sub" is absent or empty.
	ErrTokenMissingSubject = errors.New("token subject is missing")

	// ErrInvalidKey indicates that the signing secret is unusable.
	ErrInvalidKey = errors.New("signing key is invalid")
)
