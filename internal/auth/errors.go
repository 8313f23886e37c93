package auth

import (
	"errors"
	"fmt"
)

// Wire messages for rejected requests.
const (
	MessageUnauthorized = "Unauthorized"
	MessageInvalidToken = "Invalid token"
)

// Reason is the internal cause of a rejection.
type Reason string

// Rejection reasons.
const (
	ReasonMissingBearer    Reason = "missing_bearer"
	ReasonEmptyDevIdentity Reason = "empty_dev_identity"
	ReasonMalformed        Reason = "malformed"
	ReasonExpired          Reason = "expired"
	ReasonNotYetValid      Reason = "not_yet_valid"
	ReasonInvalidSignature Reason = "invalid_signature"
	ReasonMissingSubject   Reason = "missing_subject"
)

// ErrUnauthorized is matched by every authentication failure.
var ErrUnauthorized = errors.New("unauthorized")

// Error is an authentication failure.
type Error struct {
	Reason Reason
	Err    error
}

// Error implements error.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unauthorized (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("unauthorized (%s)", e.Reason)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match ErrUnauthorized.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized
}

// Message returns the text written to the client.
func (e *Error) Message() string {
	if e.Reason == ReasonMissingBearer {
		return MessageUnauthorized
	}
	return MessageInvalidToken
}

// MessageFor returns the wire message for any error returned by
// Authenticate.
func MessageFor(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Message()
	}
	return MessageInvalidToken
}
