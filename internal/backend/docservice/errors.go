package docservice

import (
	"errors"
	"fmt"
)

// DefaultErrorMessage is used when a failed response carries no message.
const DefaultErrorMessage = "Downstream request failed"

// DownstreamError is a non-2xx response from the document service.
type DownstreamError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *DownstreamError) Error() string {
	return fmt.Sprintf("document service returned %d: %s", e.StatusCode, e.Message)
}

// IsClientError reports whether the downstream rejected the request itself.
func (e *DownstreamError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// AsDownstreamError unwraps err to a *DownstreamError.
func AsDownstreamError(err error) (*DownstreamError, bool) {
	var de *DownstreamError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
