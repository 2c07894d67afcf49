package errors

import (
	"errors"
	"net/http"

	"smartparking/internal/pass"
	"smartparking/internal/registry"
	"smartparking/internal/service"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// StatusFor maps a domain error to its HTTP status. Every error kind is
// a per-request outcome; nothing here is fatal to the process.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, pass.ErrInvalidWindow),
		errors.Is(err, pass.ErrWindowTooLong),
		errors.Is(err, pass.ErrInvalidRange),
		errors.Is(err, pass.ErrRangeTooLong),
		errors.Is(err, registry.ErrKindMismatch):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, registry.ErrSpotNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrSequenceViolation),
		errors.Is(err, registry.ErrSpotUnavailable),
		errors.Is(err, registry.ErrSpotLocked):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
