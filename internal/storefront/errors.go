package storefront

import (
	"errors"
	"fmt"
)

// DefaultErrorMessage is used when the API rejects a request without a message.
const DefaultErrorMessage = "Something went wrong"

// APIError is a non-2xx response from the storefront API.
type APIError struct {
	Status  int
	Message string
	// FromServer is true when Message came from the response body.
	FromServer bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// NetworkError means the request never produced a response (timeout, DNS,
// connection refused).
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a client-side precondition failure. No request was issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// AuthorizationError means the credentials were accepted but the account is
// not an administrator.
type AuthorizationError struct {
	Role string
}

func (e *AuthorizationError) Error() string {
	return "Access denied. Admin privileges required."
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UserMessage returns the text shown to the administrator for err. Server
// messages and client-side validation messages are shown verbatim; anything
// else falls back to the per-operation message.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.FromServer && apiErr.Message != "" {
		return apiErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	var authErr *AuthorizationError
	if errors.As(err, &authErr) {
		return authErr.Error()
	}
	return fallback
}

// StatusOf returns the HTTP status of an APIError, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
