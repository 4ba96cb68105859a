package ragflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// APIError represents a collection service error response.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Code is the application-level code from the response envelope.
	// Non-zero means the service refused the request, even on HTTP 200.
	Code int

	// Message is the service's error message.
	Message string

	// URL is the request URL.
	URL string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("ragflow: API error %d (http %d): %s (URL: %s)", e.Code, e.StatusCode, e.Message, e.URL)
	}
	return fmt.Sprintf("ragflow: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsRetryable checks if the error is worth another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrRemoteTransient) || errors.Is(err, domain.ErrRemoteUnavailable)
}

// IsRejected checks if the service refused the request outright.
func IsRejected(err error) bool {
	return errors.Is(err, domain.ErrRemoteRejected)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}
	return false
}

// IsOwnedElsewhere checks if the error says the requested collection name
// belongs to another principal. The service reports this only through the
// error message, so the check is textual.
func IsOwnedElsewhere(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "don't own") || strings.Contains(msg, "permission")
}
