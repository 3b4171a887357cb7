package api

import (
	"errors"
	"fmt"
)

// Common API errors
var (
	// ErrMissingBaseURL is returned when the client is built without a backend URL.
	ErrMissingBaseURL = errors.New("backend URL is required")

	// ErrMissingAPIKey is returned when the client is built without an API key.
	ErrMissingAPIKey = errors.New("backend API key is required")

	// ErrUnexpectedStatus is matched by every APIError.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	// Op is the client method that failed (e.g., "ListSettlements").
	Op string

	// StatusCode is the HTTP status returned by the backend.
	StatusCode int

	// Message is the backend's error message, or the raw body when it is not JSON.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %s failed with status %d", e.Op, e.StatusCode)
}

// Is matches ErrUnexpectedStatus.
func (e *APIError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
