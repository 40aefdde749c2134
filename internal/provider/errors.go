package provider

import (
	"errors"
	"fmt"
)

// Common errors returned by provider clients.
var (
	// ErrNotFound indicates the provider has no record for the query.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates the provider refused the call with 429.
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrNetworkError indicates the request never produced a response.
	ErrNetworkError = errors.New("network error communicating with provider")

	// ErrInvalidResponse indicates a body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from provider")
)

// APIError represents any other non-2xx response.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider API error (status %d): %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
