package search

import (
	"errors"
	"fmt"
)

// Sentinel errors for search.
var (
	// ErrNotConfigured is returned when the API key or engine id is missing.
	ErrNotConfigured = errors.New("search: Google Custom Search not configured")

	// ErrEmptyQuery is returned for blank queries.
	ErrEmptyQuery = errors.New("search: query must not be empty")

	// ErrInvalidInput is returned by InvokeJSON when arguments fail schema validation.
	ErrInvalidInput = errors.New("search: invalid input")

	// ErrNoResults signals an empty result set. It keeps the set out of the
	// cache and is never reported to callers as a failure.
	ErrNoResults = errors.New("search: no results")
)

// StatusError reports a non-200 response from the search API.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search: remote returned HTTP %d", e.StatusCode)
}

// Temporary reports whether the status indicates a server-side failure.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500
}
