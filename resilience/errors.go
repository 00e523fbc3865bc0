package resilience

import "errors"

var (
	// ErrCircuitOpen rejects calls while the breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded rejects calls beyond the configured rate.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull rejects calls when every concurrency slot is taken.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout reports a call that outlived its deadline.
	ErrTimeout = errors.New("resilience: operation timed out")
)
