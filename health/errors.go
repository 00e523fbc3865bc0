package health

import "errors"

var (
	// ErrCheckFailed marks a component that answered but is not usable.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check abandoned at the aggregator deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned for an unregistered checker name.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
