package resilience

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout is used when TimeoutConfig.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// TimeoutConfig configures Timeout.
type TimeoutConfig struct {
	// Timeout bounds one call. Default: DefaultTimeout.
	Timeout time.Duration
}

// Timeout gives each call its own deadline.
type Timeout struct {
	limit time.Duration
}

// NewTimeout creates a Timeout.
func NewTimeout(cfg TimeoutConfig) *Timeout {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Timeout{limit: cfg.Timeout}
}

// Duration returns the per-call limit.
func (t *Timeout) Duration() time.Duration {
	return t.limit
}

// Execute runs op under the deadline and returns ErrTimeout once it passes,
// without waiting for op to notice its cancelled context. Cancellation of
// the parent context is returned as is.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeoutCause(ctx, t.limit, ErrTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- op(ctx) }()

	select {
	case err := <-done:
		if err != nil && errors.Is(context.Cause(ctx), ErrTimeout) {
			return ErrTimeout
		}
		return err
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
