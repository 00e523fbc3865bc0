package resilience

import (
	"context"
	"time"
)

// Stage names, outermost first.
const (
	StageRateLimit      = "rate_limit"
	StageBulkhead       = "bulkhead"
	StageCircuitBreaker = "circuit_breaker"
	StageTimeout        = "timeout"
)

// Operation is a unit of guarded work, typically one outbound API call.
type Operation func(ctx context.Context) error

// Executor guards outbound calls. A call passes the rate limiter, then the
// bulkhead, then the circuit breaker, and finally runs under the timeout,
// so a timed-out call counts against the breaker and a rejected call never
// consumes a concurrency slot.
type Executor struct {
	limiter  *RateLimiter
	bulkhead *Bulkhead
	breaker  *CircuitBreaker
	timeout  *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor builds an Executor from opts. With no options Execute runs
// the operation unguarded.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithRateLimiter throttles call starts.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) { e.limiter = rl }
}

// WithBulkhead caps in-flight calls.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// WithCircuitBreaker fails fast while the remote side is failing.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.breaker = cb }
}

// WithTimeout bounds each call. Non-positive durations disable it.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = NewTimeout(TimeoutConfig{Timeout: d})
		} else {
			e.timeout = nil
		}
	}
}

// Timeout returns the per-call limit, or zero when none is set.
func (e *Executor) Timeout() time.Duration {
	if e == nil || e.timeout == nil {
		return 0
	}
	return e.timeout.Duration()
}

// Stages lists the configured guards, outermost first.
func (e *Executor) Stages() []string {
	if e == nil {
		return nil
	}
	var stages []string
	if e.limiter != nil {
		stages = append(stages, StageRateLimit)
	}
	if e.bulkhead != nil {
		stages = append(stages, StageBulkhead)
	}
	if e.breaker != nil {
		stages = append(stages, StageCircuitBreaker)
	}
	if e.timeout != nil {
		stages = append(stages, StageTimeout)
	}
	return stages
}

// Execute runs op through every configured guard. A nil Executor runs op
// directly.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	if e == nil {
		return op(ctx)
	}
	return e.guard(op)(ctx)
}

// guard wraps op from the innermost stage outwards.
func (e *Executor) guard(op Operation) Operation {
	if t := e.timeout; t != nil {
		op = bind(t.Execute, op)
	}
	if cb := e.breaker; cb != nil {
		op = bind(cb.Execute, op)
	}
	if b := e.bulkhead; b != nil {
		op = bind(b.Execute, op)
	}
	if rl := e.limiter; rl != nil {
		op = bind(rl.Execute, op)
	}
	return op
}

func bind(stage func(context.Context, func(context.Context) error) error, next Operation) Operation {
	return func(ctx context.Context) error {
		return stage(ctx, next)
	}
}
