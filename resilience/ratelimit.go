package resilience

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Rate limiter defaults.
const (
	DefaultRate    = 100.0
	DefaultBurst   = 10
	DefaultMaxWait = time.Second
)

// RateLimiterConfig configures RateLimiter.
type RateLimiterConfig struct {
	// Rate is calls per second. Default: DefaultRate.
	Rate float64

	// Burst is the bucket size. Default: DefaultBurst.
	Burst int

	// WaitOnLimit queues calls for a token instead of rejecting them.
	WaitOnLimit bool

	// MaxWait caps how long a queued call waits. Default: DefaultMaxWait.
	MaxWait time.Duration
}

// RateLimiter keeps outbound calls within the remote API's quota using a
// token bucket.
type RateLimiter struct {
	bucket  *rate.Limiter
	wait    bool
	maxWait time.Duration
}

// NewRateLimiter creates a RateLimiter.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	return &RateLimiter{
		bucket:  rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
		wait:    cfg.WaitOnLimit,
		maxWait: cfg.MaxWait,
	}
}

// Allow takes a token if one is available now.
func (rl *RateLimiter) Allow() bool {
	return rl.bucket.Allow()
}

// Wait reserves a token and sleeps until it is due. A reservation due
// later than MaxWait is given back and ErrRateLimitExceeded returned.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := rl.bucket.Reserve()
	if !res.OK() {
		return ErrRateLimitExceeded
	}
	switch delay := res.Delay(); {
	case delay == 0:
		return nil
	case delay > rl.maxWait:
		res.Cancel()
		return ErrRateLimitExceeded
	default:
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			res.Cancel()
			return ctx.Err()
		}
	}
}

// Execute runs op once a token is obtained.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if rl.wait {
		if err := rl.Wait(ctx); err != nil {
			return err
		}
	} else if !rl.Allow() {
		return ErrRateLimitExceeded
	}
	return op(ctx)
}

// Tokens returns the tokens currently in the bucket.
func (rl *RateLimiter) Tokens() float64 {
	return rl.bucket.Tokens()
}
