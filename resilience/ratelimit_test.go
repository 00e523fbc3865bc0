package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_BurstThenReject(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := rl.Execute(ctx, succeed); err != nil {
			t.Fatalf("call %d error = %v", i, err)
		}
	}
	if err := rl.Execute(ctx, succeed); !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("error = %v, want ErrRateLimitExceeded", err)
	}
}

func TestRateLimiter_WaitOnLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 50, Burst: 1, WaitOnLimit: true, MaxWait: time.Second})
	ctx := context.Background()

	_ = rl.Execute(ctx, succeed)
	start := time.Now()
	if err := rl.Execute(ctx, succeed); err != nil {
		t.Fatalf("waiting call error = %v", err)
	}
	if time.Since(start) < 5*time.Millisecond {
		t.Error("second call should have waited for a token")
	}
}

func TestRateLimiter_MaxWaitExceeded(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1, WaitOnLimit: true, MaxWait: 10 * time.Millisecond})
	ctx := context.Background()

	_ = rl.Execute(ctx, succeed)
	if err := rl.Execute(ctx, succeed); !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("error = %v, want ErrRateLimitExceeded", err)
	}
}

func TestRateLimiter_CancelledContext(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, WaitOnLimit: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := rl.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestRateLimiter_Tokens(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 4})
	rl.Allow()
	if got := rl.Tokens(); got < 2.9 || got > 3.1 {
		t.Errorf("Tokens() = %v, want about 3", got)
	}
}
