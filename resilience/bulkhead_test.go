package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	ctx := context.Background()

	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := b.Execute(ctx, succeed); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("error = %v, want ErrBulkheadFull", err)
	}
	b.Release()

	if err := b.Execute(ctx, succeed); err != nil {
		t.Errorf("Execute after Release error = %v", err)
	}
	m := b.Metrics()
	if m.Rejected != 1 || m.Active != 0 || m.MaxActive != 1 {
		t.Errorf("Metrics() = %+v", m)
	}
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	ctx := context.Background()

	_ = b.Acquire(ctx)
	go func() {
		time.Sleep(10 * time.Millisecond)
		b.Release()
	}()

	if err := b.Execute(ctx, succeed); err != nil {
		t.Errorf("Execute() error = %v", err)
	}
}

func TestBulkhead_WaitTimesOut(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 10 * time.Millisecond})
	ctx := context.Background()

	_ = b.Acquire(ctx)
	defer b.Release()

	if err := b.Acquire(ctx); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("Acquire() error = %v, want ErrBulkheadFull", err)
	}
}

func TestBulkhead_LimitsConcurrency(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 3, MaxWait: time.Second})
	ctx := context.Background()

	var mu sync.Mutex
	running, peak := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(ctx, func(context.Context) error {
				mu.Lock()
				running++
				if running > peak {
					peak = running
				}
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}
