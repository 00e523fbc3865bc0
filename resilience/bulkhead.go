package resilience

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent is used when BulkheadConfig.MaxConcurrent is unset.
const DefaultMaxConcurrent = 10

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent caps in-flight calls. Default: DefaultMaxConcurrent.
	MaxConcurrent int

	// MaxWait is how long a call may queue for a slot. Zero rejects at once.
	MaxWait time.Duration
}

// Bulkhead caps the number of concurrent outbound calls so a slow remote
// API cannot pile up goroutines and sockets.
type Bulkhead struct {
	cfg BulkheadConfig
	sem *semaphore.Weighted

	inFlight atomic.Int64
	peak     atomic.Int64
	rejected atomic.Int64
}

// NewBulkhead creates a bulkhead.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Bulkhead{cfg: cfg, sem: semaphore.NewWeighted(int64(cfg.MaxConcurrent))}
}

// Acquire takes a slot, queueing up to MaxWait. It returns ErrBulkheadFull
// when no slot frees up in time, or the context error if ctx ends first.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if !b.sem.TryAcquire(1) {
		if err := b.wait(ctx); err != nil {
			return err
		}
	}
	n := b.inFlight.Add(1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return nil
}

func (b *Bulkhead) wait(ctx context.Context) error {
	if b.cfg.MaxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}
	waitCtx, cancel := context.WithTimeout(ctx, b.cfg.MaxWait)
	defer cancel()
	if err := b.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.rejected.Add(1)
		return ErrBulkheadFull
	}
	return nil
}

// Release frees a slot taken by Acquire.
func (b *Bulkhead) Release() {
	b.inFlight.Add(-1)
	b.sem.Release(1)
}

// Execute runs op while holding a slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()
	return op(ctx)
}

// BulkheadMetrics is a point-in-time snapshot.
type BulkheadMetrics struct {
	Active        int
	MaxActive     int
	Available     int
	MaxConcurrent int
	Rejected      int64
}

// Metrics returns a snapshot of slot usage.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	active := int(b.inFlight.Load())
	return BulkheadMetrics{
		Active:        active,
		MaxActive:     int(b.peak.Load()),
		Available:     b.cfg.MaxConcurrent - active,
		MaxConcurrent: b.cfg.MaxConcurrent,
		Rejected:      b.rejected.Load(),
	}
}
