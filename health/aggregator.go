package health

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultCheckTimeout bounds a full CheckAll run.
const DefaultCheckTimeout = 10 * time.Second

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	// Timeout bounds Check and CheckAll. Default: DefaultCheckTimeout.
	Timeout time.Duration
}

type entry struct {
	name    string
	checker Checker
}

// Aggregator runs registered checkers and folds their results.
type Aggregator struct {
	timeout time.Duration

	mu      sync.RWMutex
	entries []entry
}

// NewAggregator creates an aggregator. Only the first config is used.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	a := &Aggregator{timeout: DefaultCheckTimeout}
	if len(config) > 0 && config[0].Timeout > 0 {
		a.timeout = config[0].Timeout
	}
	return a
}

// Register adds checker under name. Registering a name again replaces the
// checker and keeps its original position.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i := a.index(name); i >= 0 {
		a.entries[i].checker = checker
		return
	}
	a.entries = append(a.entries, entry{name: name, checker: checker})
}

func (a *Aggregator) index(name string) int {
	return slices.IndexFunc(a.entries, func(e entry) bool { return e.name == name })
}

func (a *Aggregator) snapshot() []entry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.entries)
}

// CheckerNames returns the registered names in registration order.
func (a *Aggregator) CheckerNames() []string {
	entries := a.snapshot()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Check runs the checker registered as name.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	i := a.index(name)
	var checker Checker
	if i >= 0 {
		checker = a.entries[i].checker
	}
	a.mu.RUnlock()

	if checker == nil {
		return Result{}, ErrCheckerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return runCheck(ctx, checker), nil
}

// CheckAll runs every checker concurrently under one deadline. Checkers
// still running at the deadline are reported unhealthy.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	entries := a.snapshot()
	if len(entries) == 0 {
		return map[string]Result{}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results := make([]Result, len(entries))
	var g errgroup.Group
	for i, e := range entries {
		g.Go(func() error {
			results[i] = runCheck(ctx, e.checker)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]Result, len(entries))
	for i, e := range entries {
		out[e.name] = results[i]
	}
	return out
}

// OverallStatus returns the worst status in results; healthy when empty.
func OverallStatus(results map[string]Result) Status {
	overall := StatusHealthy
	for _, r := range results {
		overall = max(overall, r.Status)
	}
	return overall
}

// runCheck returns as soon as ctx ends even if the checker does not.
func runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()
	ch := make(chan Result, 1)
	go func() {
		r := checker.Check(ctx)
		r.Duration = time.Since(start)
		if r.Timestamp.IsZero() {
			r.Timestamp = start
		}
		ch <- r
	}()

	select {
	case r := <-ch:
		return r
	case <-ctx.Done():
		r := Unhealthy("check timed out", ErrCheckTimeout)
		r.Duration, r.Timestamp = time.Since(start), start
		return r
	}
}
