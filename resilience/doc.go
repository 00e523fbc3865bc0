// Package resilience provides the guards placed around outbound search calls.
//
// # Patterns
//
//   - Timeout: bounds a call and reports ErrTimeout when the deadline passes.
//   - Circuit Breaker: fails fast after repeated upstream failures (sony/gobreaker).
//   - Rate Limiter: token bucket on golang.org/x/time/rate.
//   - Bulkhead: caps concurrent calls with golang.org/x/sync/semaphore.
//
// Failed calls are never retried: a search either answers within its timeout
// or reports the failure to the caller.
//
// # Usage
//
//	executor := resilience.NewExecutor(
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 5, Burst: 5})),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "google_cse"})),
//	    resilience.WithTimeout(10*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return callExternalService(ctx)
//	})
package resilience
