package search

import (
	"strings"
	"time"

	"github.com/jonwraymond/websearch/resilience"
)

const (
	// DefaultNumResults is used when NumResults is zero.
	DefaultNumResults = 2

	// MaxNumResults is the largest page the API serves.
	MaxNumResults = 10

	// DefaultTimeout bounds each remote call.
	DefaultTimeout = resilience.DefaultTimeout
)

// Config configures a Tool.
type Config struct {
	// APIKey is the Custom Search API key. It is sent on every request and
	// excluded from cache keys.
	APIKey string

	// CX is the Programmable Search Engine id.
	CX string

	// NumResults is the number of results requested, clamped to [1,10].
	// Default: 2
	NumResults int

	// Endpoint overrides DefaultEndpoint.
	Endpoint string

	// Timeout bounds each remote call.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxConcurrent caps in-flight remote calls. Zero disables the bulkhead.
	MaxConcurrent int

	// RateLimit caps remote calls per second. Zero disables rate limiting.
	RateLimit float64

	// Burst is the rate limiter bucket size.
	Burst int

	// CircuitBreaker opens after consecutive remote failures.
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig enables and tunes the circuit breaker.
type CircuitBreakerConfig struct {
	Enabled      bool
	MaxFailures  uint32
	ResetTimeout time.Duration
}

// Configured reports whether both credentials are present.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.CX) != ""
}

// ClampNumResults maps n into [1, MaxNumResults], treating 0 as the default.
func ClampNumResults(n int) int {
	switch {
	case n == 0:
		return DefaultNumResults
	case n < 1:
		return 1
	case n > MaxNumResults:
		return MaxNumResults
	default:
		return n
	}
}

func (c Config) withDefaults() Config {
	c.NumResults = ClampNumResults(c.NumResults)
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
