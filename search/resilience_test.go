package search

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_OpensOnServerErrors(t *testing.T) {
	api := newFakeAPI(t, http.StatusServiceUnavailable, "")
	tool := newTestTool(api, nil, func(c *Config) {
		c.CircuitBreaker = CircuitBreakerConfig{Enabled: true, MaxFailures: 2, ResetTimeout: time.Minute}
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, "Search error: 503", tool.Invoke(context.Background(), Input{Query: "q"}).Error)
	}
	env := tool.Invoke(context.Background(), Input{Query: "q"})

	assert.True(t, strings.HasPrefix(env.Error, "Error searching web: "), env.Error)
	assert.EqualValues(t, 2, api.calls.Load(), "open circuit must not reach the API")
}

func TestCircuitBreaker_IgnoresClientErrors(t *testing.T) {
	api := newFakeAPI(t, http.StatusForbidden, "")
	tool := newTestTool(api, nil, func(c *Config) {
		c.CircuitBreaker = CircuitBreakerConfig{Enabled: true, MaxFailures: 1, ResetTimeout: time.Minute}
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, "Search error: 403", tool.Invoke(context.Background(), Input{Query: "q"}).Error)
	}
	assert.EqualValues(t, 3, api.calls.Load())
}

func TestRateLimit_Configured(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, twoItems)
	tool := newTestTool(api, nil, func(c *Config) {
		c.RateLimit = 1000
		c.Burst = 5
		c.MaxConcurrent = 2
	})

	for i := 0; i < 3; i++ {
		assert.False(t, tool.Invoke(context.Background(), Input{Query: "q"}).IsError())
	}
}
