package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/websearch/resilience"
)

func TestEnvelope_JSONShapes(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
		want string
	}{
		{
			name: "results",
			env:  resultsEnvelope([]Result{{Title: "t", Description: "d"}}),
			want: fmt.Sprintf(`{"results":[{"title":"t","description":"d"}],"instruction":%q}`, Instruction),
		},
		{
			name: "no results",
			env:  Envelope{NoResults: true},
			want: `{"results":"No results found"}`,
		},
		{
			name: "error",
			env:  Envelope{Error: "Search error: 403", Results: []Result{{Title: "ignored"}}},
			want: `{"error":"Search error: 403"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.env)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Envelope
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.env.IsError(), back.IsError())
			assert.Equal(t, tt.env.NoResults, back.NoResults)
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestErrorEnvelope(t *testing.T) {
	timeout := 10 * time.Second
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not configured", ErrNotConfigured, "Google Custom Search not configured"},
		{"empty query", ErrEmptyQuery, "query must not be empty"},
		{"status", &StatusError{StatusCode: 429}, "Search error: 429"},
		{"wrapped status", fmt.Errorf("fetch: %w", &StatusError{StatusCode: 503}), "Search error: 503"},
		{"timeout", resilience.ErrTimeout, "Search timed out after 10s"},
		{"client timeout", &url.Error{Op: "Get", URL: "u", Err: timeoutErr{}}, "Search timed out after 10s"},
		{"caller deadline", context.DeadlineExceeded, "Error searching web: context deadline exceeded"},
		{"caller cancel", context.Canceled, "Error searching web: context canceled"},
		{"circuit open", resilience.ErrCircuitOpen, "Error searching web: resilience: circuit breaker is open"},
		{"other", errors.New("connection reset"), "Error searching web: connection reset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorEnvelope(tt.err, timeout).Error)
		})
	}
}

func TestCountsAgainstCircuit(t *testing.T) {
	assert.False(t, countsAgainstCircuit(nil))
	assert.False(t, countsAgainstCircuit(&StatusError{StatusCode: 403}))
	assert.True(t, countsAgainstCircuit(&StatusError{StatusCode: 502}))
	assert.True(t, countsAgainstCircuit(resilience.ErrTimeout))
	assert.True(t, countsAgainstCircuit(errors.New("dial tcp: connection refused")))
}

func TestClampNumResults(t *testing.T) {
	for in, want := range map[int]int{0: 2, -3: 1, 1: 1, 5: 5, 10: 10, 11: 10} {
		assert.Equal(t, want, ClampNumResults(in), "ClampNumResults(%d)", in)
	}
}
