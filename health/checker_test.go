package health

import (
	"context"
	"errors"
	"testing"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestStatus_String(t *testing.T) {
	tests := map[Status]string{
		StatusHealthy:   "healthy",
		StatusDegraded:  "degraded",
		StatusUnhealthy: "unhealthy",
		Status(42):      "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestPingChecker(t *testing.T) {
	down := errors.New("database is locked")

	tests := []struct {
		name       string
		target     Pinger
		wantStatus Status
		wantErr    error
	}{
		{"reachable", stubPinger{}, StatusHealthy, nil},
		{"unreachable", stubPinger{err: down}, StatusUnhealthy, down},
		{"nil target", nil, StatusUnhealthy, ErrCheckFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewPingChecker("cache", tt.target, nil).Check(context.Background())
			if r.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", r.Status, tt.wantStatus)
			}
			if !errors.Is(r.Error, tt.wantErr) {
				t.Errorf("Error = %v, want %v", r.Error, tt.wantErr)
			}
		})
	}
}

func TestPingChecker_Details(t *testing.T) {
	c := NewPingChecker("cache", stubPinger{}, func(context.Context) map[string]any {
		return map[string]any{"entries": 3}
	})
	if c.Name() != "cache" {
		t.Errorf("Name() = %q", c.Name())
	}
	r := c.Check(context.Background())
	if r.Details["entries"] != 3 {
		t.Errorf("Details = %v", r.Details)
	}
}

func TestConfiguredChecker(t *testing.T) {
	configured := false
	c := NewConfiguredChecker("search", func() bool { return configured })

	if r := c.Check(context.Background()); r.Status != StatusDegraded {
		t.Errorf("unconfigured Status = %v, want degraded", r.Status)
	}
	configured = true
	if r := c.Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("configured Status = %v, want healthy", r.Status)
	}
	if r := NewConfiguredChecker("x", nil).Check(context.Background()); r.Status != StatusDegraded {
		t.Errorf("nil func Status = %v, want degraded", r.Status)
	}
}

func TestMemoryChecker(t *testing.T) {
	tests := []struct {
		name     string
		maxAlloc uint64
		want     Status
	}{
		{"generous limit", 1 << 50, StatusHealthy},
		{"tiny limit", 1, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewMemoryChecker(MemoryCheckerConfig{MaxAlloc: tt.maxAlloc}).Check(context.Background())
			if r.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", r.Status, tt.want, r.Message)
			}
		})
	}
}

func TestMemoryChecker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r := NewMemoryChecker(MemoryCheckerConfig{}).Check(ctx); r.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", r.Status)
	}
}
