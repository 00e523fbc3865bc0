package health

import (
	"context"
)

// Pinger is implemented by components with a reachability probe, such as
// the SQLite and Redis cache backends.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports a Pinger as healthy when Ping succeeds.
type PingChecker struct {
	name    string
	target  Pinger
	details func(ctx context.Context) map[string]any
}

// NewPingChecker creates a checker for target. details, if non-nil, is
// called after a successful ping to annotate the result.
func NewPingChecker(name string, target Pinger, details func(ctx context.Context) map[string]any) *PingChecker {
	return &PingChecker{name: name, target: target, details: details}
}

func (c *PingChecker) Name() string {
	return c.name
}

func (c *PingChecker) Check(ctx context.Context) Result {
	if c.target == nil {
		return Unhealthy(c.name+" not initialized", ErrCheckFailed)
	}
	if err := c.target.Ping(ctx); err != nil {
		return Unhealthy(c.name+" unreachable", err)
	}
	r := Healthy(c.name + " reachable")
	if c.details != nil {
		r = r.WithDetails(c.details(ctx))
	}
	return r
}

// ConfiguredChecker reports Degraded while a required setting is missing.
// The service keeps answering, but every answer is a configuration error.
type ConfiguredChecker struct {
	name       string
	configured func() bool
}

// NewConfiguredChecker creates a checker around configured.
func NewConfiguredChecker(name string, configured func() bool) *ConfiguredChecker {
	return &ConfiguredChecker{name: name, configured: configured}
}

func (c *ConfiguredChecker) Name() string {
	return c.name
}

func (c *ConfiguredChecker) Check(context.Context) Result {
	if c.configured == nil || !c.configured() {
		return Degraded(c.name + " not configured")
	}
	return Healthy(c.name + " configured")
}
