package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/jonwraymond/websearch/search"
)

// ValidationError collects every configuration problem found.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config: validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

func (v *ValidationError) add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg. It returns a *ValidationError listing all problems.
// Missing search credentials are not an error: the tool still starts and
// reports itself as not configured.
func Validate(cfg *Config) error {
	ve := &ValidationError{}

	s := cfg.Search
	if s.NumResults < 1 || s.NumResults > search.MaxNumResults {
		ve.add("search.num_results must be between 1 and %d, got %d", search.MaxNumResults, s.NumResults)
	}
	if s.Timeout <= 0 {
		ve.add("search.timeout must be > 0")
	}
	if s.MaxConcurrent < 0 {
		ve.add("search.max_concurrent must be >= 0")
	}
	if s.RateLimit < 0 || s.Burst < 0 {
		ve.add("search.rate_limit and search.burst must be >= 0")
	}

	c := cfg.Cache
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			ve.add("cache.path is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			ve.add("cache.redis.addr is required for the redis driver")
		}
	case DriverMemory, DriverNone:
	default:
		ve.add("cache.driver must be one of sqlite, memory, redis, none; got %q", c.Driver)
	}
	if c.Driver != DriverNone && c.MaxAge <= 0 {
		ve.add("cache.max_age must be > 0")
	}
	if c.SweepSchedule != "" {
		if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
			ve.add("cache.sweep_schedule: %v", err)
		}
	}

	if err := cfg.Observe.Validate(); err != nil {
		ve.add("observe: %v", err)
	}

	if cfg.Server.Addr == "" {
		ve.add("server.addr is required")
	}
	for i, k := range cfg.Server.APIKeys {
		if strings.TrimSpace(k) == "" {
			ve.add("server.api_keys[%d] is empty", i)
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
