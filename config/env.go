package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WEBSEARCH_"

// ApplyEnvOverrides maps WEBSEARCH_* environment variables onto cfg.
// Unset or empty variables leave the field alone.
func ApplyEnvOverrides(cfg *Config) error {
	e := envReader{}

	e.str("GOOGLE_CSE_API_KEY", &cfg.Search.APIKey)
	e.str("GOOGLE_CSE_CX", &cfg.Search.CX)
	e.int("NUM_RESULTS", &cfg.Search.NumResults)
	e.str("SEARCH_ENDPOINT", &cfg.Search.Endpoint)
	e.duration("SEARCH_TIMEOUT", &cfg.Search.Timeout)

	e.str("CACHE_DRIVER", &cfg.Cache.Driver)
	e.str("CACHE_PATH", &cfg.Cache.Path)
	e.bool("CACHE_EPHEMERAL", &cfg.Cache.Ephemeral)
	e.duration("CACHE_MAX_AGE", &cfg.Cache.MaxAge)
	e.str("CACHE_SWEEP_SCHEDULE", &cfg.Cache.SweepSchedule)
	e.str("REDIS_ADDR", &cfg.Cache.Redis.Addr)
	e.str("REDIS_PASSWORD", &cfg.Cache.Redis.Password)
	e.int("REDIS_DB", &cfg.Cache.Redis.DB)

	e.str("SERVER_ADDR", &cfg.Server.Addr)
	e.list("API_KEYS", &cfg.Server.APIKeys)
	e.str("JWT_SECRET", &cfg.Server.JWT.Secret)

	e.str("LOG_LEVEL", &cfg.Observe.Logging.Level)
	e.str("TRACING_EXPORTER", &cfg.Observe.Tracing.Exporter)
	e.bool("TRACING_ENABLED", &cfg.Observe.Tracing.Enabled)
	e.str("METRICS_EXPORTER", &cfg.Observe.Metrics.Exporter)

	return e.err
}

// envReader records the first parse failure and skips the rest.
type envReader struct {
	err error
}

func (e *envReader) lookup(name string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) fail(name string, err error) {
	e.err = fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.lookup(name); ok {
		*dst = v
	}
}

func (e *envReader) list(name string, dst *[]string) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func (e *envReader) int(name string, dst *int) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(name, err)
		return
	}
	*dst = n
}

func (e *envReader) bool(name string, dst *bool) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(name, err)
		return
	}
	*dst = b
}

func (e *envReader) duration(name string, dst *time.Duration) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(name, err)
		return
	}
	*dst = d
}
