package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/websearch/auth"
	"github.com/jonwraymond/websearch/cache"
	"github.com/jonwraymond/websearch/observe"
	"github.com/jonwraymond/websearch/search"
)

// Cache drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNone   = "none"
)

// Config is the root configuration.
type Config struct {
	Search  SearchConfig   `yaml:"search"`
	Cache   CacheConfig    `yaml:"cache"`
	Observe observe.Config `yaml:"observe"`
	Server  ServerConfig   `yaml:"server"`
	Secrets SecretsConfig  `yaml:"secrets"`
}

// SearchConfig configures the search_web tool.
type SearchConfig struct {
	APIKey         string               `yaml:"google_cse_api_key"`
	CX             string               `yaml:"google_cse_cx"`
	NumResults     int                  `yaml:"num_results"`
	Endpoint       string               `yaml:"endpoint"`
	Timeout        time.Duration        `yaml:"timeout"`
	MaxConcurrent  int                  `yaml:"max_concurrent"`
	RateLimit      float64              `yaml:"rate_limit"`
	Burst          int                  `yaml:"burst"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig configures the remote API circuit breaker.
type CircuitBreakerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	MaxFailures  uint32        `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Driver        string        `yaml:"driver"` // sqlite|memory|redis|none
	Path          string        `yaml:"path"`
	Ephemeral     bool          `yaml:"ephemeral"`
	MaxAge        time.Duration `yaml:"max_age"`
	SweepSchedule string        `yaml:"sweep_schedule"` // cron spec, empty disables
	Redis         RedisConfig   `yaml:"redis"`
}

// RedisConfig configures the redis cache driver.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string         `yaml:"addr"`
	APIKeys      []string       `yaml:"api_keys"`
	APIKeyHeader string         `yaml:"api_key_header"`
	JWT          JWTConfig      `yaml:"jwt"`
	CORSOrigins  []string       `yaml:"cors_origins"`
	Timeouts     ServerTimeouts `yaml:"timeouts"`
}

// JWTConfig enables bearer-token authentication when Secret is set.
type JWTConfig struct {
	Secret   string `yaml:"secret"`
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
}

// ServerTimeouts bounds HTTP connections.
type ServerTimeouts struct {
	Read     time.Duration `yaml:"read"`
	Write    time.Duration `yaml:"write"`
	Idle     time.Duration `yaml:"idle"`
	Shutdown time.Duration `yaml:"shutdown"`
}

// SecretsConfig configures secret providers.
type SecretsConfig struct {
	// Strict rejects secret references that resolve to empty values.
	Strict bool `yaml:"strict"`

	// Providers holds per-provider configuration keyed by provider name.
	Providers map[string]map[string]any `yaml:"providers"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Search: SearchConfig{
			NumResults: search.DefaultNumResults,
			Endpoint:   search.DefaultEndpoint,
			Timeout:    search.DefaultTimeout,
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures:  5,
				ResetTimeout: 30 * time.Second,
			},
		},
		Cache: CacheConfig{
			Driver:    DriverSQLite,
			Path:      cache.DefaultSQLitePath,
			Ephemeral: true,
			MaxAge:    cache.DefaultMaxAge,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "websearch",
			},
		},
		Observe: observe.Config{
			ServiceName: "websearch",
			Tracing:     observe.TracingConfig{Exporter: "none", SamplePct: 1},
			Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			APIKeyHeader: auth.DefaultAPIKeyHeader,
			Timeouts: ServerTimeouts{
				Read:     15 * time.Second,
				Write:    30 * time.Second,
				Idle:     120 * time.Second,
				Shutdown: 10 * time.Second,
			},
		},
	}
}

// Load reads path over Defaults, applies environment overrides, resolves
// secrets and validates the result. An empty path or a missing file
// yields the defaults.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(data, cfg); err != nil {
				return nil, err
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := ResolveSecrets(ctx, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode rejects unknown keys so typos surface instead of silently
// falling back to defaults.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse: %w", err)
	}
	return nil
}

// ToolConfig maps the search section onto search.Config.
func (c *Config) ToolConfig() search.Config {
	s := c.Search
	return search.Config{
		APIKey:        s.APIKey,
		CX:            s.CX,
		NumResults:    s.NumResults,
		Endpoint:      s.Endpoint,
		Timeout:       s.Timeout,
		MaxConcurrent: s.MaxConcurrent,
		RateLimit:     s.RateLimit,
		Burst:         s.Burst,
		CircuitBreaker: search.CircuitBreakerConfig{
			Enabled:      s.CircuitBreaker.Enabled,
			MaxFailures:  s.CircuitBreaker.MaxFailures,
			ResetTimeout: s.CircuitBreaker.ResetTimeout,
		},
	}
}

// AuthConfig maps the server credentials onto auth.Config.
func (c *Config) AuthConfig() auth.Config {
	return auth.Config{
		APIKeys:      c.Server.APIKeys,
		APIKeyHeader: c.Server.APIKeyHeader,
		JWTSecret:    c.Server.JWT.Secret,
		JWT: auth.JWTConfig{
			Issuer:   c.Server.JWT.Issuer,
			Audience: c.Server.JWT.Audience,
		},
	}
}

// CachePolicy returns the TTL policy for the configured driver.
func (c *Config) CachePolicy() cache.Policy {
	if c.Cache.Driver == DriverNone {
		return cache.NoCachePolicy()
	}
	return cache.Policy{MaxAge: c.Cache.MaxAge}
}
