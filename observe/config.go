package observe

import (
	"fmt"
	"io"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// Config selects which signals the Observer emits and where they go.
type Config struct {
	ServiceName string        `yaml:"service_name"`
	Version     string        `yaml:"version"`
	Tracing     TracingConfig `yaml:"tracing"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Logging     LoggingConfig `yaml:"logging"`

	// Output takes log lines and stdout exporter output. Nil means
	// os.Stderr; stdout is reserved for the MCP stdio stream.
	Output io.Writer `yaml:"-"`

	// Registerer takes the collector of the "prometheus" metrics exporter.
	// Nil means prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer `yaml:"-"`
}

// TracingConfig selects the span exporter and sampling ratio.
type TracingConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Exporter  string  `yaml:"exporter"`
	SamplePct float64 `yaml:"sample_pct"`
}

// MetricsConfig selects the metrics reader.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// LoggingConfig sets the minimum log level.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
}

// Accepted names. The empty string picks the default.
var (
	TracingExporters = []string{"", "none", "stdout", "otlp", "jaeger"}
	MetricsExporters = []string{"", "none", "stdout", "otlp", "prometheus"}
	LogLevels        = []string{"", "debug", "info", "warn", "error"}
)

// Validate reports the first problem found. Sections that are disabled are
// not checked.
func (c *Config) Validate() error {
	switch {
	case c.ServiceName == "":
		return ErrMissingServiceName
	case c.Tracing.Enabled && !slices.Contains(TracingExporters, c.Tracing.Exporter):
		return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, c.Tracing.Exporter)
	case c.Tracing.Enabled && (c.Tracing.SamplePct < MinSamplePct || c.Tracing.SamplePct > MaxSamplePct):
		return fmt.Errorf("%w: got %g", ErrInvalidSamplePct, c.Tracing.SamplePct)
	case c.Metrics.Enabled && !slices.Contains(MetricsExporters, c.Metrics.Exporter):
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, c.Metrics.Exporter)
	case c.Logging.Enabled && !slices.Contains(LogLevels, c.Logging.Level):
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	return nil
}
