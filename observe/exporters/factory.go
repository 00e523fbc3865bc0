// Package exporters builds the OpenTelemetry span exporters and metric
// readers selected by name in observe.Config.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ErrEndpointNotConfigured is returned for a network exporter whose
// endpoint variable is unset.
var ErrEndpointNotConfigured = errors.New("exporters: endpoint not configured")

const (
	envOTLP        = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPTraces  = "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"
	envOTLPMetrics = "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"
	envJaeger      = "OTEL_EXPORTER_JAEGER_ENDPOINT"
)

// Options are the local sinks exporters write to.
type Options struct {
	// Writer takes stdout exporter output. Nil means os.Stderr.
	Writer io.Writer

	// Registerer takes the Prometheus collector. Nil means the default
	// registry.
	Registerer promclient.Registerer
}

func (o Options) writer() io.Writer {
	if o.Writer != nil {
		return o.Writer
	}
	return os.Stderr
}

// endpoint returns the first non-empty variable among keys.
func endpoint(keys ...string) (string, error) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: set %v", ErrEndpointNotConfigured, keys)
}

// NewTracingExporter returns the span exporter called name: stdout, otlp,
// jaeger or none. Jaeger is reached over its OTLP gRPC receiver.
func NewTracingExporter(ctx context.Context, name string, opts Options) (sdktrace.SpanExporter, error) {
	switch name {
	case "", "none":
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))
	case "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(opts.writer()))
	case "otlp":
		if _, err := endpoint(envOTLP, envOTLPTraces); err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx)
	case "jaeger":
		url, err := endpoint(envJaeger)
		if err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(url))
	}
	return nil, fmt.Errorf("unknown exporter: %q", name)
}

// NewMetricsReader returns the metric reader called name: stdout, otlp,
// prometheus or none.
func NewMetricsReader(ctx context.Context, name string, opts Options) (sdkmetric.Reader, error) {
	switch name {
	case "", "none":
		return sdkmetric.NewManualReader(), nil
	case "stdout":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(opts.writer()))
		if err != nil {
			return nil, fmt.Errorf("stdout metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp), nil
	case "otlp":
		if _, err := endpoint(envOTLP, envOTLPMetrics); err != nil {
			return nil, err
		}
		exp, err := otlpmetricgrpc.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("otlp metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp), nil
	case "prometheus":
		var popts []prometheus.Option
		if opts.Registerer != nil {
			popts = append(popts, prometheus.WithRegisterer(opts.Registerer))
		}
		exp, err := prometheus.New(popts...)
		if err != nil {
			return nil, fmt.Errorf("prometheus exporter: %w", err)
		}
		return exp, nil
	}
	return nil, fmt.Errorf("unknown metrics exporter: %q", name)
}
