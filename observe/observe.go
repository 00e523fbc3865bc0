package observe

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/websearch/observe/exporters"
)

// Observer hands out the telemetry primitives for one process. Disabled
// signals are backed by no-op implementations, never nil. Safe for
// concurrent use.
type Observer interface {
	Tracer() trace.Tracer
	Meter() metric.Meter
	Metrics() Metrics
	Logger() Logger

	// Shutdown flushes and stops the SDK providers. It honors ctx's deadline.
	Shutdown(ctx context.Context) error
}

// Logger is the structured logger used across the service. Logging is best
// effort: implementations never panic and never return errors.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	WithTool(meta ToolMeta) Logger
}

// Field is one key/value pair on a log line.
type Field struct {
	Key   string
	Value any
}

type observer struct {
	tracer  trace.Tracer
	meter   metric.Meter
	metrics Metrics
	logger  Logger

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// NewObserver validates cfg and builds the providers it enables. Enabled
// providers are also installed as the otel globals.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}
	opts := exporters.Options{Writer: cfg.Output, Registerer: cfg.Registerer}

	o := &observer{
		tracer:  tracenoop.NewTracerProvider().Tracer("noop"),
		meter:   noop.NewMeterProvider().Meter("noop"),
		metrics: NopMetrics(),
		logger:  newLogger(cfg),
	}
	if cfg.Tracing.Enabled {
		if err := o.startTracing(ctx, cfg, opts, res); err != nil {
			return nil, fmt.Errorf("observe: tracing: %w", err)
		}
	}
	if cfg.Metrics.Enabled {
		if err := o.startMetrics(ctx, cfg, opts, res); err != nil {
			_ = o.Shutdown(ctx)
			return nil, fmt.Errorf("observe: metrics: %w", err)
		}
	}
	return o, nil
}

func newLogger(cfg Config) Logger {
	switch {
	case !cfg.Logging.Enabled:
		return NopLogger()
	case cfg.Output != nil:
		return NewLoggerWithWriter(cfg.Logging.Level, cfg.Output)
	default:
		return NewLogger(cfg.Logging.Level)
	}
}

func sampler(pct float64) sdktrace.Sampler {
	if pct >= MaxSamplePct {
		return sdktrace.AlwaysSample()
	}
	if pct <= MinSamplePct {
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(pct)
}

func (o *observer) startTracing(ctx context.Context, cfg Config, opts exporters.Options, res *resource.Resource) error {
	exp, err := exporters.NewTracingExporter(ctx, cfg.Tracing.Exporter, opts)
	if err != nil {
		return err
	}
	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.Tracing.SamplePct)),
	}
	if exp != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	}
	o.tp = sdktrace.NewTracerProvider(tpOpts...)
	o.tracer = o.tp.Tracer(cfg.ServiceName)
	otel.SetTracerProvider(o.tp)
	return nil
}

func (o *observer) startMetrics(ctx context.Context, cfg Config, opts exporters.Options, res *resource.Resource) error {
	reader, err := exporters.NewMetricsReader(ctx, cfg.Metrics.Exporter, opts)
	if err != nil {
		return err
	}
	mpOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if reader != nil {
		mpOpts = append(mpOpts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(mpOpts...)
	meter := mp.Meter(cfg.ServiceName)
	m, err := NewMetrics(meter)
	if err != nil {
		_ = mp.Shutdown(ctx)
		return fmt.Errorf("instruments: %w", err)
	}
	o.mp, o.meter, o.metrics = mp, meter, m
	otel.SetMeterProvider(mp)
	return nil
}

func (o *observer) Tracer() trace.Tracer { return o.tracer }
func (o *observer) Meter() metric.Meter  { return o.meter }
func (o *observer) Metrics() Metrics     { return o.metrics }
func (o *observer) Logger() Logger       { return o.logger }

func (o *observer) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tp != nil {
		if err := o.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if o.mp != nil {
		if err := o.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// NopLogger returns a Logger that drops every line.
func NopLogger() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...Field)  {}
func (nopLogger) Warn(context.Context, string, ...Field)  {}
func (nopLogger) Error(context.Context, string, ...Field) {}
func (nopLogger) Debug(context.Context, string, ...Field) {}
func (l nopLogger) WithTool(ToolMeta) Logger              { return l }
