package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricExecTotal    = "tool.exec.total"
	MetricExecErrors   = "tool.exec.errors"
	MetricExecDuration = "tool.exec.duration_ms"
	MetricCacheLookups = "cache.lookups"
)

// Metrics records tool executions and cache lookups. Implementations are
// safe for concurrent use and never panic.
type Metrics interface {
	RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error)
	RecordCacheLookup(ctx context.Context, namespace string, hit bool)
}

type instruments struct {
	calls    metric.Int64Counter
	failures metric.Int64Counter
	latency  metric.Float64Histogram
	lookups  metric.Int64Counter
}

// NewMetrics registers the tool and cache instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	var (
		in  instruments
		err error
	)
	counter := func(name, desc, unit string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		c, err = meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		return c
	}

	in.calls = counter(MetricExecTotal, "Tool executions", "{call}")
	in.failures = counter(MetricExecErrors, "Tool executions that returned an error", "{error}")
	in.lookups = counter(MetricCacheLookups, "Cache lookups by namespace and result", "{lookup}")
	if err != nil {
		return nil, err
	}
	in.latency, err = meter.Float64Histogram(MetricExecDuration,
		metric.WithDescription("Tool execution latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (in *instruments) RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error) {
	kv := []attribute.KeyValue{
		attribute.String(KeyToolID, meta.ToolID()),
		attribute.String(KeyToolName, meta.Name),
	}
	if meta.Namespace != "" {
		kv = append(kv, attribute.String(KeyToolNamespace, meta.Namespace))
	}
	attrs := metric.WithAttributes(kv...)

	in.calls.Add(ctx, 1, attrs)
	if err != nil {
		in.failures.Add(ctx, 1, attrs)
	}
	in.latency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (in *instruments) RecordCacheLookup(ctx context.Context, namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	in.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.namespace", namespace),
		attribute.String("cache.result", result),
	))
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }

type nopMetrics struct{}

func (nopMetrics) RecordExecution(context.Context, ToolMeta, time.Duration, error) {}
func (nopMetrics) RecordCacheLookup(context.Context, string, bool)                 {}
