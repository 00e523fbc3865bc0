package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumValue(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordExecution(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := ToolMeta{Namespace: "google_cse", Name: "search_web"}
	ctx := context.Background()

	m.RecordExecution(ctx, meta, 120*time.Millisecond, nil)
	m.RecordExecution(ctx, meta, 80*time.Millisecond, errors.New("boom"))

	rm := collect(t, reader)
	if got := sumValue(t, findMetric(rm, "tool.exec.total")); got != 2 {
		t.Errorf("tool.exec.total = %d, want 2", got)
	}
	if got := sumValue(t, findMetric(rm, "tool.exec.errors")); got != 1 {
		t.Errorf("tool.exec.errors = %d, want 1", got)
	}

	hist := findMetric(rm, "tool.exec.duration_ms")
	if hist == nil {
		t.Fatal("tool.exec.duration_ms not found")
	}
	h, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", hist.Data)
	}
	if len(h.DataPoints) != 1 || h.DataPoints[0].Count != 2 {
		t.Errorf("histogram data points = %+v", h.DataPoints)
	}
	ns, ok := h.DataPoints[0].Attributes.Value(attribute.Key("tool.namespace"))
	if !ok || ns.AsString() != "google_cse" {
		t.Errorf("tool.namespace attribute = %v", ns)
	}
}

func TestMetrics_RecordCacheLookup(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCacheLookup(ctx, "google_cse_search", false)
	m.RecordCacheLookup(ctx, "google_cse_search", true)
	m.RecordCacheLookup(ctx, "google_cse_search", true)

	found := findMetric(collect(t, reader), "cache.lookups")
	if found == nil {
		t.Fatal("cache.lookups not found")
	}
	sum := found.Data.(metricdata.Sum[int64])

	byResult := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("cache.result"))
		byResult[v.AsString()] += dp.Value
	}
	if byResult["hit"] != 2 || byResult["miss"] != 1 {
		t.Errorf("lookups by result = %v, want hit=2 miss=1", byResult)
	}
}

func TestNopMetrics(t *testing.T) {
	m := NopMetrics()
	m.RecordExecution(context.Background(), ToolMeta{Name: "noop"}, time.Millisecond, nil)
	m.RecordCacheLookup(context.Background(), "ns", true)
}
