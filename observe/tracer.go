package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Tracer opens one span per tool invocation.
type Tracer interface {
	StartSpan(ctx context.Context, meta ToolMeta) (context.Context, trace.Span)
	EndSpan(span trace.Span, err error)
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer. A nil tracer yields a no-op.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		t = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &otelTracer{tracer: t}
}

// StartSpan starts an internal span labeled with the tool and, when the
// context carries one, the request ID.
func (t *otelTracer) StartSpan(ctx context.Context, meta ToolMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool(KeyToolError, false))
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, attribute.String(KeyRequestID, id))
	}
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan sets the span status from err and ends it.
func (t *otelTracer) EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.Bool(KeyToolError, true))
	span.SetStatus(codes.Error, err.Error())
}
