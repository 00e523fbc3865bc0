package observe

import (
	"context"
	"time"
)

// ExecuteFunc is the tool entry point Middleware instruments.
type ExecuteFunc func(ctx context.Context, tool ToolMeta, input any) (any, error)

// Middleware records a span, the execution metrics and one log line for
// every call of the wrapped ExecuteFunc. Results and errors pass through
// unchanged, and the wrapped function is safe for concurrent use.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components become no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	m := &Middleware{tracer: tracer, metrics: metrics, logger: logger}
	if m.tracer == nil {
		m.tracer = NewTracer(nil)
	}
	if m.metrics == nil {
		m.metrics = NopMetrics()
	}
	if m.logger == nil {
		m.logger = NopLogger()
	}
	return m
}

// MiddlewareFromObserver builds a Middleware from obs's tracer, metrics
// and logger.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return NewMiddleware(NewTracer(obs.Tracer()), obs.Metrics(), obs.Logger()), nil
}

// Wrap instruments fn. Calls with invalid metadata are rejected before fn
// runs.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, tool ToolMeta, input any) (any, error) {
		if err := tool.Validate(); err != nil {
			return nil, err
		}

		ctx, span := m.tracer.StartSpan(ctx, tool)
		start := time.Now()
		out, err := fn(ctx, tool, input)
		elapsed := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.metrics.RecordExecution(ctx, tool, elapsed, err)
		m.log(ctx, tool, elapsed, err)
		return out, err
	}
}

func (m *Middleware) log(ctx context.Context, tool ToolMeta, elapsed time.Duration, err error) {
	logger := m.logger.WithTool(tool)
	took := Field{Key: "duration_ms", Value: float64(elapsed.Milliseconds())}
	if err != nil {
		logger.Error(ctx, "tool execution failed", took, Field{Key: "error", Value: err.Error()})
		return
	}
	logger.Info(ctx, "tool execution completed", took)
}
