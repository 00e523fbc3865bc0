package observe

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"os"
	"slices"
	"sync"
	"time"
)

// LogLevel orders log lines by severity.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

// ParseLogLevel maps a level name to its LogLevel. Anything unrecognized is
// LevelInfo.
func ParseLogLevel(s string) LogLevel {
	if i := slices.Index(levelNames[:], s); i >= 0 {
		return LogLevel(i)
	}
	return LevelInfo
}

func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelError {
		return levelNames[LevelInfo]
	}
	return levelNames[l]
}

// jsonLogger emits one JSON object per line. Loggers derived with WithTool
// share the parent's writer.
type jsonLogger struct {
	min   LogLevel
	sink  *syncWriter
	attrs map[string]any
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) line(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(append(b, '\n'))
}

var _ Logger = (*jsonLogger)(nil)

// NewLogger returns a JSON logger on stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter returns a JSON logger on w.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return &jsonLogger{min: ParseLogLevel(level), sink: &syncWriter{w: w}, attrs: map[string]any{}}
}

func (l *jsonLogger) WithTool(meta ToolMeta) Logger {
	attrs := maps.Clone(l.attrs)
	for k, v := range meta.labels() {
		attrs[k] = v
	}
	return &jsonLogger{min: l.min, sink: l.sink, attrs: attrs}
}

func (l *jsonLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelDebug, msg, fields)
}

func (l *jsonLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelInfo, msg, fields)
}

func (l *jsonLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelWarn, msg, fields)
}

func (l *jsonLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelError, msg, fields)
}

func (l *jsonLogger) write(ctx context.Context, level LogLevel, msg string, fields []Field) {
	if level < l.min {
		return
	}

	rec := maps.Clone(l.attrs)
	if rec == nil {
		rec = map[string]any{}
	}
	rec["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	rec["level"] = level.String()
	rec["msg"] = msg
	if id := RequestIDFromContext(ctx); id != "" {
		rec[KeyRequestID] = id
	}
	for _, f := range fields {
		rec[f.Key] = f.Value
		if slices.Contains(RedactedFields, f.Key) {
			rec[f.Key] = "[REDACTED]"
		}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	l.sink.line(b)
}

type requestIDKey struct{}

// WithRequestID returns ctx carrying id. Log lines and spans created under
// it are tagged with request_id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
