package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context.
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context: the fields a handler
// or a reactor callback wants attached to every log line it emits
// without threading them through every call.
type LogContext struct {
	TraceID   string // OpenTelemetry trace ID
	SpanID    string // OpenTelemetry span ID
	Method    string // IPC interface method name being dispatched
	HandlerID uint64 // reactor handler ID processing this entry
	Handle    uint32 // raw kernel handle identifier in play
	StartTime time.Time
}

// WithContext returns a new context with the given LogContext.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext starting its duration clock now.
func NewLogContext() *LogContext {
	return &LogContext{StartTime: time.Now()}
}

// Clone creates a copy of the LogContext.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithMethod returns a copy with the method set.
func (lc *LogContext) WithMethod(method string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Method = method
	}
	return clone
}

// WithHandler returns a copy with the handler ID set.
func (lc *LogContext) WithHandler(id uint64) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.HandlerID = id
	}
	return clone
}

// WithHandle returns a copy with the raw handle identifier set.
func (lc *LogContext) WithHandle(h uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Handle = h
	}
	return clone
}

// WithTrace returns a copy with trace info set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
