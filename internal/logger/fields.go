package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across the runtime core,
// the kernel backend, and the reactor. Use these consistently so log
// lines can be aggregated and queried the same way regardless of which
// layer emitted them.
const (
	// Distributed tracing.
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Handle / object identity.
	KeyHandle     = "handle"      // raw kernel handle identifier
	KeyHandleKind = "handle_kind" // message_pipe, data_pipe, shared_buffer, wait_set
	KeyRights     = "rights"      // bitmask of khandle.Rights

	// Wire codec.
	KeyMethod       = "method"        // IPC interface method name
	KeyRequestID    = "request_id"    // message header request ID
	KeyStructName   = "struct_name"   // descriptor name in play
	KeyNumBytes     = "num_bytes"     // encoded object size
	KeyFailureKind  = "failure_kind"  // wire.FailureKind on a validation error
	KeyHandleCount  = "handle_count"  // advertised handle count for validate

	// Wait set / reactor.
	KeyHandlerID  = "handler_id"  // reactor handler ID
	KeyCookie     = "cookie"      // wait-set entry cookie
	KeyOutcome    = "outcome"     // reactor.Outcome / waitset.Outcome
	KeyDeadlineMs = "deadline_ms" // relative deadline in milliseconds

	// Operation metadata.
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorKind  = "error_kind" // khandle.Kind
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// Handle returns a slog.Attr for a raw kernel handle identifier.
func Handle(raw uint32) slog.Attr { return slog.String(KeyHandle, fmt.Sprintf("0x%x", raw)) }

// HandleKind returns a slog.Attr naming the kind of object a handle refers to.
func HandleKind(kind string) slog.Attr { return slog.String(KeyHandleKind, kind) }

// Rights returns a slog.Attr for a rights bitmask.
func Rights(bits uint32) slog.Attr { return slog.String(KeyRights, fmt.Sprintf("0x%x", bits)) }

// Method returns a slog.Attr for the IPC interface method name.
func Method(name string) slog.Attr { return slog.String(KeyMethod, name) }

// RequestID returns a slog.Attr for a message header request ID.
func RequestID(id uint64) slog.Attr { return slog.Uint64(KeyRequestID, id) }

// StructName returns a slog.Attr for the wire descriptor name in play.
func StructName(name string) slog.Attr { return slog.String(KeyStructName, name) }

// NumBytes returns a slog.Attr for an encoded object's size.
func NumBytes(n uint32) slog.Attr { return slog.Uint64(KeyNumBytes, uint64(n)) }

// FailureKind returns a slog.Attr for a wire validation failure kind.
func FailureKind(kind string) slog.Attr { return slog.String(KeyFailureKind, kind) }

// HandleCount returns a slog.Attr for the advertised handle count of a message.
func HandleCount(n uint32) slog.Attr { return slog.Uint64(KeyHandleCount, uint64(n)) }

// HandlerID returns a slog.Attr for a reactor handler ID.
func HandlerID(id uint64) slog.Attr { return slog.Uint64(KeyHandlerID, id) }

// Cookie returns a slog.Attr for a wait-set entry cookie.
func Cookie(c uint64) slog.Attr { return slog.Uint64(KeyCookie, c) }

// Outcome returns a slog.Attr for a reactor or wait-set outcome.
func Outcome(o string) slog.Attr { return slog.String(KeyOutcome, o) }

// DeadlineMs returns a slog.Attr for a relative deadline in milliseconds.
func DeadlineMs(ms float64) slog.Attr { return slog.Float64(KeyDeadlineMs, ms) }

// DurationMs returns a slog.Attr for an operation's duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Error returns a slog.Attr for an error's message.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// ErrorKind returns a slog.Attr for a khandle.Kind's string form.
func ErrorKind(kind string) slog.Attr { return slog.String(KeyErrorKind, kind) }
