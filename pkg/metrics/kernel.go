package metrics

// KernelMetrics records kernel-object lifecycle and wait-set outcomes
// (§4.1-§4.4): handle creation/closure by kind, pipe throughput, and
// wait-set dispatch outcomes.
type KernelMetrics interface {
	// RecordHandleCreated records a new handle of the given kind:
	// "message_pipe", "data_pipe_producer", "data_pipe_consumer",
	// "shared_buffer", or "wait_set".
	RecordHandleCreated(kind string)

	// RecordHandleClosed records a handle closure of the given kind.
	RecordHandleClosed(kind string)

	// RecordPipeWrite records bytes written to a message or data pipe.
	RecordPipeWrite(kind string, numBytes int)

	// RecordPipeRead records bytes read from a message or data pipe.
	RecordPipeRead(kind string, numBytes int)

	// RecordWaitSetOutcome records a wait-set entry's dispatch outcome:
	// "ok", "failed_precondition", or "cancelled".
	RecordWaitSetOutcome(outcome string)
}

var newPrometheusKernelMetrics func() KernelMetrics

// RegisterKernelMetricsConstructor registers the Prometheus kernel
// metrics constructor. Called by pkg/metrics/prometheus/kernel.go.
func RegisterKernelMetricsConstructor(constructor func() KernelMetrics) {
	newPrometheusKernelMetrics = constructor
}

// NewKernelMetrics returns a Prometheus-backed KernelMetrics, or nil if
// metrics are disabled.
func NewKernelMetrics() KernelMetrics {
	if !IsEnabled() || newPrometheusKernelMetrics == nil {
		return nil
	}
	return newPrometheusKernelMetrics()
}

// RecordHandleCreated is a nil-safe wrapper around KernelMetrics.RecordHandleCreated.
func RecordHandleCreated(m KernelMetrics, kind string) {
	if m != nil {
		m.RecordHandleCreated(kind)
	}
}

// RecordHandleClosed is a nil-safe wrapper around KernelMetrics.RecordHandleClosed.
func RecordHandleClosed(m KernelMetrics, kind string) {
	if m != nil {
		m.RecordHandleClosed(kind)
	}
}

// RecordPipeWrite is a nil-safe wrapper around KernelMetrics.RecordPipeWrite.
func RecordPipeWrite(m KernelMetrics, kind string, numBytes int) {
	if m != nil {
		m.RecordPipeWrite(kind, numBytes)
	}
}

// RecordPipeRead is a nil-safe wrapper around KernelMetrics.RecordPipeRead.
func RecordPipeRead(m KernelMetrics, kind string, numBytes int) {
	if m != nil {
		m.RecordPipeRead(kind, numBytes)
	}
}

// RecordWaitSetOutcome is a nil-safe wrapper around KernelMetrics.RecordWaitSetOutcome.
func RecordWaitSetOutcome(m KernelMetrics, outcome string) {
	if m != nil {
		m.RecordWaitSetOutcome(outcome)
	}
}
