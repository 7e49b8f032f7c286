package metrics

import "time"

// WireMetrics records codec activity: encode/decode latency and size, and
// validation failures by kind (§3, §3.6).
type WireMetrics interface {
	// ObserveEncode records an Encode call's duration and output size for
	// the named struct descriptor.
	ObserveEncode(structName string, numBytes uint32, duration time.Duration)

	// ObserveDecode records a Decode call's duration and input size for
	// the named struct descriptor.
	ObserveDecode(structName string, numBytes uint32, duration time.Duration)

	// RecordValidationFailure records a rejected message by its
	// wire.FailureKind.
	RecordValidationFailure(failureKind string)
}

var newPrometheusWireMetrics func() WireMetrics

// RegisterWireMetricsConstructor registers the Prometheus wire metrics
// constructor. Called by pkg/metrics/prometheus/wire.go.
func RegisterWireMetricsConstructor(constructor func() WireMetrics) {
	newPrometheusWireMetrics = constructor
}

// NewWireMetrics returns a Prometheus-backed WireMetrics, or nil if
// metrics are disabled.
func NewWireMetrics() WireMetrics {
	if !IsEnabled() || newPrometheusWireMetrics == nil {
		return nil
	}
	return newPrometheusWireMetrics()
}

// ObserveEncode is a nil-safe wrapper around WireMetrics.ObserveEncode.
func ObserveEncode(m WireMetrics, structName string, numBytes uint32, duration time.Duration) {
	if m != nil {
		m.ObserveEncode(structName, numBytes, duration)
	}
}

// ObserveDecode is a nil-safe wrapper around WireMetrics.ObserveDecode.
func ObserveDecode(m WireMetrics, structName string, numBytes uint32, duration time.Duration) {
	if m != nil {
		m.ObserveDecode(structName, numBytes, duration)
	}
}

// RecordValidationFailure is a nil-safe wrapper around
// WireMetrics.RecordValidationFailure.
func RecordValidationFailure(m WireMetrics, failureKind string) {
	if m != nil {
		m.RecordValidationFailure(failureKind)
	}
}
