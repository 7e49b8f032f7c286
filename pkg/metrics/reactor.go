package metrics

import "time"

// ReactorMetrics records run-loop activity: handler registration, wait-set
// dispatch outcomes, and delayed task execution (§4.5).
type ReactorMetrics interface {
	// RecordHandlerCount records the number of handlers currently
	// registered with the wait set.
	RecordHandlerCount(n int)

	// ObserveWait records one Wait call's latency and how many results
	// it returned.
	ObserveWait(duration time.Duration, numResults int)

	// RecordDispatch records a handler callback outcome: "ready",
	// "failed_precondition", "cancelled", "deadline_exceeded", or "aborted".
	RecordDispatch(outcome string)

	// RecordTaskPosted records a delayed task being scheduled.
	RecordTaskPosted()

	// ObserveTaskExecution records how late a delayed task started: the
	// time from its scheduled run time to the moment it began running.
	ObserveTaskExecution(duration time.Duration)
}

// newPrometheusReactorMetrics is populated by pkg/metrics/prometheus/reactor.go
// during its package init, breaking the import cycle between the two packages.
var newPrometheusReactorMetrics func() ReactorMetrics

// RegisterReactorMetricsConstructor registers the Prometheus reactor
// metrics constructor. Called by pkg/metrics/prometheus/reactor.go.
func RegisterReactorMetricsConstructor(constructor func() ReactorMetrics) {
	newPrometheusReactorMetrics = constructor
}

// NewReactorMetrics returns a Prometheus-backed ReactorMetrics, or nil if
// metrics are disabled. Callers should tolerate a nil ReactorMetrics and
// skip recording, the same way a nil *Reactor skips wiring at all.
func NewReactorMetrics() ReactorMetrics {
	if !IsEnabled() || newPrometheusReactorMetrics == nil {
		return nil
	}
	return newPrometheusReactorMetrics()
}

// RecordHandlerCount is a nil-safe wrapper around ReactorMetrics.RecordHandlerCount.
func RecordHandlerCount(m ReactorMetrics, n int) {
	if m != nil {
		m.RecordHandlerCount(n)
	}
}

// ObserveWait is a nil-safe wrapper around ReactorMetrics.ObserveWait.
func ObserveWait(m ReactorMetrics, duration time.Duration, numResults int) {
	if m != nil {
		m.ObserveWait(duration, numResults)
	}
}

// RecordDispatch is a nil-safe wrapper around ReactorMetrics.RecordDispatch.
func RecordDispatch(m ReactorMetrics, outcome string) {
	if m != nil {
		m.RecordDispatch(outcome)
	}
}

// RecordTaskPosted is a nil-safe wrapper around ReactorMetrics.RecordTaskPosted.
func RecordTaskPosted(m ReactorMetrics) {
	if m != nil {
		m.RecordTaskPosted()
	}
}

// ObserveTaskExecution is a nil-safe wrapper around ReactorMetrics.ObserveTaskExecution.
func ObserveTaskExecution(m ReactorMetrics, duration time.Duration) {
	if m != nil {
		m.ObserveTaskExecution(duration)
	}
}
