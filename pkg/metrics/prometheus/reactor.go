// Package prometheus provides the concrete Prometheus collectors behind
// the pkg/metrics interfaces. Each file registers its constructor with
// pkg/metrics during init, so callers only ever import pkg/metrics
// directly and this package is wired in via a blank import.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/coreipc/corert/pkg/metrics"
)

func init() {
	metrics.RegisterReactorMetricsConstructor(newReactorMetrics)
}

type reactorMetrics struct {
	handlerCount    prometheus.Gauge
	waitDuration    prometheus.Histogram
	waitResults     prometheus.Histogram
	dispatches      *prometheus.CounterVec
	tasksPosted     prometheus.Counter
	taskExecutionMs prometheus.Histogram
}

func newReactorMetrics() metrics.ReactorMetrics {
	reg := metrics.GetRegistry()

	return &reactorMetrics{
		handlerCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "corert_reactor_handlers",
			Help: "Number of handlers currently registered with the reactor's wait set",
		}),
		waitDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "corert_reactor_wait_duration_milliseconds",
			Help:    "Duration of reactor Wait calls in milliseconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
		waitResults: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "corert_reactor_wait_results",
			Help:    "Number of results returned by a single Wait call",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
		}),
		dispatches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "corert_reactor_dispatches_total",
			Help: "Total handler callback dispatches by outcome",
		}, []string{"outcome"}),
		tasksPosted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "corert_reactor_tasks_posted_total",
			Help: "Total delayed tasks posted to the reactor",
		}),
		taskExecutionMs: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "corert_reactor_task_queue_duration_milliseconds",
			Help:    "Time from a delayed task's scheduled run time until it started running",
			Buckets: []float64{0.1, 1, 5, 10, 50, 100, 500, 1000},
		}),
	}
}

func (m *reactorMetrics) RecordHandlerCount(n int) {
	if m == nil {
		return
	}
	m.handlerCount.Set(float64(n))
}

func (m *reactorMetrics) ObserveWait(duration time.Duration, numResults int) {
	if m == nil {
		return
	}
	m.waitDuration.Observe(float64(duration.Microseconds()) / 1000.0)
	m.waitResults.Observe(float64(numResults))
}

func (m *reactorMetrics) RecordDispatch(outcome string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(outcome).Inc()
}

func (m *reactorMetrics) RecordTaskPosted() {
	if m == nil {
		return
	}
	m.tasksPosted.Inc()
}

func (m *reactorMetrics) ObserveTaskExecution(duration time.Duration) {
	if m == nil {
		return
	}
	m.taskExecutionMs.Observe(float64(duration.Microseconds()) / 1000.0)
}
