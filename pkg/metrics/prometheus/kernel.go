package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/coreipc/corert/pkg/metrics"
)

func init() {
	metrics.RegisterKernelMetricsConstructor(newKernelMetrics)
}

type kernelMetrics struct {
	handlesCreated  *prometheus.CounterVec
	handlesClosed   *prometheus.CounterVec
	pipeWriteBytes  *prometheus.CounterVec
	pipeReadBytes   *prometheus.CounterVec
	waitSetOutcomes *prometheus.CounterVec
}

func newKernelMetrics() metrics.KernelMetrics {
	reg := metrics.GetRegistry()

	return &kernelMetrics{
		handlesCreated: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "corert_kernel_handles_created_total",
			Help: "Total handles created, by kind",
		}, []string{"kind"}),
		handlesClosed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "corert_kernel_handles_closed_total",
			Help: "Total handles closed, by kind",
		}, []string{"kind"}),
		pipeWriteBytes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "corert_kernel_pipe_write_bytes_total",
			Help: "Total bytes written to message or data pipes, by kind",
		}, []string{"kind"}),
		pipeReadBytes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "corert_kernel_pipe_read_bytes_total",
			Help: "Total bytes read from message or data pipes, by kind",
		}, []string{"kind"}),
		waitSetOutcomes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "corert_kernel_waitset_outcomes_total",
			Help: "Total wait-set entry dispatch outcomes",
		}, []string{"outcome"}),
	}
}

func (m *kernelMetrics) RecordHandleCreated(kind string) {
	if m == nil {
		return
	}
	m.handlesCreated.WithLabelValues(kind).Inc()
}

func (m *kernelMetrics) RecordHandleClosed(kind string) {
	if m == nil {
		return
	}
	m.handlesClosed.WithLabelValues(kind).Inc()
}

func (m *kernelMetrics) RecordPipeWrite(kind string, numBytes int) {
	if m == nil {
		return
	}
	m.pipeWriteBytes.WithLabelValues(kind).Add(float64(numBytes))
}

func (m *kernelMetrics) RecordPipeRead(kind string, numBytes int) {
	if m == nil {
		return
	}
	m.pipeReadBytes.WithLabelValues(kind).Add(float64(numBytes))
}

func (m *kernelMetrics) RecordWaitSetOutcome(outcome string) {
	if m == nil {
		return
	}
	m.waitSetOutcomes.WithLabelValues(outcome).Inc()
}
