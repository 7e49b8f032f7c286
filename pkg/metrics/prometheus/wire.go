package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/coreipc/corert/pkg/metrics"
)

func init() {
	metrics.RegisterWireMetricsConstructor(newWireMetrics)
}

type wireMetrics struct {
	encodeDuration     *prometheus.HistogramVec
	encodeBytes        *prometheus.HistogramVec
	decodeDuration     *prometheus.HistogramVec
	decodeBytes        *prometheus.HistogramVec
	validationFailures *prometheus.CounterVec
}

var sizeBuckets = []float64{8, 64, 256, 1024, 4096, 16384, 65536, 262144}

func newWireMetrics() metrics.WireMetrics {
	reg := metrics.GetRegistry()

	return &wireMetrics{
		encodeDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "corert_wire_encode_duration_microseconds",
			Help:    "Duration of wire Encode calls in microseconds, by struct descriptor",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		}, []string{"struct_name"}),
		encodeBytes: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "corert_wire_encode_bytes",
			Help:    "Size of Encode output in bytes, by struct descriptor",
			Buckets: sizeBuckets,
		}, []string{"struct_name"}),
		decodeDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "corert_wire_decode_duration_microseconds",
			Help:    "Duration of wire Decode calls in microseconds, by struct descriptor",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		}, []string{"struct_name"}),
		decodeBytes: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "corert_wire_decode_bytes",
			Help:    "Size of Decode input in bytes, by struct descriptor",
			Buckets: sizeBuckets,
		}, []string{"struct_name"}),
		validationFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "corert_wire_validation_failures_total",
			Help: "Total rejected messages by wire.FailureKind",
		}, []string{"failure_kind"}),
	}
}

func (m *wireMetrics) ObserveEncode(structName string, numBytes uint32, duration time.Duration) {
	if m == nil {
		return
	}
	m.encodeDuration.WithLabelValues(structName).Observe(float64(duration.Nanoseconds()) / 1000.0)
	m.encodeBytes.WithLabelValues(structName).Observe(float64(numBytes))
}

func (m *wireMetrics) ObserveDecode(structName string, numBytes uint32, duration time.Duration) {
	if m == nil {
		return
	}
	m.decodeDuration.WithLabelValues(structName).Observe(float64(duration.Nanoseconds()) / 1000.0)
	m.decodeBytes.WithLabelValues(structName).Observe(float64(numBytes))
}

func (m *wireMetrics) RecordValidationFailure(failureKind string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(failureKind).Inc()
}
