package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Metrics struct {
	transforms  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	outputBytes *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transforms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imgchop",
			Name:      "transform_total",
			Help:      "Image transforms by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "imgchop",
			Name:      "transform_duration_seconds",
			Help:      "Time spent in the image library per transform.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"operation"}),
		outputBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "imgchop",
			Name:      "transform_output_bytes",
			Help:      "Size of encoded transform results.",
			Buckets:   prometheus.ExponentialBuckets(4<<10, 4, 8),
		}, []string{"operation"}),
	}

	reg.MustRegister(m.transforms, m.duration, m.outputBytes)

	return m
}

// Observe records one finished transform. size is ignored on error.
func (m *Metrics) Observe(operation string, started time.Time, size int, err error) {
	if err != nil {
		m.transforms.WithLabelValues(operation, OutcomeError).Inc()
		return
	}

	m.transforms.WithLabelValues(operation, OutcomeOK).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	m.outputBytes.WithLabelValues(operation).Observe(float64(size))
}

func (m *Metrics) Transforms() *prometheus.CounterVec {
	return m.transforms
}
