package processor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the processor's Prometheus instruments. A nil *Metrics is a no-op.
type Metrics struct {
	Triggers        *prometheus.CounterVec
	Captures        *prometheus.CounterVec
	CaptureDuration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildlife",
			Subsystem: "processor",
			Name:      "triggers_total",
			Help:      "Received triggers by outcome.",
		}, []string{"outcome"}),
		Captures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildlife",
			Subsystem: "processor",
			Name:      "captures_total",
			Help:      "Finished captures by classification or failure.",
		}, []string{"result"}),
		CaptureDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildlife",
			Subsystem: "processor",
			Name:      "capture_duration_seconds",
			Help:      "Time from trigger to stored capture.",
			Buckets:   []float64{5, 10, 12, 15, 20, 30, 60},
		}),
	}
	reg.MustRegister(m.Triggers, m.Captures, m.CaptureDuration)
	return m
}

func (m *Metrics) trigger(outcome string) {
	if m != nil {
		m.Triggers.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) capture(result string) {
	if m != nil {
		m.Captures.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) observeCapture(d time.Duration) {
	if m != nil {
		m.CaptureDuration.Observe(d.Seconds())
	}
}
