package supervisor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

// Metrics are the supervisor's Prometheus instruments. A nil *Metrics is a no-op.
type Metrics struct {
	Health              prometheus.Gauge
	RisingEdges         prometheus.Counter
	Publishes           *prometheus.CounterVec
	SessionConnects     *prometheus.CounterVec
	AssociationAttempts prometheus.Counter
	AssociationFailures prometheus.Counter
	DegradedReads       prometheus.Counter
}

// NewMetrics creates and registers the instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Health: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildlife",
			Subsystem: "supervisor",
			Name:      "health_status",
			Help:      "Connection health: 0 unknown, 1 no network, 2 network only, 3 fully connected.",
		}),
		RisingEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildlife",
			Subsystem: "supervisor",
			Name:      "motion_rising_edges_total",
			Help:      "Motion episodes detected.",
		}),
		Publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildlife",
			Subsystem: "supervisor",
			Name:      "trigger_publishes_total",
			Help:      "Trigger publish outcomes.",
		}, []string{"result"}),
		SessionConnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildlife",
			Subsystem: "supervisor",
			Name:      "session_connects_total",
			Help:      "Broker connect attempts by outcome.",
		}, []string{"result"}),
		AssociationAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildlife",
			Subsystem: "supervisor",
			Name:      "association_attempts_total",
			Help:      "Network association polls.",
		}),
		AssociationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildlife",
			Subsystem: "supervisor",
			Name:      "association_failures_total",
			Help:      "Association sequences that exhausted their attempts.",
		}),
		DegradedReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildlife",
			Subsystem: "supervisor",
			Name:      "climate_degraded_reads_total",
			Help:      "Snapshots whose climate values were replaced by zeros.",
		}),
	}
	reg.MustRegister(m.Health, m.RisingEdges, m.Publishes, m.SessionConnects,
		m.AssociationAttempts, m.AssociationFailures, m.DegradedReads)
	return m
}

func (m *Metrics) health(s entities.HealthStatus) {
	if m != nil {
		m.Health.Set(float64(s))
	}
}

func (m *Metrics) risingEdge() {
	if m != nil {
		m.RisingEdges.Inc()
	}
}

func (m *Metrics) publish(ok bool) {
	if m != nil {
		m.Publishes.WithLabelValues(result(ok)).Inc()
	}
}

func (m *Metrics) sessionConnect(ok bool) {
	if m != nil {
		m.SessionConnects.WithLabelValues(result(ok)).Inc()
	}
}

func (m *Metrics) associationAttempt() {
	if m != nil {
		m.AssociationAttempts.Inc()
	}
}

func (m *Metrics) associationFailed() {
	if m != nil {
		m.AssociationFailures.Inc()
	}
}

func (m *Metrics) degradedRead() {
	if m != nil {
		m.DegradedReads.Inc()
	}
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
