package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "mindcare/pkg/platform/audit"
)

// Metrics holds Prometheus metrics for audit publishing.
type Metrics struct {
	Emitted         *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	Dropped         prometheus.Counter
}

// NewMetrics creates and registers the audit metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Emitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcare_audit_events_total",
			Help: "Total number of audit events persisted",
		}, []string{"category"}),
		PersistFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcare_audit_persist_failures_total",
			Help: "Total number of audit events that failed to persist",
		}, []string{"category"}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mindcare_audit_dropped_total",
			Help: "Total number of operations events dropped because the buffer was full",
		}),
	}
}

func (m *Metrics) IncEmitted(category audit.EventCategory) {
	if m == nil {
		return
	}
	m.Emitted.WithLabelValues(string(category)).Inc()
}

func (m *Metrics) IncPersistFailures(category audit.EventCategory) {
	if m == nil {
		return
	}
	m.PersistFailures.WithLabelValues(string(category)).Inc()
}

func (m *Metrics) IncDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}
