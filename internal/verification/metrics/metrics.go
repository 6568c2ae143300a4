package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the verification workflow.
type Metrics struct {
	// Submissions by credential type
	Submissions *prometheus.CounterVec

	// Admin decisions by resulting status
	Decisions *prometheus.CounterVec

	// Applications rescored, by outcome
	Rescored *prometheus.CounterVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcare_verification_submissions_total",
			Help: "Professional verification applications submitted",
		}, []string{"type"}),
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcare_verification_decisions_total",
			Help: "Admin decisions taken on applications",
		}, []string{"status"}),
		Rescored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcare_verification_rescored_total",
			Help: "Applications rescored against the current reference list",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncSubmission(credentialType string) {
	if m != nil {
		m.Submissions.WithLabelValues(credentialType).Inc()
	}
}

func (m *Metrics) IncDecision(status string) {
	if m != nil {
		m.Decisions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncRescored(outcome string) {
	if m != nil {
		m.Rescored.WithLabelValues(outcome).Inc()
	}
}
