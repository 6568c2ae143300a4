package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the confidence engine.
type Metrics struct {
	// Distribution of composite scores
	Score prometheus.Histogram

	// Results by recommendation band and outcome
	Results *prometheus.CounterVec

	// Reference lookup latency by matcher stage
	LookupLatency *prometheus.HistogramVec

	// Scoring runs downgraded because the reference list was unavailable
	Failures prometheus.Counter
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the engine metrics with reg. Tests pass a fresh registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Score: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mindcare_matching_score",
			Help:    "Composite confidence score per scored application",
			Buckets: []float64{0, 0.25, 0.4, 0.5, 0.6, 0.7, 0.75, 0.85, 0.9, 1},
		}),

		Results: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcare_matching_results_total",
			Help: "Total confidence results by band and outcome",
		}, []string{"band", "outcome"}),

		LookupLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mindcare_matching_lookup_duration_seconds",
			Help:    "Duration of reference lookups by matcher stage",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"stage"}),

		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "mindcare_matching_failures_total",
			Help: "Total scoring runs downgraded to processing_failed",
		}),
	}
}

// ObserveResult records a finished result.
func (m *Metrics) ObserveResult(band, outcome string, score float64) {
	if m != nil {
		m.Results.WithLabelValues(band, outcome).Inc()
		m.Score.Observe(score)
	}
}

// ObserveLookup records the duration of one matcher stage.
func (m *Metrics) ObserveLookup(stage string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncFailure counts a downgraded scoring run.
func (m *Metrics) IncFailure() {
	if m != nil {
		m.Failures.Inc()
	}
}
