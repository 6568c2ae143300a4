package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the reference list cache and imports.
type Metrics struct {
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Rows added or skipped by CSV imports
	ImportedRows *prometheus.CounterVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "mindcare_reference_cache_hits_total",
			Help: "Reference lookups served from Redis",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "mindcare_reference_cache_misses_total",
			Help: "Reference lookups that fell through to the store",
		}),
		ImportedRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mindcare_reference_import_rows_total",
			Help: "CSV import rows by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) IncCacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

// ObserveImport records the added and skipped rows of one import.
func (m *Metrics) ObserveImport(added, skipped int) {
	if m != nil {
		m.ImportedRows.WithLabelValues("added").Add(float64(added))
		m.ImportedRows.WithLabelValues("skipped").Add(float64(skipped))
	}
}
