package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := NewWith(prometheus.NewRegistry())

	m.IncSubmission("PSYCHIATRIST")
	m.IncSubmission("PSYCHIATRIST")
	m.IncDecision("APPROVED")
	m.IncRescored("scored")

	assert.InDelta(t, 2, testutil.ToFloat64(m.Submissions.WithLabelValues("PSYCHIATRIST")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Decisions.WithLabelValues("APPROVED")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Rescored.WithLabelValues("scored")), 0)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncSubmission("PSYCHOLOGIST")
		m.IncDecision("REJECTED")
		m.IncRescored("no_match")
	})
}
