package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Transition("accept", OutcomeApplied)
	m.Transition("accept", OutcomeConflict)
	m.Transition("accept", OutcomeConflict)
	m.MoneyDonation(OutcomeOrphaned)
	m.ObserveRequest("PUT", "/api/donations/food/:id/accept", "200", 0.01)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("accept", OutcomeApplied)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("accept", OutcomeConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.moneyDonations.WithLabelValues(OutcomeOrphaned)))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 3)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Transition("accept", OutcomeApplied)
		m.MoneyDonation(OutcomeRecorded)
		m.ObserveRequest("GET", "/health", "200", 0)
	})
}
