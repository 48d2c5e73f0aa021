package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. Register them once per registry.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	moneyDonations  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "food_donation_transitions_total",
			Help: "Food donation transition attempts by event and outcome.",
		}, []string{"event", "outcome"}),
		moneyDonations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "money_donations_total",
			Help: "Money donation recording attempts by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.requestDuration, m.transitions, m.moneyDonations)
	}
	return m
}

// ObserveRequest records one HTTP request. Nil receivers are no-ops.
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// Transition outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeForbidden = "forbidden"
	OutcomeConflict  = "conflict"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
)

func (m *Metrics) Transition(event, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(event, outcome).Inc()
}

// Money donation outcomes.
const (
	OutcomeRecorded  = "recorded"
	OutcomeRejected  = "rejected"
	OutcomeDuplicate = "duplicate"
	OutcomeOrphaned  = "orphaned"
)

func (m *Metrics) MoneyDonation(outcome string) {
	if m == nil {
		return
	}
	m.moneyDonations.WithLabelValues(outcome).Inc()
}
