package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the loan ledger.
type Metrics struct {
	TransitionsApplied  *prometheus.CounterVec
	TransitionsRejected *prometheus.CounterVec
	TransitionDuration  *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TransitionsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transitions_applied_total",
			Help: "Accepted loan state transitions by operation.",
		}, []string{"operation"}),
		TransitionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transitions_rejected_total",
			Help: "Rejected loan state transitions by operation and error kind.",
		}, []string{"operation", "kind"}),
		TransitionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_transition_duration_seconds",
			Help:    "End-to-end duration of one ledger transition, commit included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}
