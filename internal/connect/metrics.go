package connect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Attempt outcomes, used as the outcome label.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeTimeout   = "timeout"
	OutcomeCancelled = "cancelled"
)

// Metrics holds the connector's Prometheus collectors.
type Metrics struct {
	Attempts *prometheus.CounterVec
	Duration prometheus.Histogram
	Disposed prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fdbsql_connect_attempts_total",
				Help: "Total number of connection attempts by outcome",
			},
			[]string{"outcome"},
		),
		Duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fdbsql_connect_duration_seconds",
				Help:    "Time the caller waited for a connection attempt",
				Buckets: prometheus.DefBuckets,
			},
		),
		Disposed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fdbsql_abandoned_connections_disposed_total",
				Help: "Connections closed because their attempt was abandoned before they were established",
			},
		),
	}
}
