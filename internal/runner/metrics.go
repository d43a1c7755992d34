package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the runner's Prometheus collectors.
type Metrics struct {
	Trials          *prometheus.CounterVec
	BackendFailures *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec
}

// NewMetrics registers the runner collectors with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Trials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebench_trials_total",
			Help: "Trials completed, by technique and outcome",
		}, []string{"technique", "outcome"}),
		BackendFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebench_backend_failures_total",
			Help: "Backend queries that failed after all retries",
		}, []string{"technique"}),
		BackendLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gradebench_backend_latency_seconds",
			Help:    "Latency of successful backend queries",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"technique"}),
	}
}

// Trial outcomes used as the outcome label.
const (
	OutcomeCorrect   = "correct"
	OutcomeIncorrect = "incorrect"
	OutcomeFailed    = "failed"
)

func (m *Metrics) observe(technique string, succeeded, correct bool, latencyMs int64) {
	if m == nil {
		return
	}
	switch {
	case !succeeded:
		m.Trials.WithLabelValues(technique, OutcomeFailed).Inc()
		m.BackendFailures.WithLabelValues(technique).Inc()
		return
	case correct:
		m.Trials.WithLabelValues(technique, OutcomeCorrect).Inc()
	default:
		m.Trials.WithLabelValues(technique, OutcomeIncorrect).Inc()
	}
	m.BackendLatency.WithLabelValues(technique).Observe(float64(latencyMs) / 1000)
}
