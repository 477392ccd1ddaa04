package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of a request, used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics are the Prometheus collectors updated by a Handler.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     prometheus.Histogram
	score        prometheus.Histogram
	inconsistent *prometheus.CounterVec
}

// NewMetrics registers the worker collectors with r. A nil r gets a private
// registry, which is useful when metrics are not exported.
func NewMetrics(r prometheus.Registerer) *Metrics {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "entropy",
			Subsystem: "worker",
			Name:      "requests_total",
			Help:      "Analysis requests handled, by outcome.",
		}, []string{"outcome"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "entropy",
			Subsystem: "worker",
			Name:      "analysis_duration_seconds",
			Help:      "Time taken to sample and analyse a source.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		score: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "entropy",
			Subsystem: "worker",
			Name:      "overall_score",
			Help:      "Distribution of overall quality scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		inconsistent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "entropy",
			Subsystem: "worker",
			Name:      "inconsistent_total",
			Help:      "Analyses whose test battery rejected randomness, by source.",
		}, []string{"source"}),
	}
}
