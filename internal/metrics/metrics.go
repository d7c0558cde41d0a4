// Package metrics provides Prometheus metrics for techfeed.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeEmpty      = "empty"
	OutcomeOffline    = "offline"
	OutcomeFetchError = "fetch_error"
	OutcomeParseError = "parse_error"
	OutcomeSuperseded = "superseded"
)

var (
	// LoadsTotal counts completed feed loads by outcome.
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "techfeed",
			Name:      "loads_total",
			Help:      "Total number of feed loads",
		},
		[]string{"outcome"},
	)

	// FetchDuration measures the network part of a load.
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "techfeed",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of feed fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// Articles tracks how many articles the current snapshot holds.
	Articles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "techfeed",
			Name:      "articles",
			Help:      "Number of articles in the current snapshot",
		},
	)
)

// RecordLoad records the outcome of one load.
func RecordLoad(outcome string) {
	LoadsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records how long a fetch took.
func ObserveFetch(d time.Duration) {
	FetchDuration.Observe(d.Seconds())
}

// SetArticles records the size of the current snapshot.
func SetArticles(n int) {
	Articles.Set(float64(n))
}
