package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Engine collectors. HTTP collectors live in the middleware package.
var (
	importRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swim_import_runs_total",
			Help: "Import runs by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	performancesImported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swim_performances_imported_total",
			Help: "Performances newly stored by ingestion.",
		},
	)

	fetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swim_fetch_failures_total",
			Help: "Failed results page fetches by pool length.",
		},
		[]string{"pool_length"},
	)

	recomputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swim_recompute_duration_seconds",
			Help:    "Duration of personal best and club record recomputes.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(importRuns, performancesImported, fetchFailures, recomputeDuration)
}

// RunFinished counts a completed (or aborted) import run.
func RunFinished(mode, outcome string) {
	importRuns.WithLabelValues(mode, outcome).Inc()
}

// PerformancesImported adds n newly inserted performances.
func PerformancesImported(n int) {
	if n > 0 {
		performancesImported.Add(float64(n))
	}
}

// FetchFailed counts one failed page fetch.
func FetchFailed(pool int) {
	fetchFailures.WithLabelValues(strconv.Itoa(pool)).Inc()
}

// ObserveRecompute records how long a recompute took.
func ObserveRecompute(d time.Duration) {
	recomputeDuration.Observe(d.Seconds())
}
