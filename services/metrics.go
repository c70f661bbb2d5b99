package services

import "github.com/prometheus/client_golang/prometheus"

var (
	selectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rekindle_selections_total",
			Help: "Daily action selections, labeled by how the row came to exist",
		},
		[]string{"outcome"}, // "created", "existing", "fallback", "exhausted"
	)
	decayReversalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rekindle_decay_reversals_total",
			Help: "Decay entries deleted by late completions",
		},
	)
	badgesAwardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rekindle_badges_awarded_total",
			Help: "Badges awarded across all users",
		},
	)
	batchUserErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rekindle_batch_user_errors_total",
			Help: "Per-user failures during the nightly assignment batch",
		},
	)
)

// CountBatchUserError is the scheduler's hook into the batch failure
// counter.
func CountBatchUserError() {
	batchUserErrorsTotal.Inc()
}

// InitMetrics registers the engine counters. Call once from main.go,
// next to the HTTP middleware metrics.
func InitMetrics() {
	prometheus.MustRegister(selectionsTotal)
	prometheus.MustRegister(decayReversalsTotal)
	prometheus.MustRegister(badgesAwardedTotal)
	prometheus.MustRegister(batchUserErrorsTotal)
}
