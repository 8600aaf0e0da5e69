// Package metrics exposes Prometheus counters for the watch daemon.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qeforge_runs_total",
			Help: "Completed solver runs by verdict",
		},
		[]string{"verdict"},
	)

	timeoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qeforge_timeouts_total",
			Help: "Solver runs terminated by the wall-clock timeout",
		},
	)

	solverSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qeforge_solver_seconds",
			Help:    "Solver wall time per run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1s .. ~73h
		},
	)
)

// Register adds all collectors to the registry. Call once at daemon
// startup.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(runsTotal, timeoutsTotal, solverSeconds)
}

// RecordRun updates the counters for one completed run.
func RecordRun(verdict string, elapsed time.Duration, timedOut bool) {
	runsTotal.WithLabelValues(verdict).Inc()
	if timedOut {
		timeoutsTotal.Inc()
	}
	solverSeconds.Observe(elapsed.Seconds())
}
