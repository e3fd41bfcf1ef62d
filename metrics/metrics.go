// Package metrics exposes prometheus instrumentation for the adjustment path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdjustmentRuns counts override generation outcomes by method:
	// generative, ratio, or skipped (dead band / nothing to adjust).
	AdjustmentRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fittrack",
		Subsystem: "feast",
		Name:      "adjustment_runs_total",
		Help:      "Override generation runs by resolution method.",
	}, []string{"method"})

	// GenerativeFailures counts primary-path failures that degraded to the
	// ratio fallback, by reason.
	GenerativeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fittrack",
		Subsystem: "feast",
		Name:      "generative_failures_total",
		Help:      "Generative adjustment failures by reason (error, contract).",
	}, []string{"reason"})

	// GenerativeLatency observes wall time of the generative adjustment call.
	GenerativeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fittrack",
		Subsystem: "feast",
		Name:      "generative_latency_seconds",
		Help:      "Latency of generative adjustment calls.",
		Buckets:   prometheus.DefBuckets,
	})

	// SweeperCompleted counts campaigns closed by the expiry sweeper.
	SweeperCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fittrack",
		Subsystem: "feast",
		Name:      "sweeper_completed_total",
		Help:      "Banking configs marked COMPLETED by the expiry sweeper.",
	})
)
