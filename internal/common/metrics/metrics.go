// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_scored_total",
			Help: "Total number of (candidate, job) pairs scored",
		},
		[]string{"mode"},
	)

	MatchesDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_degraded_total",
			Help: "Total number of results carrying a degradation flag",
		},
		[]string{"flag"},
	)

	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "scoring_duration_seconds",
			Help: "Duration of one full scoring pass in seconds",
		},
		[]string{"mode"},
	)

	TierDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tier_decisions_total",
			Help: "Threshold filter decisions by tier and verdict",
		},
		[]string{"tier", "decision"},
	)

	OutcomesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outcomes_recorded_total",
			Help: "Outcome records appended to the training log",
		},
		[]string{"outcome"},
	)

	TrainingCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_cycles_total",
			Help: "Training cycles by result (published, skipped, rejected, failed)",
		},
		[]string{"result"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)
)
