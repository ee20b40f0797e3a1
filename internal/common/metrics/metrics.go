// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	AssessmentsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "readiness_assessments_completed_total",
			Help: "Assessments that reached the completed state",
		},
	)

	ReadinessTiers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_tier_total",
			Help: "Readiness evaluations by resulting tier",
		},
		[]string{"tier"},
	)

	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "investor_match_score",
			Help:    "Distribution of computed investor match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	PrescreenCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "investor_prescreen_candidates_total",
			Help: "Investors considered by prescreening, by candidate source",
		},
		[]string{"source"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_cache_lookups_total",
			Help: "Redis cache lookups by key family and result",
		},
		[]string{"key", "result"},
	)
)
