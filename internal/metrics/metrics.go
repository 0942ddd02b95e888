package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "distctl_runs_total",
			Help: "Total number of pipeline runs started",
		},
	)

	RunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distctl_runs_failed_total",
			Help: "Total number of pipeline runs failed, by stage",
		},
		[]string{"stage"},
	)

	DistBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "distctl_distribution_build_duration_seconds",
			Help:    "Per-distribution bundle build duration in seconds",
			Buckets: []float64{0.1, 0.2, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"distribution"},
	)

	LastVerifyMissing = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "distctl_last_verify_missing_files",
			Help: "Number of expected files missing in the most recent verification",
		},
	)

	LastVerifyExpected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "distctl_last_verify_expected_files",
			Help: "Number of expected files checked in the most recent verification",
		},
	)
)
