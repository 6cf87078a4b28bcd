package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	namespace = "evedata"
	subsystem = "loader"

	cacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_requests_total",
			Help:      "Total number of dataset requests by cache result (hit, miss)",
		},
		[]string{"result"},
	)

	buildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "builds_total",
			Help:      "Total number of dataset builds by status (ok, error)",
		},
		[]string{"status"},
	)

	failedChainsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failed_chains_total",
			Help:      "Total number of chains left out of built datasets",
		},
	)

	buildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "build_duration_seconds",
			Help:      "Duration of dataset builds in seconds",
		},
	)
)
