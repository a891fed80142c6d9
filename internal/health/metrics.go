package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	probesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nodeup",
			Subsystem: "healthd",
			Name:      "probes_total",
			Help:      "Total number of workload probes by result",
		},
		[]string{"service", "result"},
	)

	probeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nodeup",
			Subsystem: "healthd",
			Name:      "probe_duration_seconds",
			Help:      "Duration of individual workload probes in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"service"},
	)

	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nodeup",
			Subsystem: "healthd",
			Name:      "queries_total",
			Help:      "Total number of status queries by aggregate result",
		},
		[]string{"status"},
	)
)
