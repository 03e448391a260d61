package sessionstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 清理运行次数
	sweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bargain",
		Subsystem: "session_gc",
		Name:      "runs_total",
		Help:      "Total number of expired negotiation sweeps",
	})

	// 被清理的议价总数
	evictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bargain",
		Subsystem: "session_gc",
		Name:      "evicted_total",
		Help:      "Total number of negotiations evicted after expiry",
	})

	// 单次清理耗时
	sweepDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bargain",
		Subsystem: "session_gc",
		Name:      "duration_seconds",
		Help:      "Duration of expired negotiation sweeps in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)
