package payer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 每轮 process-send-ingest 的结果，按动作
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bargain",
		Subsystem: "payer",
		Name:      "cycles_total",
		Help:      "Total number of negotiation cycles by action and result",
	}, []string{"action", "result"})

	// 按终态统计结束的议价
	finishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bargain",
		Subsystem: "payer",
		Name:      "negotiations_finished_total",
		Help:      "Total number of negotiations that reached a terminal status",
	}, []string{"status"})
)

const (
	actionStart   = "start"
	actionAdvance = "advance"
	actionRetry   = "retry"

	resultOK       = "ok"
	resultRejected = "rejected"
	resultFailed   = "failed"
)
