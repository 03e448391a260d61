package exchange

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 发送的消息数，按消息类型与结果
	exchangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bargain",
		Subsystem: "exchange",
		Name:      "messages_sent_total",
		Help:      "Total number of bargaining messages posted to the payee",
	}, []string{"type", "result"})

	// 收到的应答数，按消息类型与校验状态
	receivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bargain",
		Subsystem: "exchange",
		Name:      "messages_received_total",
		Help:      "Total number of bargaining messages received from the payee",
	}, []string{"type", "status"})

	// 单次 HTTP 往返耗时
	roundTripSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bargain",
		Subsystem: "exchange",
		Name:      "round_trip_seconds",
		Help:      "Duration of bargaining message round trips in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"type"})
)

const (
	resultOK         = "ok"
	resultDuplicate  = "duplicate"
	resultRemote     = "remote_error"
	resultFormat     = "format_error"
	resultProcessing = "processing_error"
)
