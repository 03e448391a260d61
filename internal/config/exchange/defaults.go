package exchange

import "time"

const (
	defaultInitialURI     = "http://localhost:8083/bargain"
	defaultRequestTimeout = 30 * time.Second
	defaultUserAgent      = "bargain-payer/1.0"

	// defaultAppendMalformed 格式校验失败的入站消息默认仍写入消息链，
	// 由下一轮决策对 KO 状态做出取消响应
	defaultAppendMalformed = true
)
