package negotiation

import "time"

const (
	// defaultRequestTTL REQUEST 消息的有效期
	defaultRequestTTL = 1800 * time.Second

	defaultBargainURI = ""

	// defaultFees 默认矿工费（聪）
	defaultFees int64 = 10000
)
