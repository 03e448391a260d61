package wallet

import "time"

// 钱包配置默认值
const (
	// defaultNetwork 默认使用测试网
	defaultNetwork = "test"

	// 演示口令，生产环境必须通过配置覆盖
	defaultPassphrase     = "This is a private key"
	defaultSignPassphrase = "This is a private key used to sign messages sent by the buyer"

	defaultUTXOSource = "esplora"
	defaultEsploraURL = "https://blockstream.info/testnet/api"

	defaultRequestTimeout = 15 * time.Second
	defaultCacheTTL       = 30 * time.Second

	// defaultCoinSelection 按 UTXO 来源返回的顺序累加
	defaultCoinSelection = "in_order"

	// 熔断器配置
	defaultBreakerMaxRequests         = 1
	defaultBreakerInterval            = time.Minute
	defaultBreakerTimeout             = 30 * time.Second
	defaultBreakerConsecutiveFailures = 5
)
