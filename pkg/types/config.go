package types

// AppConfig 应用配置（对应 JSON 配置文件的顶层结构）
//
// 所有字段均为指针：nil 表示配置文件中未出现该字段，由各配置模块套用默认值。
type AppConfig struct {
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	Log         *UserLogConfig         `json:"log,omitempty"`
	Clock       *UserClockConfig       `json:"clock,omitempty"`
	Wallet      *UserWalletConfig      `json:"wallet,omitempty"`
	Exchange    *UserExchangeConfig    `json:"exchange,omitempty"`
	Negotiation *UserNegotiationConfig `json:"negotiation,omitempty"`
	Store       *UserStoreConfig       `json:"store,omitempty"`
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径
}

// UserClockConfig 用户时钟配置
type UserClockConfig struct {
	Type      *string `json:"type,omitempty"`       // system | ntp
	NTPServer *string `json:"ntp_server,omitempty"` // 例如 time.google.com
}

// UserWalletConfig 用户钱包配置
//
// Mnemonic 非空时优先使用 BIP-39 助记词派生密钥，否则使用口令派生。
type UserWalletConfig struct {
	Network        *string `json:"network,omitempty"`         // main | test | regtest
	Passphrase     *string `json:"passphrase,omitempty"`      // 支付密钥口令
	SignPassphrase *string `json:"sign_passphrase,omitempty"` // 消息签名密钥口令
	Mnemonic       *string `json:"mnemonic,omitempty"`        // BIP-39 助记词

	UTXOSource        *string `json:"utxo_source,omitempty"`         // esplora | static
	EsploraURL        *string `json:"esplora_url,omitempty"`         // Esplora API 根地址
	CoinSelection     *string `json:"coin_selection,omitempty"`      // in_order | first_fit | largest_first
	RequestTimeoutSec *int    `json:"request_timeout_sec,omitempty"` // UTXO 查询超时（秒）
	CacheTTLSec       *int    `json:"cache_ttl_sec,omitempty"`       // UTXO 缓存有效期（秒），0 关闭缓存
}

// UserExchangeConfig 用户消息交换配置
type UserExchangeConfig struct {
	InitialURI        *string `json:"initial_uri,omitempty"`         // 收款方公开的议价入口
	RequestTimeoutSec *int    `json:"request_timeout_sec,omitempty"` // 单次 POST 超时（秒）
	UserAgent         *string `json:"user_agent,omitempty"`
	AppendMalformed   *bool   `json:"append_malformed,omitempty"` // 格式校验失败的入站消息是否仍写入消息链
}

// UserNegotiationConfig 用户议价配置
type UserNegotiationConfig struct {
	RequestTTLSec *int    `json:"request_ttl_sec,omitempty"` // REQUEST 的有效期（秒）
	BargainURI    *string `json:"bargain_uri,omitempty"`     // 本方在 REQUEST 中声明的议价地址
	DefaultFees   *int64  `json:"default_fees,omitempty"`    // 默认矿工费（聪）
}

// UserStoreConfig 用户会话存储配置
type UserStoreConfig struct {
	Backend       *string `json:"backend,omitempty"`        // memory | badger | redis
	BadgerPath    *string `json:"badger_path,omitempty"`    // Badger 数据目录
	RedisAddr     *string `json:"redis_addr,omitempty"`     // host:port
	RedisPassword *string `json:"redis_password,omitempty"` // Redis 密码
	RedisDB       *int    `json:"redis_db,omitempty"`
	KeyPrefix     *string `json:"key_prefix,omitempty"`
	Lock          *string `json:"lock,omitempty"`            // local | redis
	LockPrefix    *string `json:"lock_prefix,omitempty"`     // 分布式锁键前缀
	GCGraceSec    *int64  `json:"gc_grace_sec,omitempty"`    // 过期后保留时长（秒）
	GCIntervalSec *int    `json:"gc_interval_sec,omitempty"` // 清理周期（秒），0 关闭后台清理
}
