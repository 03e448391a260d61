// Package wallet 提供付款方钱包（密钥与 UTXO 来源）的配置
package wallet

import (
	"time"

	"github.com/weisyn/bargain/pkg/types"
)

// WalletOptions 钱包配置选项
type WalletOptions struct {
	Network        string `json:"network"`
	Passphrase     string `json:"-"`
	SignPassphrase string `json:"-"`
	Mnemonic       string `json:"-"`

	UTXOSource     string        `json:"utxo_source"` // esplora | static
	EsploraURL     string        `json:"esplora_url"`
	RequestTimeout time.Duration `json:"request_timeout"`
	CacheTTL       time.Duration `json:"cache_ttl"` // 0 关闭缓存
	CoinSelection  string        `json:"coin_selection"`

	Breaker BreakerOptions `json:"breaker"`
}

// BreakerOptions Esplora 访问熔断配置
type BreakerOptions struct {
	MaxRequests         uint32        `json:"max_requests"`
	Interval            time.Duration `json:"interval"`
	Timeout             time.Duration `json:"timeout"`
	ConsecutiveFailures uint32        `json:"consecutive_failures"`
}

// Config 钱包配置实现
type Config struct {
	options *WalletOptions
}

// New 创建钱包配置
func New(userConfig *types.UserWalletConfig) *Config {
	opts := &WalletOptions{
		Network:        defaultNetwork,
		Passphrase:     defaultPassphrase,
		SignPassphrase: defaultSignPassphrase,
		UTXOSource:     defaultUTXOSource,
		EsploraURL:     defaultEsploraURL,
		RequestTimeout: defaultRequestTimeout,
		CacheTTL:       defaultCacheTTL,
		CoinSelection:  defaultCoinSelection,
		Breaker: BreakerOptions{
			MaxRequests:         defaultBreakerMaxRequests,
			Interval:            defaultBreakerInterval,
			Timeout:             defaultBreakerTimeout,
			ConsecutiveFailures: defaultBreakerConsecutiveFailures,
		},
	}
	if userConfig != nil {
		applyUserWalletConfig(opts, userConfig)
	}
	return &Config{options: opts}
}

func applyUserWalletConfig(opts *WalletOptions, u *types.UserWalletConfig) {
	if u.Network != nil {
		opts.Network = *u.Network
	}
	if u.Passphrase != nil {
		opts.Passphrase = *u.Passphrase
	}
	if u.SignPassphrase != nil {
		opts.SignPassphrase = *u.SignPassphrase
	}
	if u.Mnemonic != nil {
		opts.Mnemonic = *u.Mnemonic
	}
	if u.UTXOSource != nil {
		opts.UTXOSource = *u.UTXOSource
	}
	if u.EsploraURL != nil {
		opts.EsploraURL = *u.EsploraURL
	}
	if u.CoinSelection != nil {
		opts.CoinSelection = *u.CoinSelection
	}
	if u.RequestTimeoutSec != nil && *u.RequestTimeoutSec > 0 {
		opts.RequestTimeout = time.Duration(*u.RequestTimeoutSec) * time.Second
	}
	if u.CacheTTLSec != nil && *u.CacheTTLSec >= 0 {
		opts.CacheTTL = time.Duration(*u.CacheTTLSec) * time.Second
	}
}

func (c *Config) GetOptions() *WalletOptions { return c.options }
