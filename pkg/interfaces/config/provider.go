// Package config provides configuration provider interfaces.
package config

import (
	clockconfig "github.com/weisyn/bargain/internal/config/clock"
	exchangeconfig "github.com/weisyn/bargain/internal/config/exchange"
	logconfig "github.com/weisyn/bargain/internal/config/log"
	negotiationconfig "github.com/weisyn/bargain/internal/config/negotiation"
	storeconfig "github.com/weisyn/bargain/internal/config/store"
	walletconfig "github.com/weisyn/bargain/internal/config/wallet"
	"github.com/weisyn/bargain/pkg/types"
)

// AppOptions 应用配置选项接口
type AppOptions interface {
	// GetAppConfig 获取应用配置
	GetAppConfig() *types.AppConfig
}

// Provider 配置提供者接口
type Provider interface {
	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions
	// GetClock 获取时钟配置
	GetClock() *clockconfig.ClockOptions
	// GetWallet 获取钱包配置
	GetWallet() *walletconfig.WalletOptions
	// GetExchange 获取消息交换配置
	GetExchange() *exchangeconfig.ExchangeOptions
	// GetNegotiation 获取议价决策配置
	GetNegotiation() *negotiationconfig.NegotiationOptions
	// GetStore 获取会话存储配置
	GetStore() *storeconfig.StoreOptions

	// GetAppConfig 获取原始用户配置
	GetAppConfig() *types.AppConfig
}
