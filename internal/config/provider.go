// Package config 提供应用配置管理功能
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/weisyn/bargain/internal/config/clock"
	"github.com/weisyn/bargain/internal/config/exchange"
	"github.com/weisyn/bargain/internal/config/log"
	"github.com/weisyn/bargain/internal/config/negotiation"
	"github.com/weisyn/bargain/internal/config/store"
	"github.com/weisyn/bargain/internal/config/wallet"
	"github.com/weisyn/bargain/pkg/interfaces/config"
	"github.com/weisyn/bargain/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者，appConfig 可以为 nil（全部使用默认值）
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{appConfig: appConfig}
}

// LoadFile 从 JSON 配置文件读取用户配置。path 为空时返回空配置
func LoadFile(path string) (*types.AppConfig, error) {
	cfg := &types.AppConfig{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败 %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败 %s: %w", path, err)
	}
	return cfg, nil
}

// GetAppConfig 获取原始用户配置
func (p *Provider) GetAppConfig() *types.AppConfig { return p.appConfig }

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return log.New(p.appConfig.Log).GetOptions()
}

// GetClock 获取时钟配置
func (p *Provider) GetClock() *clock.ClockOptions {
	return clock.New(p.appConfig.Clock).GetOptions()
}

// GetWallet 获取钱包配置
func (p *Provider) GetWallet() *wallet.WalletOptions {
	return wallet.New(p.appConfig.Wallet).GetOptions()
}

// GetExchange 获取消息交换配置
func (p *Provider) GetExchange() *exchange.ExchangeOptions {
	return exchange.New(p.appConfig.Exchange).GetOptions()
}

// GetNegotiation 获取议价决策配置
func (p *Provider) GetNegotiation() *negotiation.NegotiationOptions {
	return negotiation.New(p.appConfig.Negotiation).GetOptions()
}

// GetStore 获取会话存储配置，Badger 目录跟随 data_dir
func (p *Provider) GetStore() *store.StoreOptions {
	dataDir := ""
	if p.appConfig.DataDir != nil {
		dataDir = *p.appConfig.DataDir
	}
	return store.New(p.appConfig.Store, dataDir).GetOptions()
}
