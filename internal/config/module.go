package config

import (
	"github.com/weisyn/bargain/internal/config/clock"
	"github.com/weisyn/bargain/internal/config/exchange"
	"github.com/weisyn/bargain/internal/config/log"
	"github.com/weisyn/bargain/internal/config/negotiation"
	"github.com/weisyn/bargain/internal/config/store"
	"github.com/weisyn/bargain/internal/config/wallet"
	"github.com/weisyn/bargain/pkg/interfaces/config"
	"github.com/weisyn/bargain/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	AppConfig *types.AppConfig `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			func(p config.Provider) *log.LogOptions { return p.GetLog() },
			func(p config.Provider) *clock.ClockOptions { return p.GetClock() },
			func(p config.Provider) *wallet.WalletOptions { return p.GetWallet() },
			func(p config.Provider) *exchange.ExchangeOptions { return p.GetExchange() },
			func(p config.Provider) *negotiation.NegotiationOptions { return p.GetNegotiation() },
			func(p config.Provider) *store.StoreOptions { return p.GetStore() },
		),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	return ConfigOutput{Provider: NewProvider(params.AppConfig)}, nil
}
