package txbuilder

import (
	"go.uber.org/fx"

	walletconfig "github.com/weisyn/bargain/internal/config/wallet"
	"github.com/weisyn/bargain/internal/core/wallet"
	"github.com/weisyn/bargain/internal/core/wallet/utxo"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// ModuleInput 交易构建模块依赖
type ModuleInput struct {
	fx.In

	Options  *walletconfig.WalletOptions
	KeyStore *wallet.KeyStore
	Source   utxo.Source
	Logger   log.Logger `optional:"true"`
}

// Module 返回交易构建模块
func Module() fx.Option {
	return fx.Module("txbuilder",
		fx.Provide(func(in ModuleInput) *Builder {
			var logger log.Logger
			if in.Logger != nil {
				logger = in.Logger.With("module", "txbuilder")
			}
			return NewBuilder(in.KeyStore, in.Source, SelectorByName(in.Options.CoinSelection), logger)
		}),
	)
}
