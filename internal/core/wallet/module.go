package wallet

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	walletconfig "github.com/weisyn/bargain/internal/config/wallet"
	"github.com/weisyn/bargain/internal/core/wallet/utxo"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// 支持的 UTXO 来源
const (
	SourceEsplora = "esplora"
	SourceStatic  = "static"
)

// ModuleInput 钱包模块依赖
type ModuleInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Options   *walletconfig.WalletOptions
	Logger    log.Logger `optional:"true"`
}

// ModuleOutput 钱包模块导出
type ModuleOutput struct {
	fx.Out

	KeyStore *KeyStore
	Source   utxo.Source
}

// Module 返回钱包模块
func Module() fx.Option {
	return fx.Module("wallet",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建密钥与 UTXO 来源；CacheTTL 大于 0 时套上缓存
func ProvideServices(in ModuleInput) (ModuleOutput, error) {
	keys, err := New(in.Options)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("create key store: %w", err)
	}

	var logger log.Logger
	if in.Logger != nil {
		logger = in.Logger.With("module", "wallet")
	}

	var source utxo.Source
	switch in.Options.UTXOSource {
	case SourceStatic:
		source = utxo.NewStaticSource(keys.Network())
	case SourceEsplora, "":
		source = utxo.NewEsploraSource(keys.Network(), keys.Params(), in.Options, logger)
	default:
		return ModuleOutput{}, fmt.Errorf("unknown utxo source %q", in.Options.UTXOSource)
	}

	if in.Options.CacheTTL > 0 {
		cached, err := utxo.NewCachedSource(context.Background(), source, in.Options.CacheTTL)
		if err != nil {
			return ModuleOutput{}, fmt.Errorf("create utxo cache: %w", err)
		}
		in.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error { return cached.Close() },
		})
		source = cached
	}

	if logger != nil {
		logger.Infof("payer address %s on %s (utxo source: %s)", keys.AddressString(), keys.Network(), in.Options.UTXOSource)
	}
	return ModuleOutput{KeyStore: keys, Source: source}, nil
}
