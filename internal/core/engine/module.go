package engine

import (
	"go.uber.org/fx"

	negotiationconfig "github.com/weisyn/bargain/internal/config/negotiation"
	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/txbuilder"
	"github.com/weisyn/bargain/internal/core/wallet"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// ModuleInput 决策引擎依赖
type ModuleInput struct {
	fx.In

	Options  *negotiationconfig.NegotiationOptions
	KeyStore *wallet.KeyStore
	Codec    message.Codec
	Builder  *txbuilder.Builder
	Clock    clock.Clock
	Logger   log.Logger `optional:"true"`
}

// Module 返回决策引擎模块
func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(func(in ModuleInput) *Engine {
			var logger log.Logger
			if in.Logger != nil {
				logger = in.Logger.With("module", "engine")
			}
			return New(in.KeyStore, in.Codec, in.Builder, in.Clock, in.Options, logger)
		}),
	)
}
