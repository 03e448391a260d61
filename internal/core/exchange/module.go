package exchange

import (
	"go.uber.org/fx"

	exchangeconfig "github.com/weisyn/bargain/internal/config/exchange"
	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// ModuleInput 交换驱动依赖
type ModuleInput struct {
	fx.In

	Options *exchangeconfig.ExchangeOptions
	Codec   message.Codec
	Logger  log.Logger `optional:"true"`
}

// Module 返回交换驱动模块
func Module() fx.Option {
	return fx.Module("exchange",
		fx.Provide(func(in ModuleInput) *Driver {
			var logger log.Logger
			if in.Logger != nil {
				logger = in.Logger.With("module", "exchange")
			}
			return New(in.Options, in.Codec, logger)
		}),
	)
}
