package payer

import (
	"go.uber.org/fx"

	"github.com/weisyn/bargain/internal/core/engine"
	"github.com/weisyn/bargain/internal/core/exchange"
	"github.com/weisyn/bargain/internal/core/sessionstore"
	"github.com/weisyn/bargain/internal/core/wallet"
	"github.com/weisyn/bargain/internal/core/wallet/utxo"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// ModuleInput 付款方服务依赖
type ModuleInput struct {
	fx.In

	Engine   *engine.Engine
	Driver   *exchange.Driver
	Store    sessionstore.Store
	Locker   sessionstore.Locker
	Sweeper  *sessionstore.Sweeper
	KeyStore *wallet.KeyStore
	Source   utxo.Source
	Clock    clock.Clock
	Bus      event.EventBus `optional:"true"`
	Logger   log.Logger     `optional:"true"`
}

// Module 返回付款方服务模块
func Module() fx.Option {
	return fx.Module("payer",
		fx.Provide(func(in ModuleInput) (*Service, error) {
			var logger log.Logger
			if in.Logger != nil {
				logger = in.Logger.With("module", "payer")
			}
			return New(Deps{
				Processor: in.Engine,
				Exchanger: in.Driver,
				Store:     in.Store,
				Locker:    in.Locker,
				Sweeper:   in.Sweeper,
				Keys:      in.KeyStore,
				Source:    in.Source,
				Clock:     in.Clock,
				Bus:       in.Bus,
				Logger:    logger,
			})
		}),
	)
}
