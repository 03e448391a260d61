package sessionstore

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"

	storeconfig "github.com/weisyn/bargain/internal/config/store"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// ModuleInput 会话存储模块依赖
type ModuleInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Options   *storeconfig.StoreOptions
	Clock     clock.Clock
	Bus       event.EventBus `optional:"true"`
	Logger    log.Logger     `optional:"true"`
}

// ModuleOutput 会话存储模块导出
type ModuleOutput struct {
	fx.Out

	Store   Store
	Locker  Locker
	Sweeper *Sweeper
}

// Module 返回会话存储模块
func Module() fx.Option {
	return fx.Module("sessionstore",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 打开存储，停止时关闭存储与锁
func ProvideServices(in ModuleInput) (ModuleOutput, error) {
	var logger log.Logger
	if in.Logger != nil {
		logger = in.Logger.With("module", "sessionstore")
	}
	store, locker, err := Open(in.Options, in.Clock, logger)
	if err != nil {
		return ModuleOutput{}, err
	}
	grace := time.Duration(in.Options.GCGrace) * time.Second
	sweeper := NewSweeper(store, locker, in.Clock, grace, in.Bus, logger)

	in.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			var errs []error
			if c, ok := locker.(interface{ Close() error }); ok {
				errs = append(errs, c.Close())
			}
			errs = append(errs, store.Close())
			return errors.Join(errs...)
		},
	})
	return ModuleOutput{Store: store, Locker: locker, Sweeper: sweeper}, nil
}

// RunSweeper 在应用运行期间按 GCInterval 周期清理
func RunSweeper(lc fx.Lifecycle, sweeper *Sweeper, opts *storeconfig.StoreOptions) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				sweeper.Run(ctx, opts.GCInterval)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
