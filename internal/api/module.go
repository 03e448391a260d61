package api

import (
	"context"

	"go.uber.org/fx"

	"github.com/weisyn/bargain/internal/api/http"
	"github.com/weisyn/bargain/internal/core/payer"
	"github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
)

// ModuleInput 状态服务依赖
type ModuleInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Service   *payer.Service
	Logger    log.Logger `optional:"true"`
}

// Module 返回状态服务模块，addr 为监听地址
func Module(addr string) fx.Option {
	return fx.Module("api",
		fx.Invoke(func(in ModuleInput) {
			var logger log.Logger
			if in.Logger != nil {
				logger = in.Logger.With("module", "api")
			}
			server := http.NewServer(addr, in.Service, logger)
			in.Lifecycle.Append(fx.Hook{
				OnStart: func(context.Context) error { return server.Start() },
				OnStop:  server.Stop,
			})
		}),
	)
}
