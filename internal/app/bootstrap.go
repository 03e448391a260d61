package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/weisyn/bargain/internal/api"
	config "github.com/weisyn/bargain/internal/config"
	"github.com/weisyn/bargain/internal/core/engine"
	"github.com/weisyn/bargain/internal/core/exchange"
	"github.com/weisyn/bargain/internal/core/infrastructure/clock"
	"github.com/weisyn/bargain/internal/core/infrastructure/event"
	log "github.com/weisyn/bargain/internal/core/infrastructure/log"
	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/payer"
	"github.com/weisyn/bargain/internal/core/sessionstore"
	"github.com/weisyn/bargain/internal/core/txbuilder"
	"github.com/weisyn/bargain/internal/core/wallet"
	configiface "github.com/weisyn/bargain/pkg/interfaces/config"
	"github.com/weisyn/bargain/pkg/types"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts      *options
	appConfig *types.AppConfig
	fxApp     *fx.App
	service   *payer.Service
	provider  configiface.Provider
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options, appConfig *types.AppConfig) *Bootstrap {
	return &Bootstrap{opts: opts, appConfig: appConfig}
}

// SetupInfrastructureLayer 配置、日志、时钟与事件
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Supply(b.appConfig),
		config.Module(), // 1. 配置(不依赖其他)
		log.Module(),    // 2. 日志(依赖配置)
		clock.Module(),  // 3. 时钟(依赖配置)
		event.Module(),  // 4. 事件总线
	}
}

// SetupBusinessLayer 议价核心模块，按依赖顺序加载
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		message.Module(),      // 1. 消息编解码
		wallet.Module(),       // 2. 密钥与 UTXO 来源
		txbuilder.Module(),    // 3. 交易构建(依赖钱包)
		engine.Module(),       // 4. 决策引擎(依赖交易构建)
		exchange.Module(),     // 5. 消息交换
		sessionstore.Module(), // 6. 会话存储与锁
		payer.Module(),        // 7. 付款方服务(依赖以上全部)
	}
}

// SetupApplicationLayer 可选的对外服务
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	var modules []fx.Option
	if b.opts.statusAddr != "" {
		modules = append(modules, api.Module(b.opts.statusAddr))
	}
	if b.opts.backgroundGC {
		modules = append(modules, fx.Invoke(sessionstore.RunSweeper))
	}
	return modules
}

// CreateFxApp 组装全部模块
func (b *Bootstrap) CreateFxApp() error {
	var modules []fx.Option
	modules = append(modules, b.SetupInfrastructureLayer()...)
	modules = append(modules, b.SetupBusinessLayer()...)
	modules = append(modules, b.SetupApplicationLayer()...)

	b.fxApp = fx.New(
		fx.Options(modules...),
		fx.Populate(&b.service, &b.provider),
		// 禁用fx内部日志
		fx.NopLogger,
	)
	return b.fxApp.Err()
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}
