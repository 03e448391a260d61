// Package app 组装付款方各模块并管理其生命周期
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/weisyn/bargain/internal/config"
	"github.com/weisyn/bargain/internal/core/payer"
	configiface "github.com/weisyn/bargain/pkg/interfaces/config"
	"github.com/weisyn/bargain/pkg/types"
)

// ConfigPathEnv 覆盖配置文件路径的环境变量
const ConfigPathEnv = "BARGAIN_CONFIG_PATH"

// 启停超时
const (
	startTimeout = 30 * time.Second
	stopTimeout  = 30 * time.Second
)

// App 付款方应用的对外接口
type App interface {
	// Service 付款方议价服务
	Service() *payer.Service

	// Config 生效的配置
	Config() configiface.Provider

	// Stop 停止应用，关闭存储与后台任务
	Stop() error

	// Wait 阻塞直到收到退出信号，然后停止应用
	Wait()
}

type internalApp struct {
	bootstrap *Bootstrap
}

func (a *internalApp) Service() *payer.Service { return a.bootstrap.service }

func (a *internalApp) Config() configiface.Provider { return a.bootstrap.provider }

func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

func (a *internalApp) Wait() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
	signal.Stop(signals)

	if err := a.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "停止应用时出错: %v\n", err)
	}
}

// Start 加载配置、组装并启动应用
func Start(appOptions ...Option) (App, error) {
	opts := newOptions(appOptions...)

	appConfig, err := loadAppConfig(opts)
	if err != nil {
		return nil, err
	}

	bootstrap := NewBootstrap(opts, appConfig)
	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := bootstrap.StartApp(ctx); err != nil {
		return nil, err
	}
	return &internalApp{bootstrap: bootstrap}, nil
}

// loadAppConfig 显式配置 > 环境变量 > 配置文件路径 > 全部默认值
func loadAppConfig(opts *options) (*types.AppConfig, error) {
	if opts.appConfig != nil {
		return opts.appConfig, nil
	}
	return LoadConfig(opts.configFilePath)
}

// LoadConfig 读取配置文件；设置了 BARGAIN_CONFIG_PATH 时以其为准
func LoadConfig(path string) (*types.AppConfig, error) {
	if envPath := os.Getenv(ConfigPathEnv); envPath != "" {
		path = envPath
	}
	return config.LoadFile(path)
}
