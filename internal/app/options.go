package app

import "github.com/weisyn/bargain/pkg/types"

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项
type options struct {
	// 配置文件路径
	configFilePath string

	// 用户配置，优先级高于 configFilePath
	appConfig *types.AppConfig

	// 状态服务监听地址，空表示不启动
	statusAddr string

	// 是否在后台周期清理过期议价
	backgroundGC bool
}

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithAppConfig 直接使用已解析的用户配置
func WithAppConfig(cfg *types.AppConfig) Option {
	return func(o *options) {
		o.appConfig = cfg
	}
}

// WithStatusServer 启动健康检查、指标与议价查询端点
func WithStatusServer(addr string) Option {
	return func(o *options) {
		o.statusAddr = addr
	}
}

// WithBackgroundGC 按 store.gc_interval 周期清理过期议价
func WithBackgroundGC() Option {
	return func(o *options) {
		o.backgroundGC = true
	}
}

// newOptions 创建选项
func newOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
