// Package clock 提供系统时钟、NTP 校正时钟与测试用时钟
package clock

import (
	clockconfig "github.com/weisyn/bargain/internal/config/clock"
	infraClock "github.com/weisyn/bargain/pkg/interfaces/infrastructure/clock"
	"go.uber.org/fx"
)

// New 根据配置选择时钟实现，未知类型回退为系统时钟
func New(opts *clockconfig.ClockOptions) infraClock.Clock {
	if opts != nil && opts.Type == "ntp" {
		return NewNTPClock(opts.NTPServer, opts.SyncInterval, opts.BackoffInitial, opts.BackoffMax, opts.OffsetThreshold)
	}
	return NewSystemClock()
}

// Module 返回时钟模块
func Module() fx.Option {
	return fx.Module("clock",
		fx.Provide(New),
	)
}
