// Package clock provides default configuration values for clock service.
package clock

import "time"

// 时钟服务配置默认值
const (
	defaultType      = "system"
	defaultNTPServer = "time.google.com"
)

var (
	defaultSyncInterval    = 5 * time.Minute
	defaultOffsetThreshold = 500 * time.Millisecond
	defaultBackoffInitial  = 5 * time.Second
	defaultBackoffMax      = 5 * time.Minute
)
