// Package log 定义议价客户端的日志接口
//
// 📋 **职责**
// - 为所有模块提供统一的日志接口
// - 通过 With 附加结构化字段（例如 module、negotiation_id）
//
// 实现位于 internal/core/infrastructure/log，基于 zap。
package log

import "go.uber.org/zap"

// Logger 定义日志记录器接口
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	// Fatal 记录致命级别的日志，然后退出程序
	Fatal(msg string)
	Fatalf(format string, args ...interface{})

	// With 返回一个带有额外字段的Logger，参数为 key/value 交替
	With(args ...interface{}) Logger

	// Sync 同步日志缓冲区到输出
	Sync() error

	// GetZapLogger 获取原始的zap日志记录器
	GetZapLogger() *zap.Logger
}
