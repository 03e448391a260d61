// Package log 提供了基于zap的日志实现
// 支持控制台输出、结构化字段以及基于 lumberjack 的日志文件轮转
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	logconfig "github.com/weisyn/bargain/internal/config/log"
	logInterface "github.com/weisyn/bargain/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bargain/pkg/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志级别定义
const (
	DebugLevel = string(logInterface.DebugLevel)
	InfoLevel  = string(logInterface.InfoLevel)
	WarnLevel  = string(logInterface.WarnLevel)
	ErrorLevel = string(logInterface.ErrorLevel)
	FatalLevel = string(logInterface.FatalLevel)
)

var (
	// 全局日志实例
	globalLogger logInterface.Logger
	mu           sync.RWMutex
)

// Logger 是日志记录器的结构体，实现了log.Logger接口
type Logger struct {
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
}

func init() {
	ResetDefault()
}

// ResetDefault 重置全局日志记录器为默认配置
func ResetDefault() {
	logger, err := New(logconfig.New(nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize default logger: %v\n", err)
		return
	}
	SetLogger(logger)
}

// createFileWriter 创建带轮转的日志文件写入器
func createFileWriter(logPath string, config *logconfig.Config) zapcore.WriteSyncer {
	logDir := filepath.Dir(logPath)
	if err := utils.EnsureDir(logDir); err != nil {
		// 目录不可用时退回 stderr
		fmt.Fprintf(os.Stderr, "创建日志目录失败 %s: %v\n", logDir, err)
		return zapcore.AddSync(os.Stderr)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    config.GetMaxSize(), // megabytes
		MaxBackups: config.GetMaxBackups(),
		MaxAge:     config.GetMaxAge(), // days
		Compress:   config.IsCompressionEnabled(),
	})
}

// New 根据配置创建新的日志记录器
func New(config *logconfig.Config) (logInterface.Logger, error) {
	if config == nil {
		config = logconfig.New(nil)
	}
	level := zap.NewAtomicLevelAt(config.GetZapLevel())

	var cores []zapcore.Core

	outputPath := config.GetFilePath()
	if config.IsConsoleEnabled() || outputPath == "stdout" || outputPath == "stderr" {
		output := zapcore.AddSync(os.Stdout)
		if outputPath == "stderr" {
			output = zapcore.AddSync(os.Stderr)
		}
		cores = append(cores, zapcore.NewCore(config.CreateConsoleEncoder(), output, level))
	}

	if outputPath != "" && outputPath != "stdout" && outputPath != "stderr" {
		absPath, err := filepath.Abs(utils.ExpandPath(outputPath))
		if err != nil {
			return nil, fmt.Errorf("获取日志文件绝对路径失败: %w", err)
		}
		cores = append(cores, zapcore.NewCore(config.CreateFileEncoder(), createFileWriter(absPath, config), level))
	}

	if len(cores) == 0 {
		return NewNop(), nil
	}

	var zapOptions []zap.Option
	if config.IsCallerEnabled() {
		// 跳过一层封装，使调用位置指向业务代码
		zapOptions = append(zapOptions, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if config.IsStacktraceEnabled() {
		zapOptions = append(zapOptions, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return FromZap(zap.New(zapcore.NewTee(cores...), zapOptions...)), nil
}

// FromZap 使用已有的 zap.Logger 构造 Logger
func FromZap(zapLogger *zap.Logger) logInterface.Logger {
	return &Logger{zapLogger: zapLogger, sugar: zapLogger.Sugar()}
}

// NewNop 返回丢弃全部输出的日志记录器
func NewNop() logInterface.Logger {
	return FromZap(zap.NewNop())
}

// GetZapLogger 获取底层的zap日志记录器
func (l *Logger) GetZapLogger() *zap.Logger {
	return l.zapLogger
}

// SetLogger 设置全局日志记录器
func SetLogger(logger logInterface.Logger) {
	if logger == nil {
		return
	}
	mu.Lock()
	globalLogger = logger
	mu.Unlock()
}

// GetLogger 获取全局日志记录器
func GetLogger() logInterface.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

func (l *Logger) Debug(msg string) { l.sugar.Debug(msg) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

func (l *Logger) Info(msg string) { l.sugar.Info(msg) }

func (l *Logger) Infof(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

func (l *Logger) Warn(msg string) { l.sugar.Warn(msg) }

func (l *Logger) Warnf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

func (l *Logger) Error(msg string) { l.sugar.Error(msg) }

func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

func (l *Logger) Fatal(msg string) { l.sugar.Fatal(msg) }

func (l *Logger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// With 返回附加了字段的新 Logger
func (l *Logger) With(args ...interface{}) logInterface.Logger {
	sugar := l.sugar.With(args...)
	return &Logger{zapLogger: sugar.Desugar(), sugar: sugar}
}

// Sync 同步缓冲区
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// Info 使用全局日志记录器记录信息级别日志
func Info(msg string) {
	if logger := GetLogger(); logger != nil {
		logger.Info(msg)
	}
}

// Warnf 使用全局日志记录器记录警告日志
func Warnf(format string, args ...interface{}) {
	if logger := GetLogger(); logger != nil {
		logger.Warnf(format, args...)
	}
}

// With 基于全局日志记录器附加字段
func With(args ...interface{}) logInterface.Logger {
	if logger := GetLogger(); logger != nil {
		return logger.With(args...)
	}
	return NewNop()
}
