package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/bargain/internal/app"
	"github.com/weisyn/bargain/internal/app/version"
	"github.com/weisyn/bargain/pkg/types"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath   string // 配置文件路径
	LogLevel     string // 覆盖配置中的日志级别
	MetricsAddr  string // 状态与指标端点监听地址
	OutputFormat string // table | json
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "bargain",
	Short: "比特币支付议价客户端（付款方）",
	Long: `bargain - 与收款方议价比特币支付金额的付款方客户端

典型流程:
  bargain start                     # 发送 REQUEST，收款方给出报价
  bargain offer <id> 0.0045         # 出价，附带已签名的支付交易
  bargain cancel <id>               # 放弃议价
  bargain show <id>                 # 查看消息链

金额单位为 BTC，最多 8 位小数。`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version.GetVersion(),
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "配置文件路径 (也可通过 "+app.ConfigPathEnv+" 指定)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "日志级别: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&globalFlags.MetricsAddr, "metrics-addr", "", "启动健康检查与 Prometheus 指标端点，例如 :9102")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", "table", "输出格式: table|json")

	rootCmd.AddCommand(startCmd, offerCmd, cancelCmd, retryCmd)
	rootCmd.AddCommand(showCmd, listCmd, gcCmd, balanceCmd, addressCmd)
	rootCmd.AddCommand(serveCmd, versionCmd)
}

// loadConfig 读取配置并应用命令行覆盖
func loadConfig() (*types.AppConfig, error) {
	cfg, err := app.LoadConfig(globalFlags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if globalFlags.LogLevel != "" {
		if cfg.Log == nil {
			cfg.Log = &types.UserLogConfig{}
		}
		level := globalFlags.LogLevel
		cfg.Log.Level = &level
	}
	return cfg, nil
}

// startApp 启动应用；--metrics-addr 非空时同时启动状态端点
func startApp(extra ...app.Option) (app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	opts := []app.Option{app.WithAppConfig(cfg)}
	if globalFlags.MetricsAddr != "" {
		opts = append(opts, app.WithStatusServer(globalFlags.MetricsAddr))
	}
	return app.Start(append(opts, extra...)...)
}

// withApp 为一次性命令启动应用，结束后停止
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a app.App) error) error {
	a, err := startApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "停止应用时出错: %v\n", err)
		}
	}()
	return fn(cmd.Context(), a)
}
