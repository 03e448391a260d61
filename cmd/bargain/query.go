package main

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/bargain/internal/app"
	"github.com/weisyn/bargain/internal/app/version"
	"github.com/weisyn/bargain/pkg/utils"
)

var showCmd = &cobra.Command{
	Use:   "show <negotiation-id>",
	Short: "查看议价与消息链",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a app.App) error {
			n, err := a.Service().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return renderNegotiation(n)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "列出全部议价",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a app.App) error {
			list, err := a.Service().List(ctx)
			if err != nil {
				return err
			}
			return renderList(list)
		})
	},
}

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "清理付款方过期时间已超过宽限期的议价",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a app.App) error {
			evicted, err := a.Service().Sweep(ctx)
			if err != nil {
				return err
			}
			if globalFlags.OutputFormat == "json" {
				return printJSON(map[string]interface{}{"evicted": evicted})
			}
			pterm.Success.Printfln("evicted %d negotiations", len(evicted))
			for _, id := range evicted {
				pterm.Println("  " + id)
			}
			return nil
		})
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "查询付款地址余额",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a app.App) error {
			sats, err := a.Service().Balance(ctx)
			if err != nil {
				return err
			}
			if globalFlags.OutputFormat == "json" {
				return printJSON(map[string]interface{}{"address": a.Service().Address(), "satoshis": sats})
			}
			fmt.Printf("%s BTC (%d sat)\n", utils.FormatBTC(sats), sats)
			return nil
		})
	},
}

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "显示付款地址",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(_ context.Context, a app.App) error {
			fmt.Println(a.Service().Address())
			return nil
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		fmt.Println(version.GetFullVersion())
	},
}
