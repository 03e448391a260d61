package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/weisyn/bargain/internal/app"
	"github.com/weisyn/bargain/internal/core/payer"
	"github.com/weisyn/bargain/pkg/utils"
)

var (
	offerFees  string
	offerMemo  string
	cancelMemo string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "发起新的议价",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a app.App) error {
			report, err := a.Service().Start(ctx)
			return printReport(report, err)
		})
	},
}

var offerCmd = &cobra.Command{
	Use:   "offer <negotiation-id> <amount-btc>",
	Short: "出价，附带已签名的支付交易",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := utils.ParseBTC(args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a app.App) error {
			fees := a.Config().GetNegotiation().DefaultFees
			if offerFees != "" {
				if fees, err = utils.ParseBTC(offerFees); err != nil {
					return err
				}
			}
			report, err := a.Service().Advance(ctx, args[0], offerMemo, amount, fees)
			return printReport(report, err)
		})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <negotiation-id>",
	Short: "取消议价",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a app.App) error {
			report, err := a.Service().Cancel(ctx, args[0], cancelMemo)
			return printReport(report, err)
		})
	},
}

var retryCmd = &cobra.Command{
	Use:   "retry <negotiation-id>",
	Short: "重新发送未获应答的最后一条消息",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a app.App) error {
			report, err := a.Service().Retry(ctx, args[0])
			return printReport(report, err)
		})
	},
}

func init() {
	offerCmd.Flags().StringVar(&offerFees, "fees", "", "矿工费 (BTC)，默认取配置 negotiation.default_fees")
	offerCmd.Flags().StringVarP(&offerMemo, "memo", "m", "", "附言")
	cancelCmd.Flags().StringVarP(&cancelMemo, "memo", "m", "", "附言")
}

// printReport 输出报告；报告中的错误优先于 err 展示
func printReport(report *payer.Report, err error) error {
	if report != nil {
		if perr := renderReport(report); perr != nil {
			return perr
		}
	}
	return err
}
