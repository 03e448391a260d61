package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/bargain/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "常驻运行：周期清理过期议价，并在 --metrics-addr 上提供状态端点",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		a, err := startApp(app.WithBackgroundGC())
		if err != nil {
			return err
		}
		pterm.Info.Printfln("payer %s running, press Ctrl+C to stop", a.Service().Address())
		a.Wait()
		return nil
	},
}
