package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bizdash/internal/backend"
	"bizdash/internal/config"
	"bizdash/internal/core"
	applog "bizdash/internal/log"
	"bizdash/internal/services"
)

func newStatsCommand() *cobra.Command {
	var rangeFlag string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard counters and revenue buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := core.ParseGranularity(rangeFlag)
			if err != nil {
				return err
			}
			cfg, _, err := setup(applog.ComponentDashboard)
			if err != nil {
				return err
			}
			return runStats(cmd.Context(), cmd.OutOrStdout(), cfg, g)
		},
	}

	cmd.Flags().StringVar(&rangeFlag, "range", string(core.Daily), "bucket size: daily, weekly or monthly")
	return cmd
}

func runStats(ctx context.Context, out io.Writer, cfg *config.Config, g core.Granularity) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(nil).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}
	defer result.Close()

	dashboard := services.NewDashboard(result.Backend, time.Hour, core.NewBucketer(core.SystemClock, cfg.Location()))
	if _, err := dashboard.Refresh(ctx); err != nil {
		return err
	}
	printStats(out, dashboard.Summary(ctx), dashboard.Chart(ctx, g), g)
	return nil
}

// printStats writes the counters and buckets. requested titles the chart
// when nothing has been bucketed yet.
func printStats(out io.Writer, sum core.Summary, chart core.Chart, requested core.Granularity) {
	fmt.Fprintf(out, "Total Services:     %s\n", humanize.Comma(int64(sum.TotalServices)))
	fmt.Fprintf(out, "Available Services: %s\n", humanize.Comma(int64(sum.AvailableServices)))
	fmt.Fprintf(out, "Total Revenue:      %s\n", core.FormatPeso(sum.TotalRevenue))
	fmt.Fprintf(out, "Total Expenses:     %s\n", core.FormatPeso(sum.TotalExpenses))
	fmt.Fprintf(out, "Net Income:         %s\n", core.FormatPeso(sum.NetIncome))

	title := chart.Granularity.Title()
	if title == "" {
		title = requested.Title()
	}
	fmt.Fprintf(out, "\n%s Revenue (total %s)\n", title, core.FormatPeso(chart.Total))
	if len(chart.Buckets) == 0 {
		fmt.Fprintln(out, "  no transactions")
		return
	}
	for _, b := range chart.Buckets {
		fmt.Fprintf(out, "  %-16s %s\n", b.Label, core.FormatPeso(b.Revenue))
	}
}
