package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var winlossCmd = &cobra.Command{
	Use:   "winloss",
	Short: "Historical win/loss breakdown and funnel conversion rates",
	RunE:  runWinLoss,
}

func init() {
	winlossCmd.Flags().Bool("narrate", false, "append advisor commentary to the report")
	rootCmd.AddCommand(winlossCmd)
}

func runWinLoss(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine()
	if err != nil {
		return err
	}

	src, err := initSource(ctx, cmd)
	if err != nil {
		return err
	}
	defer src.Close()

	opps, err := src.Opportunities(ctx, "")
	if err != nil {
		return err
	}

	report := engine.AnalyzeWinLoss(opps)

	money.Printf("Win/loss: %d closed of %d deals, %.1f%% win rate\n",
		report.Wins+report.Losses, report.TotalDeals, report.WinRate)

	if err := printJSON(report); err != nil {
		return err
	}
	narrate(ctx, cmd, "winloss", report)
	return nil
}
