package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Probability-weighted revenue forecast with confidence and risk",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().Int("months", 0, "forecast horizon in months (default from config)")
	forecastCmd.Flags().Bool("narrate", false, "append advisor commentary to the report")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
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

	months, _ := cmd.Flags().GetInt("months")
	report := engine.Forecast(opps, time.Now().UTC(), months)

	money.Printf("Forecast: $%.0f weighted, $%.0f risk-adjusted, confidence %s\n",
		report.ForecastTotal, report.RiskAdjustedTotal, report.Confidence)

	if err := printJSON(report); err != nil {
		return err
	}
	narrate(ctx, cmd, "forecast", report)
	return nil
}
