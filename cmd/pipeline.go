package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Pipeline health, velocity, stage distribution, and bottlenecks",
	RunE:  runPipeline,
}

func init() {
	pipelineCmd.Flags().String("account", "", "limit analysis to one account")
	pipelineCmd.Flags().Bool("narrate", false, "append advisor commentary to the report")
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
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

	accountID, _ := cmd.Flags().GetString("account")
	opps, err := src.Opportunities(ctx, accountID)
	if err != nil {
		return err
	}

	report := engine.AnalyzePipeline(opps)

	money.Printf("Pipeline: %d open deals, $%.0f total value, health %d/100\n",
		report.TotalCount, report.TotalValue, report.HealthScore)

	if err := printJSON(report); err != nil {
		return err
	}
	narrate(ctx, cmd, "pipeline", report)
	return nil
}
