package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Adjusted win probabilities for every open deal",
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().String("account", "", "limit predictions to one account")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, _ []string) error {
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

	return printJSON(engine.PredictDeals(opps, time.Now().UTC()))
}
