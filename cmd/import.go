package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sales-analytics/internal/ingest"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a CRM export (CSV or XLSX) into the configured database",
	Long: `Reads a CRM export and upserts its records into the sqlite or postgres
source. Record kinds are inferred from column headers; re-importing the same
file is idempotent.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	set, err := ingest.ReadFile(args[0])
	if err != nil {
		return err
	}

	writer, closeFn, err := initWriter(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := writer.Migrate(ctx); err != nil {
		return err
	}

	log := zap.L().With(zap.String("file", args[0]))

	if len(set.Accounts) > 0 {
		n, err := writer.UpsertAccounts(ctx, set.Accounts)
		if err != nil {
			return err
		}
		log.Info("imported accounts", zap.Int64("rows", n))
	}
	if len(set.Opportunities) > 0 {
		n, err := writer.UpsertOpportunities(ctx, set.Opportunities)
		if err != nil {
			return err
		}
		log.Info("imported opportunities", zap.Int64("rows", n))
	}
	if len(set.Communications) > 0 {
		n, err := writer.UpsertCommunications(ctx, set.Communications)
		if err != nil {
			return err
		}
		log.Info("imported communications", zap.Int64("rows", n))
	}
	if len(set.Telemetry) > 0 {
		n, err := writer.InsertTelemetry(ctx, set.Telemetry)
		if err != nil {
			return err
		}
		log.Info("imported telemetry", zap.Int64("rows", n))
	}

	money.Printf("Imported %d records from %s\n", set.Total(), args[0])
	return nil
}
