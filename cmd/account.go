package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/sales-analytics/internal/analytics"
	"github.com/sells-group/sales-analytics/internal/model"
	"github.com/sells-group/sales-analytics/internal/source"
)

// accountReport is the composite analysis for a single account.
type accountReport struct {
	Account        model.Account                 `json:"account"`
	Engagement     analytics.EngagementReport    `json:"engagement"`
	ChurnRisk      analytics.ChurnRiskReport     `json:"churn_risk"`
	BuyingPatterns analytics.BuyingPatternReport `json:"buying_patterns"`
	Opportunities  []analytics.OpportunityScore  `json:"opportunity_scores"`
}

var accountCmd = &cobra.Command{
	Use:   "account <id>",
	Short: "Full analysis of one account: engagement, churn risk, buying patterns",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccount,
}

func init() {
	accountCmd.Flags().Bool("narrate", false, "append advisor commentary to the report")
	rootCmd.AddCommand(accountCmd)
}

func runAccount(cmd *cobra.Command, args []string) error {
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

	report, err := analyzeAccount(ctx, engine, src, args[0], time.Now().UTC())
	if err != nil {
		return err
	}

	if err := printJSON(report); err != nil {
		return err
	}
	narrate(ctx, cmd, "account", report)
	return nil
}

func analyzeAccount(ctx context.Context, engine *analytics.Engine, src source.Source, id string, now time.Time) (*accountReport, error) {
	account, err := src.Account(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, eris.Errorf("account not found: %s", id)
	}

	comms, err := src.Communications(ctx, id)
	if err != nil {
		return nil, err
	}
	opps, err := src.Opportunities(ctx, id)
	if err != nil {
		return nil, err
	}
	telemetry, err := src.Telemetry(ctx, id)
	if err != nil {
		return nil, err
	}

	scores := make([]analytics.OpportunityScore, 0, len(opps))
	for _, o := range opps {
		scores = append(scores, engine.ScoreOpportunity(o, now))
	}

	return &accountReport{
		Account:        *account,
		Engagement:     engine.AnalyzeEngagement(comms, now),
		ChurnRisk:      engine.PredictChurnRisk(*account, comms, opps, now),
		BuyingPatterns: engine.AnalyzeBuyingPatterns(*account, opps, telemetry),
		Opportunities:  scores,
	}, nil
}
