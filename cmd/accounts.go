package main

import (
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// accountSummary is one row of the batch churn sweep.
type accountSummary struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	RiskLevel string `json:"risk_level"`
	RiskScore int    `json:"risk_score"`
	Timeline  string `json:"timeline"`
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Churn risk sweep across every account, highest risk first",
	RunE:  runAccounts,
}

func init() {
	accountsCmd.Flags().Int("concurrency", 4, "parallel account analyses")
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, _ []string) error {
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

	accounts, err := src.Accounts(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	summaries := make([]accountSummary, 0, len(accounts))

	for _, account := range accounts {
		g.Go(func() error {
			comms, err := src.Communications(gctx, account.ID)
			if err != nil {
				return err
			}
			opps, err := src.Opportunities(gctx, account.ID)
			if err != nil {
				return err
			}

			report := engine.PredictChurnRisk(account, comms, opps, now)

			mu.Lock()
			summaries = append(summaries, accountSummary{
				AccountID: account.ID,
				Name:      account.Name,
				RiskLevel: report.RiskLevel,
				RiskScore: report.RiskScore,
				Timeline:  report.Timeline,
			})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].RiskScore > summaries[j].RiskScore
	})

	zap.L().Info("churn sweep complete",
		zap.Int("accounts", len(summaries)),
		zap.Int("high_risk", countLevel(summaries, "High")),
	)

	return printJSON(summaries)
}

func countLevel(summaries []accountSummary, level string) int {
	n := 0
	for _, s := range summaries {
		if s.RiskLevel == level {
			n++
		}
	}
	return n
}
