// Package analytics implements the deterministic scoring, aggregation, and
// forecasting engine over CRM record snapshots. Every operation is a pure
// function of its inputs and an explicit clock; nothing here performs I/O.
package analytics

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sales-analytics/internal/config"
	"github.com/sells-group/sales-analytics/internal/model"
)

// DefaultConfig returns an AnalyticsConfig with the engine's standard
// windows, thresholds, and list caps.
func DefaultConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		RecentCommDays:     30,
		StalledDealDays:    45,
		StaleDealDays:      60,
		ForecastMonths:     3,
		MaxThemes:          5,
		MaxIndicators:      3,
		MaxRecommendations: 5,
		MaxBottlenecks:     3,

		// Different analyzers intentionally exclude different stage subsets;
		// keep the sets explicit rather than unifying them.
		PipelineExcludedStages: []string{string(model.StageClosedLost)},
		ForecastExcludedStages: []string{string(model.StageClosedLost)},
		PredictExcludedStages:  []string{string(model.StageClosedWon), string(model.StageClosedLost)},
	}
}

// ValidateConfig checks that an AnalyticsConfig is internally consistent.
func ValidateConfig(c config.AnalyticsConfig) error {
	var errs []string

	positives := map[string]int{
		"recent_comm_days":    c.RecentCommDays,
		"stalled_deal_days":   c.StalledDealDays,
		"stale_deal_days":     c.StaleDealDays,
		"forecast_months":     c.ForecastMonths,
		"max_themes":          c.MaxThemes,
		"max_indicators":      c.MaxIndicators,
		"max_recommendations": c.MaxRecommendations,
		"max_bottlenecks":     c.MaxBottlenecks,
	}
	for name, v := range positives {
		if v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be > 0", name))
		}
	}

	if c.StalledDealDays > c.StaleDealDays {
		errs = append(errs, "stalled_deal_days must be <= stale_deal_days")
	}

	valid := map[string]bool{
		string(model.StageProspecting):   true,
		string(model.StageQualification): true,
		string(model.StageProposal):      true,
		string(model.StageNegotiation):   true,
		string(model.StageClosedWon):     true,
		string(model.StageClosedLost):    true,
	}
	for name, set := range map[string][]string{
		"pipeline_excluded_stages": c.PipelineExcludedStages,
		"forecast_excluded_stages": c.ForecastExcludedStages,
		"predict_excluded_stages":  c.PredictExcludedStages,
	} {
		for _, s := range set {
			if !valid[s] {
				errs = append(errs, fmt.Sprintf("%s: unknown stage %q", name, s))
			}
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("analytics: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Engine evaluates CRM records against the configured windows and caps.
// All methods are safe for concurrent use.
type Engine struct {
	cfg config.AnalyticsConfig
}

// New creates an Engine with the given config.
func New(cfg config.AnalyticsConfig) *Engine {
	return &Engine{cfg: cfg}
}

// excluded reports whether the stage appears in the given exclusion set.
func excluded(stage model.Stage, set []string) bool {
	for _, s := range set {
		if string(stage) == s {
			return true
		}
	}
	return false
}
