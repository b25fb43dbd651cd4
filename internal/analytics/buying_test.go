package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sales-analytics/internal/model"
)

func TestAnalyzeBuyingPatternsNoData(t *testing.T) {
	e := testEngine()

	got := e.AnalyzeBuyingPatterns(model.Account{ID: "acct-1"}, nil, nil)

	assert.Empty(t, got.Patterns)
	assert.Empty(t, got.Preferences)
	assert.Equal(t, "Unknown", got.Seasonality)
	assert.Equal(t, "Unknown", got.VolumeTrend)
	assert.Equal(t, []string{"Gather more transaction data"}, got.Recommendations)
}

func TestAnalyzeBuyingPatternsPreferredProduct(t *testing.T) {
	e := testEngine()

	opps := []model.Opportunity{
		{ProductLine: "Hardware", Value: 1000},
		{ProductLine: "Software", Value: 1000},
		{ProductLine: "Software", Value: 1000},
	}

	got := e.AnalyzeBuyingPatterns(model.Account{ID: "acct-1"}, opps, nil)

	assert.Contains(t, got.Preferences, "Prefers Software")
}

func TestPreferredProductLineTieBreak(t *testing.T) {
	// Ties break to first-seen input order.
	opps := []model.Opportunity{
		{ProductLine: "Hardware"},
		{ProductLine: "Software"},
		{ProductLine: "Software"},
		{ProductLine: "Hardware"},
	}

	assert.Equal(t, "Hardware", preferredProductLine(opps))
}

func TestAnalyzeBuyingPatternsDealSizeAndPeakMonth(t *testing.T) {
	e := testEngine()

	opps := []model.Opportunity{
		{Value: 10_000, CloseDate: "2026-03-10"},
		{Value: 30_000, CloseDate: "2026-03-20"},
		{Value: 20_000, CloseDate: "2026-07-01"},
	}

	got := e.AnalyzeBuyingPatterns(model.Account{ID: "acct-1"}, opps, nil)

	assert.Contains(t, got.Patterns, "Average deal size of $20000")
	assert.Contains(t, got.Patterns, "Most deals close in Mar")
}

func TestSeasonality(t *testing.T) {
	tests := []struct {
		name string
		opps []model.Opportunity
		want string
	}{
		{
			"winter peak by value",
			[]model.Opportunity{
				{Value: 100_000, CloseDate: "2026-12-15"},
				{Value: 10_000, CloseDate: "2026-05-15"},
			},
			"Winter peak",
		},
		{
			"summer peak by value",
			[]model.Opportunity{
				{Value: 90_000, CloseDate: "2026-07-15"},
				{Value: 10_000, CloseDate: "2026-04-15"},
			},
			"Summer peak",
		},
		{
			"moderate otherwise",
			[]model.Opportunity{{Value: 50_000, CloseDate: "2026-10-15"}},
			"Moderate seasonality",
		},
		{
			"unknown without parseable dates",
			[]model.Opportunity{{Value: 50_000, CloseDate: "whenever"}},
			"Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, seasonality(tt.opps))
		})
	}
}

func TestVolumeTrend(t *testing.T) {
	points := func(volumes ...float64) []model.Telemetry {
		var out []model.Telemetry
		for i, v := range volumes {
			out = append(out, model.Telemetry{
				Date:   fmt.Sprintf("2026-01-%02d", i+1),
				Volume: v,
			})
		}
		return out
	}

	tests := []struct {
		name      string
		telemetry []model.Telemetry
		want      string
	}{
		{"too few points", points(1, 2, 3, 4), "Insufficient data"},
		{"increasing", points(10, 10, 10, 10, 10, 20, 20, 20, 20, 20), "Increasing"},
		{"decreasing", points(20, 20, 20, 20, 20, 10, 10, 10, 10, 10), "Decreasing"},
		{"stable", points(10, 10, 10, 10, 10, 10, 10, 10, 10, 10), "Stable"},
		{"exactly five points is stable", points(10, 10, 10, 10, 10), "Stable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, volumeTrend(tt.telemetry))
		})
	}
}

func TestAnalyzeBuyingPatternsRecommendations(t *testing.T) {
	e := testEngine()

	opps := []model.Opportunity{
		{ProductLine: "Software", Value: 40_000, CloseDate: "2026-06-01"},
		{ProductLine: "Software", Value: 60_000, CloseDate: "2026-06-15"},
	}

	got := e.AnalyzeBuyingPatterns(model.Account{ID: "acct-1"}, opps, nil)

	require.NotEmpty(t, got.Recommendations)
	assert.LessOrEqual(t, len(got.Recommendations), 5)
	assert.Contains(t, got.Recommendations, "Lead with Software in upcoming proposals")
}
