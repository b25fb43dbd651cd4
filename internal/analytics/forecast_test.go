package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sales-analytics/internal/model"
)

func TestForecastTotalIsExactWeightedSum(t *testing.T) {
	e := testEngine()

	opps := []model.Opportunity{
		{Value: 100_000, Probability: 80, Stage: model.StageNegotiation, CloseDate: "2026-09-15"},
		{Value: 50_000, Probability: 35, Stage: model.StageProposal, CloseDate: "2026-10-01"},
		{Value: 33_333, Probability: 17, Stage: model.StageQualification, CloseDate: "2026-09-30"},
		{Value: 99_000, Probability: 90, Stage: model.StageClosedLost, CloseDate: "2026-09-01"}, // excluded
	}

	got := e.Forecast(opps, testNow, 3)

	want := 100_000*80.0/100 + 50_000*35.0/100 + 33_333*17.0/100
	assert.InDelta(t, want, got.ForecastTotal, 1e-9)
}

func TestForecastNoOpportunities(t *testing.T) {
	e := testEngine()

	got := e.Forecast(nil, testNow, 3)

	assert.Zero(t, got.ForecastTotal)
	assert.Zero(t, got.RiskAdjustedTotal)
	assert.Equal(t, "Low", got.Confidence)
	require.Len(t, got.Monthly, 3)
	assert.Equal(t, "2026-08", got.Monthly[0].Month)
	assert.Equal(t, "2026-09", got.Monthly[1].Month)
	assert.Equal(t, "2026-10", got.Monthly[2].Month)
}

func TestForecastMonthlyBuckets(t *testing.T) {
	e := testEngine()

	opps := []model.Opportunity{
		{Value: 100_000, Probability: 50, Stage: model.StageProposal, CloseDate: "2026-09-10"},
		{Value: 40_000, Probability: 25, Stage: model.StageProposal, CloseDate: "2026-09-25"},
		{Value: 60_000, Probability: 50, Stage: model.StageNegotiation, CloseDate: "2026-10-05"},
		{Value: 10_000, Probability: 100, Stage: model.StageQualification, CloseDate: "not a date"}, // current month
	}

	got := e.Forecast(opps, testNow, 3)

	require.Len(t, got.Monthly, 3)

	august := got.Monthly[0]
	assert.Equal(t, "2026-08", august.Month)
	assert.InDelta(t, 10_000.0, august.Forecast, 1e-9) // unparseable date lands here
	assert.Equal(t, 0, august.Deals)                   // prefix match sees no 2026-08 strings

	september := got.Monthly[1]
	assert.InDelta(t, 60_000.0, september.Forecast, 1e-9)
	assert.Equal(t, 2, september.Deals)

	october := got.Monthly[2]
	assert.InDelta(t, 30_000.0, october.Forecast, 1e-9)
	assert.Equal(t, 1, october.Deals)
}

func TestForecastConfidence(t *testing.T) {
	e := testEngine()

	t.Run("high with deep complete pipeline", func(t *testing.T) {
		var opps []model.Opportunity
		for i := 0; i < 20; i++ {
			stage := model.StageProposal
			if i%2 == 0 {
				stage = model.StageProspecting
			}
			opps = append(opps, model.Opportunity{
				Value: 50_000, Probability: 60, Stage: stage, CloseDate: "2026-09-15",
			})
		}
		// 30 (size) + 30 (advanced share 0.5) + 40 (complete) = 100.
		got := e.Forecast(opps, testNow, 3)
		assert.Equal(t, 100, got.ConfidenceScore)
		assert.Equal(t, "High", got.Confidence)
	})

	t.Run("low with thin incomplete pipeline", func(t *testing.T) {
		opps := []model.Opportunity{
			{Stage: model.StageProspecting},
			{Stage: model.StageQualification},
		}
		// 10 + 10 + 0 = 20.
		got := e.Forecast(opps, testNow, 3)
		assert.Equal(t, 20, got.ConfidenceScore)
		assert.Equal(t, "Low", got.Confidence)
	})
}

func TestForecastRiskFactor(t *testing.T) {
	e := testEngine()

	t.Run("capped at 0.4", func(t *testing.T) {
		// All stale, all low probability, one deal dominating value:
		// 0.2 + 0.15 + 0.15 = 0.5, capped.
		opps := []model.Opportunity{
			{Value: 900_000, Probability: 10, Stage: model.StageProposal, DaysInStage: 90, CloseDate: "2026-09-01"},
			{Value: 10_000, Probability: 10, Stage: model.StageProposal, DaysInStage: 90, CloseDate: "2026-09-01"},
		}

		got := e.Forecast(opps, testNow, 3)
		assert.InDelta(t, 0.4, got.RiskFactor, 1e-9)
		assert.InDelta(t, got.ForecastTotal*0.6, got.RiskAdjustedTotal, 1e-9)
	})

	t.Run("zero for clean pipeline", func(t *testing.T) {
		opps := []model.Opportunity{
			{Value: 50_000, Probability: 60, Stage: model.StageProposal, DaysInStage: 10, CloseDate: "2026-09-01"},
			{Value: 50_000, Probability: 60, Stage: model.StageProposal, DaysInStage: 10, CloseDate: "2026-09-01"},
		}

		got := e.Forecast(opps, testNow, 3)
		assert.Zero(t, got.RiskFactor)
		assert.InDelta(t, got.ForecastTotal, got.RiskAdjustedTotal, 1e-9)
	})
}

func TestForecastRisks(t *testing.T) {
	e := testEngine()

	opps := []model.Opportunity{
		{Value: 900_000, Probability: 10, Stage: model.StageProposal, DaysInStage: 90, CloseDate: "2026-09-01"},
		{Value: 10_000, Probability: 10, Stage: model.StageProposal, DaysInStage: 90, CloseDate: "2026-09-01"},
	}

	got := e.Forecast(opps, testNow, 3)

	assert.Len(t, got.Risks, 3)
	assert.Contains(t, got.Risks, "Forecast concentrated in a single large deal")
	assert.Contains(t, got.Risks, "Large share of the pipeline is stale")
	assert.Contains(t, got.Risks, "Majority of the pipeline has low win probability")
}

func TestForecastDefaultHorizon(t *testing.T) {
	e := testEngine()

	got := e.Forecast(nil, testNow, 0)

	assert.Len(t, got.Monthly, 3)
}
