package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sales-analytics/internal/model"
)

// evenPipeline builds n opportunities split 50/50 between Prospecting and
// Proposal with the given days in stage and value.
func evenPipeline(n, days int, value float64) []model.Opportunity {
	var opps []model.Opportunity
	for i := 0; i < n; i++ {
		stage := model.StageProspecting
		if i%2 == 1 {
			stage = model.StageProposal
		}
		opps = append(opps, model.Opportunity{Stage: stage, DaysInStage: days, Value: value})
	}
	return opps
}

func TestAnalyzePipelineHealthScore(t *testing.T) {
	e := testEngine()

	t.Run("balanced large pipeline scores full marks", func(t *testing.T) {
		// Early share 0.5 in [0.3,0.6] = 30, 20 opps = 25, avg value 60k = 20,
		// mean days 20 = 25: total 100.
		got := e.AnalyzePipeline(evenPipeline(20, 20, 60_000))
		assert.Equal(t, 100, got.HealthScore)
		assert.Equal(t, 90, got.VelocityScore)
	})

	t.Run("balanced mid pipeline", func(t *testing.T) {
		// 30 + 20 (10 opps) + 20 + 25 = 95.
		got := e.AnalyzePipeline(evenPipeline(10, 20, 60_000))
		assert.Equal(t, 95, got.HealthScore)
	})

	t.Run("tiny slow cheap pipeline", func(t *testing.T) {
		// Early share 1.0: mix 30*(1-(0.55-0.15)/0.45) = 3.33; size 2;
		// deal 10; velocity 10 = 25.
		opps := []model.Opportunity{
			{Stage: model.StageProspecting, DaysInStage: 80, Value: 5_000},
			{Stage: model.StageQualification, DaysInStage: 80, Value: 5_000},
		}
		got := e.AnalyzePipeline(opps)
		assert.Equal(t, 25, got.HealthScore)
		assert.Equal(t, 20, got.VelocityScore)
	})

	t.Run("score always within range", func(t *testing.T) {
		got := e.AnalyzePipeline(evenPipeline(50, 1, 1_000_000))
		assert.GreaterOrEqual(t, got.HealthScore, 0)
		assert.LessOrEqual(t, got.HealthScore, 100)
	})
}

func TestAnalyzePipelineEmptyInput(t *testing.T) {
	e := testEngine()

	got := e.AnalyzePipeline(nil)

	assert.Zero(t, got.TotalCount)
	assert.Zero(t, got.HealthScore)
	assert.Zero(t, got.VelocityScore)
	assert.Empty(t, got.StageDistribution)
	assert.Equal(t, []string{"Build pipeline before analyzing its health"}, got.Recommendations)
}

func TestAnalyzePipelineExcludesClosedLost(t *testing.T) {
	e := testEngine()

	opps := []model.Opportunity{
		{Stage: model.StageProposal, Value: 10_000, DaysInStage: 10},
		{Stage: model.StageClosedLost, Value: 99_000, DaysInStage: 10},
	}

	got := e.AnalyzePipeline(opps)

	assert.Equal(t, 1, got.TotalCount)
	assert.Equal(t, 10_000.0, got.TotalValue)
	assert.NotContains(t, got.StageDistribution, string(model.StageClosedLost))
}

func TestAnalyzePipelineDistribution(t *testing.T) {
	e := testEngine()

	opps := []model.Opportunity{
		{Stage: model.StageProspecting, Value: 10_000, DaysInStage: 5},
		{Stage: model.StageProspecting, Value: 10_000, DaysInStage: 5},
		{Stage: model.StageProposal, Value: 80_000, DaysInStage: 5},
		{Stage: model.StageNegotiation, Value: 100_000, DaysInStage: 5},
	}

	got := e.AnalyzePipeline(opps)

	require.Contains(t, got.StageDistribution, string(model.StageProspecting))
	prospecting := got.StageDistribution[string(model.StageProspecting)]
	assert.Equal(t, 2, prospecting.Count)
	assert.Equal(t, 50.0, prospecting.CountPct)
	assert.Equal(t, 10.0, prospecting.ValuePct)

	assert.Equal(t, 50.0, got.ConversionRates[string(model.StageProspecting)])
	assert.Equal(t, 25.0, got.ConversionRates[string(model.StageProposal)])
}

func TestAnalyzePipelineBottlenecks(t *testing.T) {
	e := testEngine()

	t.Run("stage concentration", func(t *testing.T) {
		var opps []model.Opportunity
		for i := 0; i < 9; i++ {
			opps = append(opps, model.Opportunity{Stage: model.StageProspecting, DaysInStage: 10})
		}
		opps = append(opps, model.Opportunity{Stage: model.StageProposal, DaysInStage: 10})

		got := e.AnalyzePipeline(opps)
		require.NotEmpty(t, got.Bottlenecks)
		assert.Contains(t, got.Bottlenecks[0], "Prospecting")
	})

	t.Run("stale share", func(t *testing.T) {
		opps := []model.Opportunity{
			{Stage: model.StageProspecting, DaysInStage: 90},
			{Stage: model.StageProposal, DaysInStage: 90},
			{Stage: model.StageNegotiation, DaysInStage: 5},
		}

		got := e.AnalyzePipeline(opps)
		found := false
		for _, b := range got.Bottlenecks {
			if containsFold(b, "stale") {
				found = true
			}
		}
		assert.True(t, found, "expected stale bottleneck in %v", got.Bottlenecks)
		assert.Contains(t, got.Recommendations, "Re-engage or disqualify stale deals")
	})

	t.Run("weak qualification conversion", func(t *testing.T) {
		var opps []model.Opportunity
		for i := 0; i < 10; i++ {
			opps = append(opps, model.Opportunity{Stage: model.StageQualification, DaysInStage: 10})
		}
		opps = append(opps, model.Opportunity{Stage: model.StageProposal, DaysInStage: 10})

		got := e.AnalyzePipeline(opps)
		assert.Contains(t, got.Bottlenecks, "Low conversion from Qualification to Proposal")
	})

	t.Run("capped at three", func(t *testing.T) {
		var opps []model.Opportunity
		for i := 0; i < 20; i++ {
			opps = append(opps, model.Opportunity{Stage: model.StageQualification, DaysInStage: 90})
		}

		got := e.AnalyzePipeline(opps)
		assert.LessOrEqual(t, len(got.Bottlenecks), 3)
	})
}

func TestAnalyzePipelineHealthyRecommendationFallback(t *testing.T) {
	e := testEngine()

	got := e.AnalyzePipeline(evenPipeline(20, 10, 60_000))

	assert.Equal(t, []string{"Pipeline is healthy; maintain the current cadence"}, got.Recommendations)
}
