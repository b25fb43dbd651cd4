package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sales-analytics/internal/model"
)

func comm(daysAgo int, sentiment float64, content string) model.Communication {
	return model.Communication{
		AccountID: "acct-1",
		Date:      testNow.AddDate(0, 0, -daysAgo).Format("2006-01-02"),
		Sentiment: sentiment,
		Content:   content,
	}
}

func TestAnalyzeEngagementNoData(t *testing.T) {
	e := testEngine()

	got := e.AnalyzeEngagement(nil, testNow)

	assert.Equal(t, 0.5, got.OverallSentiment)
	assert.Equal(t, 0.5, got.RecentSentiment)
	assert.Equal(t, "neutral", got.SentimentTrend)
	assert.Equal(t, []string{"No recent communications"}, got.KeyThemes)
	assert.Empty(t, got.RiskIndicators)
	assert.Empty(t, got.PositiveSignals)
	assert.Equal(t, 45, got.EngagementScore)
}

func TestAnalyzeEngagementTrend(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name  string
		comms []model.Communication
		want  string
	}{
		{
			"improving when recent beats overall",
			[]model.Communication{
				comm(90, 0.2, ""), comm(80, 0.2, ""), comm(70, 0.2, ""),
				comm(60, 0.2, ""), comm(50, 0.2, ""), comm(40, 0.2, ""),
				comm(5, 0.9, ""), comm(4, 0.9, ""), comm(3, 0.9, ""),
				comm(2, 0.9, ""), comm(1, 0.9, ""),
			},
			"improving",
		},
		{
			"declining when recent drops",
			[]model.Communication{
				comm(90, 0.9, ""), comm(80, 0.9, ""), comm(70, 0.9, ""),
				comm(60, 0.9, ""), comm(50, 0.9, ""), comm(40, 0.9, ""),
				comm(5, 0.2, ""), comm(4, 0.2, ""), comm(3, 0.2, ""),
				comm(2, 0.2, ""), comm(1, 0.2, ""),
			},
			"declining",
		},
		{
			"stable when flat",
			[]model.Communication{comm(10, 0.6, ""), comm(5, 0.6, ""), comm(1, 0.6, "")},
			"stable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.AnalyzeEngagement(tt.comms, testNow)
			assert.Equal(t, tt.want, got.SentimentTrend)
		})
	}
}

func TestAnalyzeEngagementThemes(t *testing.T) {
	e := testEngine()

	comms := []model.Communication{
		comm(5, 0.5, "The pricing feels too expensive for our budget"),
		comm(4, 0.5, "We had a quality issue with the last batch"),
		comm(3, 0.5, "Shipping was late again this quarter"),
	}

	got := e.AnalyzeEngagement(comms, testNow)

	// Declared category order, not message order.
	require.Len(t, got.KeyThemes, 3)
	assert.Equal(t, "Pricing and cost discussions", got.KeyThemes[0])
	assert.Equal(t, "Product quality feedback", got.KeyThemes[1])
	assert.Equal(t, "Delivery and timeline concerns", got.KeyThemes[2])
}

func TestAnalyzeEngagementIndicators(t *testing.T) {
	e := testEngine()

	comms := []model.Communication{
		comm(5, 0.1, "We may cancel if this continues"),
		comm(4, 0.2, "Talking to a competitor about switching"),
		comm(3, 0.15, "Still frustrated with the delays"),
		comm(2, 0.9, "The new dashboard is great, we want to renew"),
	}

	got := e.AnalyzeEngagement(comms, testNow)

	// De-duplicated, capped at 3, first-encountered order.
	require.Len(t, got.RiskIndicators, 3)
	assert.Equal(t, "Low sentiment in recent communications", got.RiskIndicators[0])
	assert.Equal(t, "Cancellation mentioned", got.RiskIndicators[1])
	assert.Equal(t, "Competitor mentioned", got.RiskIndicators[2])

	assert.Contains(t, got.PositiveSignals, "High satisfaction expressed")
	assert.Contains(t, got.PositiveSignals, "Renewal interest")
}

func TestAnalyzeEngagementScore(t *testing.T) {
	e := testEngine()

	t.Run("recency capped at 40", func(t *testing.T) {
		var comms []model.Communication
		for i := 0; i < 8; i++ {
			comms = append(comms, comm(i+1, 1.0, ""))
		}
		got := e.AnalyzeEngagement(comms, testNow)
		// 40 (capped) + 30 (sentiment 1.0) + 30 (base) = 100.
		assert.Equal(t, 100, got.EngagementScore)
	})

	t.Run("old communications earn no recency points", func(t *testing.T) {
		comms := []model.Communication{comm(200, 0.5, ""), comm(190, 0.5, "")}
		got := e.AnalyzeEngagement(comms, testNow)
		// 0 + 15 + 30 = 45.
		assert.Equal(t, 45, got.EngagementScore)
	})

	t.Run("always within range", func(t *testing.T) {
		comms := []model.Communication{comm(1, 0, ""), comm(2, 1, "")}
		got := e.AnalyzeEngagement(comms, testNow)
		assert.GreaterOrEqual(t, got.EngagementScore, 0)
		assert.LessOrEqual(t, got.EngagementScore, 100)
	})
}

func TestAnalyzeEngagementIdempotent(t *testing.T) {
	e := testEngine()
	comms := []model.Communication{
		comm(5, 0.3, "pricing concerns"),
		comm(2, 0.8, "great support"),
	}

	first := e.AnalyzeEngagement(comms, testNow)
	second := e.AnalyzeEngagement(comms, testNow)

	assert.Equal(t, first, second)
}
