package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/sells-group/sales-analytics/internal/model"
)

// EngagementReport summarizes the sentiment and engagement signal across an
// account's communication history.
type EngagementReport struct {
	OverallSentiment float64  `json:"overall_sentiment"` // 0.0-1.0, 2dp
	RecentSentiment  float64  `json:"recent_sentiment"`  // 0.0-1.0, 2dp
	SentimentTrend   string   `json:"sentiment_trend"`   // improving, declining, stable, neutral
	KeyThemes        []string `json:"key_themes"`
	RiskIndicators   []string `json:"risk_indicators"`
	PositiveSignals  []string `json:"positive_signals"`
	EngagementScore  int      `json:"engagement_score"` // 0-100
}

// themeCategories maps business themes to content keywords. Iterated in
// declared order so theme output is deterministic.
var themeCategories = []struct {
	label    string
	keywords []string
}{
	{"Pricing and cost discussions", []string{"price", "pricing", "cost", "expensive", "budget", "discount"}},
	{"Product quality feedback", []string{"quality", "defect", "broken", "reliable", "bug"}},
	{"Delivery and timeline concerns", []string{"delivery", "shipping", "deadline", "late", "on time"}},
	{"Service and support topics", []string{"service", "support", "response", "help", "ticket"}},
	{"Volume and capacity planning", []string{"volume", "capacity", "scale", "quantity", "order size"}},
}

// riskKeywords attach a fixed indicator string on the first keyword that
// appears in a communication's content.
var riskKeywords = []struct {
	keyword   string
	indicator string
}{
	{"cancel", "Cancellation mentioned"},
	{"competitor", "Competitor mentioned"},
	{"frustrat", "Customer frustration expressed"},
	{"delay", "Delays reported"},
	{"complaint", "Complaint on record"},
}

var positiveKeywords = []struct {
	keyword   string
	indicator string
}{
	{"renew", "Renewal interest"},
	{"expand", "Expansion interest"},
	{"upgrade", "Upgrade interest"},
	{"recommend", "Willing to recommend"},
	{"great", "Positive feedback"},
}

// AnalyzeEngagement rolls an account's communications up into a sentiment
// trend, key themes, risk/positive signals, and an engagement score.
// An empty communication list yields the documented neutral default.
func (e *Engine) AnalyzeEngagement(comms []model.Communication, now time.Time) EngagementReport {
	if len(comms) == 0 {
		return EngagementReport{
			OverallSentiment: 0.5,
			RecentSentiment:  0.5,
			SentimentTrend:   "neutral",
			KeyThemes:        []string{"No recent communications"},
			RiskIndicators:   []string{},
			PositiveSignals:  []string{},
			EngagementScore:  45, // base 30 + neutral sentiment contribution
		}
	}

	var total float64
	for _, c := range comms {
		total += Clamp(c.Sentiment, 0, 1)
	}
	overall := total / float64(len(comms))

	recent := recentMeanSentiment(comms, 5)

	trend := "stable"
	switch {
	case recent > overall+0.1:
		trend = "improving"
	case recent < overall-0.1:
		trend = "declining"
	}

	return EngagementReport{
		OverallSentiment: round2(overall),
		RecentSentiment:  round2(recent),
		SentimentTrend:   trend,
		KeyThemes:        e.keyThemes(comms),
		RiskIndicators:   e.matchIndicators(comms, riskKeywords, 0.3, true),
		PositiveSignals:  e.matchIndicators(comms, positiveKeywords, 0.7, false),
		EngagementScore:  e.engagementScore(comms, overall, now),
	}
}

// recentMeanSentiment averages the n most-recent-by-date communications.
// Unparseable dates sort to the back rather than being dropped.
func recentMeanSentiment(comms []model.Communication, n int) float64 {
	sorted := make([]model.Communication, len(comms))
	copy(sorted, comms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ParseDate(sorted[i].Date, time.Time{}).After(ParseDate(sorted[j].Date, time.Time{}))
	})
	sorted = take(sorted, n)

	var total float64
	for _, c := range sorted {
		total += Clamp(c.Sentiment, 0, 1)
	}
	return total / float64(len(sorted))
}

// keyThemes returns the theme labels whose keywords appear anywhere in the
// communications, in declared category order.
func (e *Engine) keyThemes(comms []model.Communication) []string {
	var themes []string
	for _, cat := range themeCategories {
		if anyContentMatches(comms, cat.keywords) {
			themes = append(themes, cat.label)
		}
	}
	if themes == nil {
		themes = []string{}
	}
	return take(themes, e.cfg.MaxThemes)
}

func anyContentMatches(comms []model.Communication, keywords []string) bool {
	for _, c := range comms {
		content := strings.ToLower(c.Content)
		for _, kw := range keywords {
			if strings.Contains(content, kw) {
				return true
			}
		}
	}
	return false
}

// matchIndicators collects sentiment-threshold and keyword indicators across
// communications, de-duplicated in first-encountered order and capped.
// threshold is a low-water mark for risk (low=true) or a high-water mark for
// positive signals.
func (e *Engine) matchIndicators(comms []model.Communication, table []struct{ keyword, indicator string }, threshold float64, low bool) []string {
	indicators := []string{}
	for _, c := range comms {
		if low && c.Sentiment < threshold {
			indicators = appendUnique(indicators, "Low sentiment in recent communications")
		}
		if !low && c.Sentiment > threshold {
			indicators = appendUnique(indicators, "High satisfaction expressed")
		}

		content := strings.ToLower(c.Content)
		for _, entry := range table {
			if strings.Contains(content, entry.keyword) {
				indicators = appendUnique(indicators, entry.indicator)
				break // first matching keyword only
			}
		}
	}
	return take(indicators, e.cfg.MaxIndicators)
}

// engagementScore combines communication recency and average sentiment into
// a 0-100 score: 10 points per communication in the recent window (capped at
// 40), the average sentiment scaled to 30 points, and a flat 30 base.
func (e *Engine) engagementScore(comms []model.Communication, overall float64, now time.Time) int {
	recentCount := 0
	for _, c := range comms {
		d := ParseDate(c.Date, time.Time{})
		if !d.IsZero() && DaysBetween(now, d) <= e.cfg.RecentCommDays && DaysBetween(now, d) >= 0 {
			recentCount++
		}
	}

	recencyPts := float64(recentCount * 10)
	if recencyPts > 40 {
		recencyPts = 40
	}

	score := recencyPts + float64(int(overall*30)) + 30
	return int(Clamp(score, 0, 100))
}
