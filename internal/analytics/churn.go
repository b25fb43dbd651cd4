package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/sales-analytics/internal/model"
)

// Risk levels for churn classification.
const (
	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
)

// ChurnRiskReport is the weighted churn risk assessment for one account.
type ChurnRiskReport struct {
	AccountID       string   `json:"account_id"`
	RiskScore       int      `json:"risk_score"` // 0-100
	RiskLevel       string   `json:"risk_level"` // High, Medium, Low
	RiskFactors     []string `json:"risk_factors"`
	Recommendations []string `json:"recommendations"`
	NextActions     []string `json:"next_actions"`
	Timeline        string   `json:"timeline"`
}

// Factor strings double as keys for conditional recommendations, so they are
// fixed here rather than formatted inline.
const (
	factorNoRecentComms  = "No communications in the last 30 days"
	factorFewRecentComms = "Minimal recent communication"
	factorVeryNegative   = "Very negative communication sentiment"
	factorNegative       = "Negative communication sentiment"
	factorNoActiveOpps   = "No active opportunities"
	factorCriticalHealth = "Critically low account health score"
	factorLowHealth      = "Low account health score"
)

var churnBaseRecommendations = map[string][]string{
	RiskHigh: {
		"Schedule an executive business review within two weeks",
		"Assign a dedicated customer success manager",
		"Prepare a targeted retention offer",
		"Audit open support issues and close the loop",
	},
	RiskMedium: {
		"Increase outreach cadence to biweekly",
		"Share a product roadmap update",
		"Identify and engage an internal champion",
		"Review recent usage for adoption gaps",
	},
	RiskLow: {
		"Maintain the regular check-in cadence",
		"Look for expansion opportunities",
		"Request a reference or case study",
	},
}

var churnNextActions = map[string][]string{
	RiskHigh: {
		"Call the primary contact today",
		"Book an on-site or video business review",
		"Flag the account for weekly leadership review",
	},
	RiskMedium: {
		"Send a personalized check-in email",
		"Schedule a product health review",
		"Confirm the renewal timeline with the buyer",
	},
	RiskLow: {
		"Continue the current engagement plan",
		"Log a quarterly business review",
		"Monitor the health score monthly",
	},
}

// PredictChurnRisk combines an account's profile, communication history, and
// open pipeline into a weighted 0-100 risk score with level, factors, and
// recommended actions. Empty inputs still produce a valid report: the
// no-communications and no-active-opportunities factors fire on their own.
func (e *Engine) PredictChurnRisk(account model.Account, comms []model.Communication, opps []model.Opportunity, now time.Time) ChurnRiskReport {
	score := 0.0
	factors := []string{}

	// Communication recency.
	recentCount := 0
	for _, c := range comms {
		d := ParseDate(c.Date, time.Time{})
		if !d.IsZero() && DaysBetween(now, d) >= 0 && DaysBetween(now, d) <= e.cfg.RecentCommDays {
			recentCount++
		}
	}
	switch {
	case recentCount == 0:
		score += 30
		factors = append(factors, factorNoRecentComms)
	case recentCount <= 2:
		score += 15
		factors = append(factors, factorFewRecentComms)
	}

	// Communication sentiment, only when there is history to judge.
	if len(comms) > 0 {
		var total float64
		for _, c := range comms {
			total += Clamp(c.Sentiment, 0, 1)
		}
		mean := total / float64(len(comms))
		switch {
		case mean < 0.3:
			score += 25
			factors = append(factors, factorVeryNegative)
		case mean < 0.5:
			score += 10
			factors = append(factors, factorNegative)
		}
	}

	// Open pipeline presence.
	active := 0
	stalled := 0
	for _, o := range opps {
		if !o.Stage.Closed() {
			active++
		}
		if o.DaysInStage > e.cfg.StalledDealDays {
			stalled++
		}
	}
	if active == 0 {
		score += 20
		factors = append(factors, factorNoActiveOpps)
	}

	// Account health.
	health := Clamp(account.HealthScore, 0, 100)
	switch {
	case health < 30:
		score += 20
		factors = append(factors, factorCriticalHealth)
	case health < 50:
		score += 10
		factors = append(factors, factorLowHealth)
	}

	// Stalled deals contribute per deal; only the final total is capped.
	if stalled > 0 {
		score += float64(stalled * 5)
		factors = append(factors, fmt.Sprintf("%d stalled deals in pipeline", stalled))
	}

	riskScore := int(Clamp(score, 0, 100))
	level := churnLevel(riskScore)

	timeline := "60 days"
	if level == RiskHigh {
		timeline = "30 days"
	}

	return ChurnRiskReport{
		AccountID:       account.ID,
		RiskScore:       riskScore,
		RiskLevel:       level,
		RiskFactors:     factors,
		Recommendations: e.churnRecommendations(level, factors),
		NextActions:     churnNextActions[level],
		Timeline:        timeline,
	}
}

// churnLevel maps a risk score to a level against the fixed thresholds.
func churnLevel(score int) string {
	switch {
	case score >= 60:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}

// churnRecommendations builds the level-specific list plus conditional
// appends keyed on the emitted factor strings, capped.
func (e *Engine) churnRecommendations(level string, factors []string) []string {
	recs := make([]string, len(churnBaseRecommendations[level]))
	copy(recs, churnBaseRecommendations[level])

	has := func(f string) bool {
		for _, existing := range factors {
			if existing == f {
				return true
			}
		}
		return false
	}

	if has(factorNoRecentComms) {
		recs = append(recs, "Re-establish contact immediately")
	}
	if has(factorVeryNegative) {
		recs = append(recs, "Escalate to leadership for service recovery")
	}
	for _, f := range factors {
		if strings.Contains(f, "stalled deals") {
			recs = append(recs, "Unblock stalled deals or reset close dates")
			break
		}
	}

	return take(recs, e.cfg.MaxRecommendations)
}
