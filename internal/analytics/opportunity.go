package analytics

import (
	"time"

	"github.com/sells-group/sales-analytics/internal/model"
)

// Urgency classifies how soon an opportunity needs attention.
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// OpportunityScore is the composite score for a single opportunity.
type OpportunityScore struct {
	OpportunityID string  `json:"opportunity_id"`
	Score         int     `json:"score"` // 0-100
	Urgency       Urgency `json:"urgency"`
}

// stageScoreAdjust is the additive stage adjustment for the composite score.
var stageScoreAdjust = map[model.Stage]float64{
	model.StageProspecting:   -10,
	model.StageQualification: 0,
	model.StageProposal:      10,
	model.StageNegotiation:   20,
	model.StageClosedWon:     50,
	model.StageClosedLost:    -50,
}

// ScoreOpportunity produces a 0-100 composite score and an urgency label for
// a single opportunity. The score rewards deal size, stated probability, and
// late funnel stages; it penalizes time spent sitting in one stage.
func (e *Engine) ScoreOpportunity(opp model.Opportunity, now time.Time) OpportunityScore {
	score := 50.0

	switch {
	case opp.Value > 100_000:
		score += 20
	case opp.Value > 50_000:
		score += 10
	}

	score += opp.Probability * 0.3
	score += stageScoreAdjust[opp.Stage]

	switch {
	case opp.DaysInStage > 60:
		score -= 20
	case opp.DaysInStage > 30:
		score -= 10
	}

	return OpportunityScore{
		OpportunityID: opp.ID,
		Score:         int(Clamp(score, 0, 100)),
		Urgency:       closeUrgency(opp.CloseDate, now),
	}
}

// closeUrgency classifies urgency from days until the close date. A missing
// or unparseable close date is Medium: unknown timing should not be quietly
// deprioritized.
func closeUrgency(closeDate string, now time.Time) Urgency {
	closed := ParseDate(closeDate, time.Time{})
	if closed.IsZero() {
		return UrgencyMedium
	}
	daysUntil := DaysBetween(closed, now)
	switch {
	case daysUntil < 7:
		return UrgencyHigh
	case daysUntil < 30:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
