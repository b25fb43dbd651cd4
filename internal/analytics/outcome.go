package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/sells-group/sales-analytics/internal/model"
)

// DealPrediction is the adjusted outcome forecast for a single open deal.
type DealPrediction struct {
	OpportunityID      string   `json:"opportunity_id"`
	WinProbability     float64  `json:"win_probability"` // 10-95, 1dp
	Outcome            string   `json:"outcome"`         // Win, At Risk
	RiskFactors        []string `json:"risk_factors"`
	SuccessFactors     []string `json:"success_factors"`
	NextAction         string   `json:"next_action"`
	PredictedCloseDate string   `json:"predicted_close_date"`
}

// WinLossReport summarizes historical outcomes and funnel conversion.
type WinLossReport struct {
	TotalDeals       int                `json:"total_deals"`
	Wins             int                `json:"wins"`
	Losses           int                `json:"losses"`
	WinRate          float64            `json:"win_rate"` // pct, 1dp
	WinFactors       []string           `json:"win_factors"`
	LossFactors      []string           `json:"loss_factors"`
	StageConversions map[string]float64 `json:"stage_conversions"` // pct, 1dp
}

// stageProbabilityFactor is the multiplicative stage adjustment applied to
// the stated probability.
var stageProbabilityFactor = map[model.Stage]float64{
	model.StageProspecting:   0.8,
	model.StageQualification: 0.9,
	model.StageProposal:      1.1,
	model.StageNegotiation:   1.2,
}

var stageNextAction = map[model.Stage]string{
	model.StageProspecting:   "Qualify budget and decision authority",
	model.StageQualification: "Confirm decision criteria and timeline",
	model.StageProposal:      "Follow up on proposal feedback",
	model.StageNegotiation:   "Finalize terms and agree a close plan",
}

// PredictDealOutcome adjusts an opportunity's stated probability for stage,
// staleness, and deal size, clamped to [10, 95]: no open deal is ever called
// certain in either direction.
func (e *Engine) PredictDealOutcome(opp model.Opportunity, now time.Time) DealPrediction {
	p := opp.Probability

	factor, ok := stageProbabilityFactor[opp.Stage]
	if !ok {
		factor = 1.0
	}
	p *= factor

	switch {
	case opp.DaysInStage > 60:
		p *= 0.7
	case opp.DaysInStage > 30:
		p *= 0.9
	}

	if opp.Value > 100_000 {
		p *= 0.9
	}

	p = Clamp(p, 10, 95)

	outcome := "At Risk"
	if p > 50 {
		outcome = "Win"
	}

	action, ok := stageNextAction[opp.Stage]
	if !ok {
		action = "Review the account plan"
	}

	return DealPrediction{
		OpportunityID:      opp.ID,
		WinProbability:     round1(p),
		Outcome:            outcome,
		RiskFactors:        dealRiskFactors(opp),
		SuccessFactors:     dealSuccessFactors(opp),
		NextAction:         action,
		PredictedCloseDate: predictedCloseDate(opp),
	}
}

// dealRiskFactors attaches fixed strings for staleness, deal size, and low
// stated probability.
func dealRiskFactors(opp model.Opportunity) []string {
	factors := []string{}
	switch {
	case opp.DaysInStage > 60:
		factors = append(factors, "Deal stalled for over 60 days")
	case opp.DaysInStage > 30:
		factors = append(factors, "Momentum slowing in the current stage")
	}
	if opp.Value > 100_000 {
		factors = append(factors, "Large deal size extends approval cycles")
	}
	if opp.Probability < 30 {
		factors = append(factors, "Low stated win probability")
	}
	return factors
}

func dealSuccessFactors(opp model.Opportunity) []string {
	factors := []string{}
	if opp.Stage == model.StageProposal || opp.Stage == model.StageNegotiation {
		factors = append(factors, "Late-stage momentum")
	}
	if opp.Probability > 70 {
		factors = append(factors, "High stated win probability")
	}
	if opp.DaysInStage <= 14 {
		factors = append(factors, "Recent stage progression")
	}
	return factors
}

// predictedCloseDate pushes the close date out 30 days when the deal has
// stalled; an unparseable date passes through unchanged.
func predictedCloseDate(opp model.Opportunity) string {
	if opp.DaysInStage <= 45 {
		return opp.CloseDate
	}
	d := ParseDate(opp.CloseDate, time.Time{})
	if d.IsZero() {
		return opp.CloseDate
	}
	return d.AddDate(0, 0, 30).Format("2006-01-02")
}

// PredictDeals predicts every open opportunity (closed stages excluded) and
// returns them sorted by descending win probability. The sort is stable, so
// ties keep input order.
func (e *Engine) PredictDeals(opps []model.Opportunity, now time.Time) []DealPrediction {
	predictions := []DealPrediction{}
	for _, o := range opps {
		if excluded(o.Stage, e.cfg.PredictExcludedStages) {
			continue
		}
		predictions = append(predictions, e.PredictDealOutcome(o, now))
	}
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].WinProbability > predictions[j].WinProbability
	})
	return predictions
}

// AnalyzeWinLoss extracts the overall win rate, win/loss factor templates,
// and funnel conversion percentages from historical opportunities. Stage
// conversions walk the canonical funnel order regardless of which stages
// occur; pairs with no deals at the current stage are omitted.
func (e *Engine) AnalyzeWinLoss(opps []model.Opportunity) WinLossReport {
	report := WinLossReport{
		WinFactors:       []string{},
		LossFactors:      []string{},
		StageConversions: map[string]float64{},
	}
	if len(opps) == 0 {
		return report
	}

	var wins, losses []model.Opportunity
	counts := map[model.Stage]int{}
	for _, o := range opps {
		counts[o.Stage]++
		switch o.Stage {
		case model.StageClosedWon:
			wins = append(wins, o)
		case model.StageClosedLost:
			losses = append(losses, o)
		}
	}

	report.TotalDeals = len(opps)
	report.Wins = len(wins)
	report.Losses = len(losses)
	report.WinRate = round1(float64(len(wins)) / float64(len(opps)) * 100)
	report.WinFactors = take(winFactors(wins), 3)
	report.LossFactors = take(lossFactors(losses), 3)

	for i := 0; i < len(model.FunnelOrder)-1; i++ {
		cur, next := model.FunnelOrder[i], model.FunnelOrder[i+1]
		if counts[cur] == 0 {
			continue
		}
		key := fmt.Sprintf("%s to %s", cur, next)
		report.StageConversions[key] = round1(float64(counts[next]) / float64(counts[cur]) * 100)
	}

	return report
}

func winFactors(wins []model.Opportunity) []string {
	if len(wins) == 0 {
		return []string{}
	}

	var total float64
	fast := 0
	for _, o := range wins {
		total += o.Value
		if o.DaysInStage <= 30 {
			fast++
		}
	}

	factors := []string{
		fmt.Sprintf("Average winning deal size of $%.0f", total/float64(len(wins))),
	}
	if line := preferredProductLine(wins); line != "" {
		factors = append(factors, fmt.Sprintf("%s is the strongest product line", line))
	}
	factors = append(factors, fmt.Sprintf("%.0f%% of wins moved through stages quickly", float64(fast)/float64(len(wins))*100))
	return factors
}

func lossFactors(losses []model.Opportunity) []string {
	if len(losses) == 0 {
		return []string{}
	}

	var total float64
	stalled := 0
	for _, o := range losses {
		total += o.Value
		if o.DaysInStage > 45 {
			stalled++
		}
	}

	return []string{
		fmt.Sprintf("%.0f%% of losses stalled before closing", float64(stalled)/float64(len(losses))*100),
		fmt.Sprintf("Average losing deal size of $%.0f", total/float64(len(losses))),
		"Price competition cited in lost deals",
	}
}
