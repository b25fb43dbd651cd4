package analytics

import (
	"strings"
	"time"

	"github.com/sells-group/sales-analytics/internal/model"
)

// MonthForecast is the weighted forecast for one calendar month.
type MonthForecast struct {
	Month    string  `json:"month"` // "2006-01"
	Forecast float64 `json:"forecast"`
	Deals    int     `json:"deals"`
}

// ForecastReport is the probability-weighted revenue forecast over a set of
// opportunities.
type ForecastReport struct {
	ForecastTotal     float64         `json:"forecast_total"` // exact sum, no intermediate rounding
	RiskAdjustedTotal float64         `json:"risk_adjusted_total"`
	RiskFactor        float64         `json:"risk_factor"` // 0.0-0.4
	Confidence        string          `json:"confidence"`  // High, Medium, Low
	ConfidenceScore   int             `json:"confidence_score"`
	Monthly           []MonthForecast `json:"monthly"`
	Risks             []string        `json:"risks"`
}

// Forecast accumulates probability-weighted opportunity values into a total
// and monthly buckets over the next `months` calendar months from now
// (engine default when months <= 0). Closed Lost opportunities are excluded;
// opportunities with unparseable close dates land in the current month
// bucket rather than being dropped.
func (e *Engine) Forecast(opps []model.Opportunity, now time.Time, months int) ForecastReport {
	if months <= 0 {
		months = e.cfg.ForecastMonths
	}

	var included []model.Opportunity
	for _, o := range opps {
		if !excluded(o.Stage, e.cfg.ForecastExcludedStages) {
			included = append(included, o)
		}
	}

	if len(included) == 0 {
		return ForecastReport{
			Confidence: "Low",
			Monthly:    emptyMonths(now, months),
			Risks:      []string{},
		}
	}

	currentKey := monthKey(now, 0)
	var total float64
	buckets := map[string]float64{}
	for _, o := range included {
		weighted := o.Value * o.Probability / 100
		total += weighted

		key := currentKey
		if d := ParseDate(o.CloseDate, time.Time{}); !d.IsZero() {
			key = d.Format("2006-01")
		}
		buckets[key] += weighted
	}

	confScore := e.confidenceScore(included)
	risk := e.riskFactor(included)

	monthly := make([]MonthForecast, 0, months)
	for i := 0; i < months; i++ {
		key := monthKey(now, i)
		deals := 0
		for _, o := range included {
			if strings.HasPrefix(o.CloseDate, key) {
				deals++
			}
		}
		monthly = append(monthly, MonthForecast{
			Month:    key,
			Forecast: buckets[key],
			Deals:    deals,
		})
	}

	return ForecastReport{
		ForecastTotal:     total,
		RiskAdjustedTotal: total * (1 - risk),
		RiskFactor:        risk,
		Confidence:        confidenceLevel(confScore),
		ConfidenceScore:   confScore,
		Monthly:           monthly,
		Risks:             e.forecastRisks(included),
	}
}

// monthKey returns the year-month bucket key i months after now.
func monthKey(now time.Time, i int) string {
	return time.Date(now.Year(), now.Month()+time.Month(i), 1, 0, 0, 0, 0, now.Location()).Format("2006-01")
}

func emptyMonths(now time.Time, months int) []MonthForecast {
	monthly := make([]MonthForecast, 0, months)
	for i := 0; i < months; i++ {
		monthly = append(monthly, MonthForecast{Month: monthKey(now, i)})
	}
	return monthly
}

// confidenceScore composes pipeline size, advanced-stage share, and data
// completeness into a 0-100 value.
func (e *Engine) confidenceScore(opps []model.Opportunity) int {
	n := len(opps)

	var sizePts int
	switch {
	case n >= 20:
		sizePts = 30
	case n >= 10:
		sizePts = 20
	default:
		sizePts = 10
	}

	advanced := 0
	complete := 0
	for _, o := range opps {
		if o.Stage == model.StageProposal || o.Stage == model.StageNegotiation {
			advanced++
		}
		if o.Value > 0 && o.Probability > 0 && !ParseDate(o.CloseDate, time.Time{}).IsZero() {
			complete++
		}
	}

	var stagePts int
	switch share := float64(advanced) / float64(n); {
	case share >= 0.3:
		stagePts = 30
	case share >= 0.2:
		stagePts = 20
	default:
		stagePts = 10
	}

	completenessPts := int(float64(complete) / float64(n) * 40)

	return sizePts + stagePts + completenessPts
}

func confidenceLevel(score int) string {
	switch {
	case score >= 80:
		return "High"
	case score >= 60:
		return "Medium"
	default:
		return "Low"
	}
}

// riskFactor discounts the forecast for stale deals, low-probability deals,
// and single-deal concentration, capped at 0.4.
func (e *Engine) riskFactor(opps []model.Opportunity) float64 {
	n := float64(len(opps))

	var stale, lowProb float64
	var totalValue, maxValue float64
	for _, o := range opps {
		if o.DaysInStage > e.cfg.StaleDealDays {
			stale++
		}
		if o.Probability < 30 {
			lowProb++
		}
		totalValue += o.Value
		if o.Value > maxValue {
			maxValue = o.Value
		}
	}

	risk := 0.2*(stale/n) + 0.15*(lowProb/n)
	if totalValue > 0 && maxValue > totalValue*0.5 {
		risk += 0.15
	}
	return Clamp(risk, 0, 0.4)
}

// forecastRisks names concentration, staleness, and low-probability exposure.
func (e *Engine) forecastRisks(opps []model.Opportunity) []string {
	n := float64(len(opps))

	var stale, lowProb float64
	var totalValue, maxValue float64
	for _, o := range opps {
		if o.DaysInStage > e.cfg.StaleDealDays {
			stale++
		}
		if o.Probability < 30 {
			lowProb++
		}
		totalValue += o.Value
		if o.Value > maxValue {
			maxValue = o.Value
		}
	}

	risks := []string{}
	if totalValue > 0 && maxValue > totalValue*0.4 {
		risks = append(risks, "Forecast concentrated in a single large deal")
	}
	if stale/n > 0.3 {
		risks = append(risks, "Large share of the pipeline is stale")
	}
	if lowProb/n > 0.5 {
		risks = append(risks, "Majority of the pipeline has low win probability")
	}
	return take(risks, 3)
}
