package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/sells-group/sales-analytics/internal/model"
)

// BuyingPatternReport describes an account's purchasing behavior derived
// from its opportunity history and usage telemetry.
type BuyingPatternReport struct {
	AccountID       string   `json:"account_id"`
	Patterns        []string `json:"patterns"`
	Preferences     []string `json:"preferences"`
	Seasonality     string   `json:"seasonality"`
	VolumeTrend     string   `json:"volume_trend"`
	Recommendations []string `json:"recommendations"`
}

// AnalyzeBuyingPatterns derives product preferences, seasonality, and volume
// trend for one account. With neither opportunities nor telemetry it returns
// the documented no-data default.
func (e *Engine) AnalyzeBuyingPatterns(account model.Account, opps []model.Opportunity, telemetry []model.Telemetry) BuyingPatternReport {
	if len(opps) == 0 && len(telemetry) == 0 {
		return BuyingPatternReport{
			AccountID:       account.ID,
			Patterns:        []string{},
			Preferences:     []string{},
			Seasonality:     "Unknown",
			VolumeTrend:     "Unknown",
			Recommendations: []string{"Gather more transaction data"},
		}
	}

	patterns := []string{}
	preferences := []string{}

	preferred := preferredProductLine(opps)
	if preferred != "" {
		preferences = append(preferences, fmt.Sprintf("Prefers %s", preferred))
	}

	if avg := averageDealSize(opps); avg > 0 {
		patterns = append(patterns, fmt.Sprintf("Average deal size of $%.0f", avg))
	}

	if peak := peakCloseMonth(opps); peak != "" {
		patterns = append(patterns, fmt.Sprintf("Most deals close in %s", peak))
	}

	report := BuyingPatternReport{
		AccountID:   account.ID,
		Patterns:    patterns,
		Preferences: preferences,
		Seasonality: seasonality(opps),
		VolumeTrend: volumeTrend(telemetry),
	}
	report.Recommendations = e.buyingRecommendations(report, preferred)
	return report
}

// preferredProductLine returns the product line with the most opportunities.
// Ties break to the line seen first in input order.
func preferredProductLine(opps []model.Opportunity) string {
	counts := map[string]int{}
	var order []string
	for _, o := range opps {
		if o.ProductLine == "" {
			continue
		}
		if _, seen := counts[o.ProductLine]; !seen {
			order = append(order, o.ProductLine)
		}
		counts[o.ProductLine]++
	}

	best := ""
	bestCount := 0
	for _, line := range order {
		if counts[line] > bestCount {
			best = line
			bestCount = counts[line]
		}
	}
	return best
}

func averageDealSize(opps []model.Opportunity) float64 {
	var total float64
	n := 0
	for _, o := range opps {
		if o.Value > 0 {
			total += o.Value
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// peakCloseMonth returns the 3-letter name of the calendar month with the
// most opportunity close dates, or "" if no date parses.
func peakCloseMonth(opps []model.Opportunity) string {
	counts := map[time.Month]int{}
	for _, o := range opps {
		d := ParseDate(o.CloseDate, time.Time{})
		if !d.IsZero() {
			counts[d.Month()]++
		}
	}
	if len(counts) == 0 {
		return ""
	}

	best := time.January
	bestCount := 0
	for m := time.January; m <= time.December; m++ {
		if counts[m] > bestCount {
			best = m
			bestCount = counts[m]
		}
	}
	return best.String()[:3]
}

// seasonality classifies the month with the highest summed opportunity value.
func seasonality(opps []model.Opportunity) string {
	values := map[time.Month]float64{}
	for _, o := range opps {
		d := ParseDate(o.CloseDate, time.Time{})
		if !d.IsZero() {
			values[d.Month()] += o.Value
		}
	}
	if len(values) == 0 {
		return "Unknown"
	}

	best := time.January
	bestValue := -1.0
	for m := time.January; m <= time.December; m++ {
		if v, ok := values[m]; ok && v > bestValue {
			best = m
			bestValue = v
		}
	}

	switch best {
	case time.December, time.January, time.February:
		return "Winter peak"
	case time.June, time.July, time.August:
		return "Summer peak"
	default:
		return "Moderate seasonality"
	}
}

// volumeTrend compares the mean of the last five telemetry points against
// the first five, sorted by date. Fewer than five points is not enough
// signal to call a direction.
func volumeTrend(telemetry []model.Telemetry) string {
	if len(telemetry) < 5 {
		return "Insufficient data"
	}

	sorted := make([]model.Telemetry, len(telemetry))
	copy(sorted, telemetry)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ParseDate(sorted[i].Date, time.Time{}).Before(ParseDate(sorted[j].Date, time.Time{}))
	})

	first := meanVolume(sorted[:5])
	last := meanVolume(sorted[len(sorted)-5:])

	switch {
	case first == 0 && last > 0:
		return "Increasing"
	case first == 0:
		return "Stable"
	case last > first*1.1:
		return "Increasing"
	case last < first*0.9:
		return "Decreasing"
	default:
		return "Stable"
	}
}

func meanVolume(points []model.Telemetry) float64 {
	var total float64
	for _, p := range points {
		total += p.Volume
	}
	return total / float64(len(points))
}

func (e *Engine) buyingRecommendations(report BuyingPatternReport, preferred string) []string {
	recs := []string{
		"Time renewal outreach ahead of the peak buying month",
		"Bundle frequently purchased product lines",
		"Track usage volume monthly for demand shifts",
	}
	if len(report.Preferences) > 0 && preferred != "" {
		recs = append(recs, fmt.Sprintf("Lead with %s in upcoming proposals", preferred))
	}
	if len(report.Patterns) > 0 {
		recs = append(recs, "Use historical deal sizing to anchor pricing")
	}
	return take(recs, e.cfg.MaxRecommendations)
}
