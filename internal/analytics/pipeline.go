package analytics

import (
	"fmt"

	"github.com/sells-group/sales-analytics/internal/model"
)

// StageMetrics holds the count and value share of one stage.
type StageMetrics struct {
	Count    int     `json:"count"`
	Value    float64 `json:"value"`
	CountPct float64 `json:"count_pct"` // 1dp
	ValuePct float64 `json:"value_pct"` // 1dp
}

// PipelineReport is the health and velocity assessment of an opportunity set.
type PipelineReport struct {
	TotalCount        int                     `json:"total_count"`
	TotalValue        float64                 `json:"total_value"`
	StageDistribution map[string]StageMetrics `json:"stage_distribution"`
	HealthScore       int                     `json:"health_score"`   // 0-100
	VelocityScore     int                     `json:"velocity_score"` // 0-100
	Bottlenecks       []string                `json:"bottlenecks"`
	Recommendations   []string                `json:"recommendations"`
	ConversionRates   map[string]float64      `json:"conversion_rates"` // stage share of total, pct, 1dp
}

// AnalyzePipeline computes stage distribution, a four-component health score,
// a velocity score, bottlenecks, and per-stage share percentages over the
// given opportunities. Stages in the configured exclusion set (Closed Lost by
// default) are dropped before analysis.
func (e *Engine) AnalyzePipeline(opps []model.Opportunity) PipelineReport {
	var open []model.Opportunity
	for _, o := range opps {
		if !excluded(o.Stage, e.cfg.PipelineExcludedStages) {
			open = append(open, o)
		}
	}

	if len(open) == 0 {
		return PipelineReport{
			StageDistribution: map[string]StageMetrics{},
			Bottlenecks:       []string{},
			Recommendations:   []string{"Build pipeline before analyzing its health"},
			ConversionRates:   map[string]float64{},
		}
	}

	counts := map[model.Stage]int{}
	values := map[model.Stage]float64{}
	var totalValue float64
	var totalDays int
	for _, o := range open {
		counts[o.Stage]++
		values[o.Stage] += o.Value
		totalValue += o.Value
		totalDays += o.DaysInStage
	}
	total := len(open)
	meanDays := float64(totalDays) / float64(total)

	distribution := map[string]StageMetrics{}
	conversions := map[string]float64{}
	for stage, count := range counts {
		m := StageMetrics{
			Count:    count,
			Value:    values[stage],
			CountPct: round1(float64(count) / float64(total) * 100),
		}
		if totalValue > 0 {
			m.ValuePct = round1(values[stage] / totalValue * 100)
		}
		distribution[string(stage)] = m
		conversions[string(stage)] = m.CountPct
	}

	health := e.healthScore(open, counts, totalValue, meanDays)
	velocity := velocityScore(meanDays)
	bottlenecks := e.bottlenecks(open, counts)

	return PipelineReport{
		TotalCount:        total,
		TotalValue:        totalValue,
		StageDistribution: distribution,
		HealthScore:       health,
		VelocityScore:     velocity,
		Bottlenecks:       bottlenecks,
		Recommendations:   e.pipelineRecommendations(health, velocity, bottlenecks),
		ConversionRates:   conversions,
	}
}

// healthScore sums four weighted components: stage mix (30), pipeline size
// (25), average deal size (20), and velocity (25).
func (e *Engine) healthScore(open []model.Opportunity, counts map[model.Stage]int, totalValue, meanDays float64) int {
	total := len(open)

	// Stage mix: full credit when early-stage share sits in [0.3, 0.6],
	// linear decay with distance beyond the band, zero at the farthest
	// possible distance from the 0.45 midpoint.
	early := float64(counts[model.StageProspecting]+counts[model.StageQualification]) / float64(total)
	dist := early - 0.45
	if dist < 0 {
		dist = -dist
	}
	mix := 30.0
	if dist > 0.15 {
		mix = 30 * Clamp(1-(dist-0.15)/0.45, 0, 1)
	}

	var size float64
	switch {
	case total >= 20:
		size = 25
	case total >= 10:
		size = 20
	default:
		size = float64(total)
	}

	avgValue := totalValue / float64(total)
	var deal float64
	switch {
	case avgValue >= 50_000:
		deal = 20
	case avgValue >= 25_000:
		deal = 15
	default:
		deal = 10
	}

	var velocity float64
	switch {
	case meanDays <= 30:
		velocity = 25
	case meanDays <= 45:
		velocity = 20
	default:
		velocity = 10
	}

	return int(Clamp(mix+size+deal+velocity, 0, 100))
}

// velocityScore is a step function of mean days in stage, independent of the
// health score's velocity component.
func velocityScore(meanDays float64) int {
	switch {
	case meanDays <= 20:
		return 90
	case meanDays <= 30:
		return 80
	case meanDays <= 45:
		return 60
	case meanDays <= 60:
		return 40
	default:
		return 20
	}
}

// bottlenecks flags stage concentration, stale-deal share, and weak
// Qualification-to-Proposal conversion, in detection order.
func (e *Engine) bottlenecks(open []model.Opportunity, counts map[model.Stage]int) []string {
	total := len(open)
	found := []string{}

	for _, stage := range model.FunnelOrder {
		share := float64(counts[stage]) / float64(total)
		if share > 0.4 {
			found = append(found, fmt.Sprintf("%.0f%% of open deals sit in %s", share*100, stage))
		}
	}

	stale := 0
	for _, o := range open {
		if o.DaysInStage > e.cfg.StaleDealDays {
			stale++
		}
	}
	if staleShare := float64(stale) / float64(total); staleShare > 0.3 {
		found = append(found, fmt.Sprintf("%.0f%% of open deals are stale (over %d days in stage)", staleShare*100, e.cfg.StaleDealDays))
	}

	if qual := counts[model.StageQualification]; qual > 0 {
		if ratio := float64(counts[model.StageProposal]) / float64(qual); ratio < 0.3 {
			found = append(found, "Low conversion from Qualification to Proposal")
		}
	}

	return take(found, e.cfg.MaxBottlenecks)
}

func (e *Engine) pipelineRecommendations(health, velocity int, bottlenecks []string) []string {
	recs := []string{}
	if health < 60 {
		recs = append(recs, "Rebalance the pipeline across funnel stages")
	}
	if velocity < 60 {
		recs = append(recs, "Tighten stage exit criteria to speed deals up")
	}
	for _, b := range bottlenecks {
		if containsFold(b, "stale") {
			recs = append(recs, "Re-engage or disqualify stale deals")
			break
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "Pipeline is healthy; maintain the current cadence")
	}
	return take(recs, 3)
}
