// Package timeline projects a cost forecast onto budget thresholds,
// answering when spend will cross the warning and critical limits and what
// daily rate keeps the budget safe.
package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/vismaya/demandops/internal/model"
)

// projectionMonths is the depth of the month-by-month outlook table.
const projectionMonths = 6

// Projector turns forecasts into budget timelines. The classification policy
// is shared with the alert evaluator so that threshold handling never drifts
// between the two.
type Projector struct {
	policy model.ThresholdPolicy
}

// NewProjector creates a projector with the given classification policy.
func NewProjector(policy model.ThresholdPolicy) *Projector {
	return &Projector{policy: policy}
}

// GenerateTimeline builds the day-level budget timeline for the current spend
// and forecast. It performs no I/O; numeric edge cases (zero growth, zero
// spend, breached limits) are handled by branching, and only malformed input
// produces an error.
func (p *Projector) GenerateTimeline(now time.Time, currentSpend float64, thresholds model.BudgetThresholds, fc model.Forecast) (*model.BudgetTimeline, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if currentSpend < 0 {
		return nil, fmt.Errorf("timeline: current spend must be non-negative, got %.2f", currentSpend)
	}

	tl := &model.BudgetTimeline{
		CurrentSpend:      currentSpend,
		Thresholds:        thresholds,
		DailyCostEstimate: dailyCostEstimate(now, currentSpend),
		DailyGrowthRate:   fc.DailyGrowthRate,
		MonthlyGrowthPct:  fc.MonthlyGrowthRatePct(),
		MonthlyProjection: fc.ForecastedAmount,
	}

	if days := p.daysToReach(currentSpend, thresholds.WarningLimit, fc.DailyGrowthRate); days != nil {
		date := now.AddDate(0, 0, *days)
		tl.DaysToWarning = days
		tl.WarningDate = &date
		tl.WillExceedWarning = *days <= p.policy.NearTermDays
	}

	if days := p.daysToReach(currentSpend, thresholds.MaximumLimit, fc.DailyGrowthRate); days != nil {
		date := now.AddDate(0, 0, *days)
		tl.DaysToCritical = days
		tl.CriticalDate = &date
		tl.WillExceedCritical = *days <= p.policy.NearTermDays
	}

	remaining := daysRemainingInMonth(now)
	safeDaily := (thresholds.WarningLimit - currentSpend) / float64(remaining)
	if safeDaily < 0 {
		// Headroom is already gone; surface that explicitly instead of
		// handing a negative rate to callers.
		tl.NegativeHeadroom = true
		safeDaily = 0
	}
	tl.SafeDailyBudget = safeDaily

	tl.RecommendedActions = p.recommendations(tl)

	return tl, nil
}

// daysToReach inverse-solves the compound growth model for the number of days
// until spend reaches limit. It returns nil when the limit is already
// breached, growth is flat or declining, spend is zero, or the solve falls
// outside the projection horizon. In all of those cases no future crossing
// date is meaningful.
func (p *Projector) daysToReach(currentSpend, limit, dailyGrowthRate float64) *int {
	if currentSpend <= 0 || currentSpend >= limit || dailyGrowthRate <= 0 {
		return nil
	}

	raw := math.Log(limit/currentSpend) / math.Log(1+dailyGrowthRate)
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
		return nil
	}

	days := int(math.Floor(raw))
	if days <= 0 || days > p.policy.HorizonDays {
		return nil
	}
	return &days
}

// recommendations selects the action list for a timeline, most urgent case
// first, with a growth-specific note appended for unusual trends.
func (p *Projector) recommendations(tl *model.BudgetTimeline) []string {
	var actions []string

	switch {
	case tl.WillExceedCritical:
		actions = append(actions,
			fmt.Sprintf("URGENT: spending will reach the critical limit ($%.2f) in %d days", tl.Thresholds.MaximumLimit, *tl.DaysToCritical),
			"Immediately reduce usage to prevent overage charges",
			"Set up provider billing alerts as a backstop",
			fmt.Sprintf("Reduce daily spending from $%.2f to $%.2f", tl.DailyCostEstimate, tl.SafeDailyBudget),
		)
	case tl.WillExceedWarning:
		actions = append(actions,
			fmt.Sprintf("WARNING: spending will reach the warning limit ($%.2f) in %d days", tl.Thresholds.WarningLimit, *tl.DaysToWarning),
			"Monitor usage closely and optimize high-cost services",
			fmt.Sprintf("Target daily budget: $%.2f (currently $%.2f)", tl.SafeDailyBudget, tl.DailyCostEstimate),
			"Review the largest cost drivers in the service breakdown",
		)
	case tl.DaysToWarning != nil && *tl.DaysToWarning <= p.policy.EarlyWarningDays:
		actions = append(actions,
			fmt.Sprintf("Approaching the warning limit in %d days at the current growth rate", *tl.DaysToWarning),
			"Consider optimizing usage patterns to extend the timeline",
			fmt.Sprintf("Safe daily budget: $%.2f", tl.SafeDailyBudget),
			"Set up proactive monitoring",
		)
	default:
		actions = append(actions,
			"Budget is healthy - no immediate concerns",
			fmt.Sprintf("Current daily cost: $%.2f", tl.DailyCostEstimate),
			fmt.Sprintf("Daily budget capacity: $%.2f", tl.SafeDailyBudget),
			"Costs are stable - continue current usage patterns",
		)
	}

	if tl.MonthlyGrowthPct > 20 {
		actions = append(actions, fmt.Sprintf("High growth rate (%.1f%%/month) - investigate usage spikes", tl.MonthlyGrowthPct))
	} else if tl.MonthlyGrowthPct < -10 {
		actions = append(actions, fmt.Sprintf("Declining usage (%.1f%%/month) - good cost optimization", tl.MonthlyGrowthPct))
	}

	return actions
}

// MonthlyProjections applies the forecast's trend factor month by month and
// classifies each projected amount against the thresholds.
func (p *Projector) MonthlyProjections(fc model.Forecast, thresholds model.BudgetThresholds) (*model.MonthlyProjections, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}

	out := &model.MonthlyProjections{
		CurrentMonth: fc.BaseAmount,
		NextMonth:    fc.ForecastedAmount,
		Months:       make([]model.MonthProjection, 0, projectionMonths),
	}

	for month := 1; month <= projectionMonths; month++ {
		projected := fc.BaseAmount * math.Pow(fc.TrendFactor, float64(month))
		out.Months = append(out.Months, model.MonthProjection{
			Month:         month,
			ProjectedCost: projected,
			Status:        p.policy.ClassifySpend(projected, thresholds),
			OverWarning:   projected > thresholds.WarningLimit,
			OverCritical:  projected > thresholds.MaximumLimit,
		})
	}

	return out, nil
}

// OptimizationTargets computes the reductions required to get spend back
// inside the thresholds and a sustainable daily rate for the rest of the
// period.
func (p *Projector) OptimizationTargets(now time.Time, currentSpend float64, thresholds model.BudgetThresholds) (*model.OptimizationTargets, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if currentSpend < 0 {
		return nil, fmt.Errorf("timeline: current spend must be non-negative, got %.2f", currentSpend)
	}

	targets := &model.OptimizationTargets{
		CurrentSpend:         currentSpend,
		Thresholds:           thresholds,
		ReductionForWarning:  math.Max(0, currentSpend-thresholds.WarningLimit),
		ReductionForCritical: math.Max(0, currentSpend-thresholds.MaximumLimit),
	}

	if currentSpend > thresholds.WarningLimit {
		overage := currentSpend - thresholds.WarningLimit
		targets.Opportunities = append(targets.Opportunities,
			fmt.Sprintf("Immediate reduction needed: $%.2f to reach the warning limit", overage),
			"Focus on the highest-cost services first",
			"Consider pausing non-essential services",
		)
	}

	remaining := daysRemainingInMonth(now)
	targets.SafeDailyRate = math.Max(0, (thresholds.WarningLimit-currentSpend)/float64(remaining))

	currentDaily := dailyCostEstimate(now, currentSpend)
	if currentDaily > targets.SafeDailyRate {
		targets.DailyReductionNeeded = currentDaily - targets.SafeDailyRate
		targets.Opportunities = append(targets.Opportunities,
			fmt.Sprintf("Reduce daily spending by $%.2f (from $%.2f to $%.2f)", targets.DailyReductionNeeded, currentDaily, targets.SafeDailyRate),
		)
	}

	return targets, nil
}

// dailyCostEstimate averages the period-to-date spend over the elapsed days.
func dailyCostEstimate(now time.Time, currentSpend float64) float64 {
	return currentSpend / float64(now.Day())
}

// daysRemainingInMonth returns the days left in the calendar month, never
// less than one so rate divisions stay defined.
func daysRemainingInMonth(now time.Time) int {
	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	remaining := daysInMonth - now.Day()
	if remaining < 1 {
		remaining = 1
	}
	return remaining
}
