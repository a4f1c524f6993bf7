// Package budgetalert classifies current spend against budget thresholds and
// produces leveled alerts with remediation suggestions. Evaluation is a pure
// function of spend and thresholds; no forecast is required.
package budgetalert

import (
	"fmt"
	"time"

	"github.com/vismaya/demandops/internal/model"
)

// Evaluator checks budget health. It is stateless and safe for concurrent
// use.
type Evaluator struct {
	policy model.ThresholdPolicy
}

// NewEvaluator creates an evaluator with the given classification policy.
func NewEvaluator(policy model.ThresholdPolicy) *Evaluator {
	return &Evaluator{policy: policy}
}

// EvaluateStatus classifies spend into the four-tier status set.
// Precedence, first match wins: CRITICAL when spend exceeds the maximum
// limit, WARNING when it exceeds the warning limit, CAUTION from the caution
// ratio upward, HEALTHY otherwise.
func (e *Evaluator) EvaluateStatus(currentSpend float64, thresholds model.BudgetThresholds) model.BudgetStatus {
	return e.policy.ClassifySpend(currentSpend, thresholds)
}

// Check evaluates spend against thresholds and returns the resulting alerts.
// A HEALTHY budget still yields one informational, non-actionable alert so
// callers always have something to report.
func (e *Evaluator) Check(now time.Time, currentSpend float64, thresholds model.BudgetThresholds) ([]model.BudgetAlert, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}

	var alert model.BudgetAlert
	switch e.EvaluateStatus(currentSpend, thresholds) {
	case model.BudgetStatusCritical:
		alert = model.BudgetAlert{
			Level: model.AlertLevelCritical,
			Message: fmt.Sprintf("CRITICAL: spending $%.2f exceeds the maximum limit of $%.2f. Immediate action required to prevent further charges.",
				currentSpend, thresholds.MaximumLimit),
			ActionRequired: true,
		}
	case model.BudgetStatusWarning:
		overage := currentSpend - thresholds.WarningLimit
		remaining := thresholds.MaximumLimit - currentSpend
		alert = model.BudgetAlert{
			Level: model.AlertLevelWarning,
			Message: fmt.Sprintf("WARNING: spending $%.2f exceeds the warning limit of $%.2f by $%.2f. Only $%.2f remaining before the hard limit.",
				currentSpend, thresholds.WarningLimit, overage, remaining),
			ActionRequired: true,
		}
	case model.BudgetStatusCaution:
		remaining := thresholds.WarningLimit - currentSpend
		alert = model.BudgetAlert{
			Level: model.AlertLevelCaution,
			Message: fmt.Sprintf("CAUTION: spending $%.2f is %.1f%% of the warning limit. $%.2f remaining before the warning threshold.",
				currentSpend, utilizationPct(currentSpend, thresholds.WarningLimit), remaining),
		}
	default:
		alert = model.BudgetAlert{
			Level: model.AlertLevelInfo,
			Message: fmt.Sprintf("Budget healthy: $%.2f of $%.2f (%.1f%% utilized)",
				currentSpend, thresholds.WarningLimit, utilizationPct(currentSpend, thresholds.WarningLimit)),
		}
	}

	alert.Timestamp = now.UTC()
	return []model.BudgetAlert{alert}, nil
}

// Recommendations returns the remediation list for the current status,
// ordered most urgent first.
func (e *Evaluator) Recommendations(currentSpend float64, thresholds model.BudgetThresholds) []string {
	switch e.EvaluateStatus(currentSpend, thresholds) {
	case model.BudgetStatusCritical:
		return []string{
			"IMMEDIATE: stop all non-essential services",
			"Review and terminate unused resources immediately",
			"Set up provider billing alerts as a backstop",
			"Configure budget alerts for future prevention",
		}
	case model.BudgetStatusWarning:
		return []string{
			"Review current usage and identify cost drivers",
			"Analyze spending patterns in the cost breakdown",
			"Look for optimization opportunities (reserved or spot capacity)",
			"Set up billing alarms",
			"Plan to reduce usage before reaching the maximum limit",
		}
	case model.BudgetStatusCaution:
		return []string{
			"Monitor spending closely as it approaches the warning limit",
			"Review the largest cost drivers",
			"Cache cost data to reduce metered API calls",
			"Set up proactive monitoring for budget thresholds",
		}
	default:
		return []string{
			"Budget is healthy - continue current usage patterns",
			"Consider setting up budget alerts for proactive monitoring",
			"Regular cost reviews help maintain cost efficiency",
		}
	}
}

// BreakdownInsights reports utilization and a naive days-until-limit estimate
// based on a flat spend/30 daily rate. It is a cheap complement to the
// timeline projector's compound projection.
type BreakdownInsights struct {
	Status              model.BudgetStatus `json:"status"`
	UtilizationPct      float64            `json:"utilization_pct"`
	MaxUtilizationPct   float64            `json:"max_utilization_pct"`
	RemainingToWarning  float64            `json:"remaining_to_warning"`
	RemainingToMaximum  float64            `json:"remaining_to_maximum"`
	DaysUntilWarning    *int               `json:"days_until_warning,omitempty"`
	DaysUntilMaximum    *int               `json:"days_until_maximum,omitempty"`
}

// Insights summarizes spend relative to both limits.
func (e *Evaluator) Insights(currentSpend float64, thresholds model.BudgetThresholds) BreakdownInsights {
	ins := BreakdownInsights{
		Status:             e.EvaluateStatus(currentSpend, thresholds),
		UtilizationPct:     utilizationPct(currentSpend, thresholds.WarningLimit),
		MaxUtilizationPct:  utilizationPct(currentSpend, thresholds.MaximumLimit),
		RemainingToWarning: clampFloor(thresholds.WarningLimit - currentSpend),
		RemainingToMaximum: clampFloor(thresholds.MaximumLimit - currentSpend),
	}

	if currentSpend > 0 {
		dailyRate := currentSpend / 30
		if ins.RemainingToWarning > 0 {
			d := int(ins.RemainingToWarning / dailyRate)
			ins.DaysUntilWarning = &d
		}
		if ins.RemainingToMaximum > 0 {
			d := int(ins.RemainingToMaximum / dailyRate)
			ins.DaysUntilMaximum = &d
		}
	}

	return ins
}

func utilizationPct(spend, limit float64) float64 {
	if limit == 0 {
		return 0
	}
	return (spend / limit) * 100
}

func clampFloor(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
