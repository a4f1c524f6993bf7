package model

import (
	"time"
)

// BudgetTimeline is the day-level projection of spend against thresholds.
// Nil days-to-threshold means the limit is not reached by extrapolation:
// growth is non-positive, the limit is already breached, or the solve falls
// outside the projection horizon.
type BudgetTimeline struct {
	CurrentSpend      float64          `json:"current_spend"`
	Thresholds        BudgetThresholds `json:"thresholds"`
	DailyCostEstimate float64          `json:"daily_cost_estimate"`
	DailyGrowthRate   float64          `json:"daily_growth_rate"`
	MonthlyGrowthPct  float64          `json:"monthly_growth_pct"`

	DaysToWarning  *int       `json:"days_to_warning,omitempty"`
	DaysToCritical *int       `json:"days_to_critical,omitempty"`
	WarningDate    *time.Time `json:"warning_date,omitempty"`
	CriticalDate   *time.Time `json:"critical_date,omitempty"`

	WillExceedWarning  bool `json:"will_exceed_warning"`
	WillExceedCritical bool `json:"will_exceed_critical"`

	// SafeDailyBudget is the daily rate that keeps spend under the warning
	// limit for the rest of the period, floored at zero. NegativeHeadroom is
	// set when the unfloored value was negative (spend already past the
	// warning limit).
	SafeDailyBudget  float64 `json:"safe_daily_budget"`
	NegativeHeadroom bool    `json:"negative_headroom"`

	MonthlyProjection  float64  `json:"monthly_projection"`
	RecommendedActions []string `json:"recommended_actions"`
}

// MonthProjection is one row of the six-month projection table.
type MonthProjection struct {
	Month         int          `json:"month"`
	ProjectedCost float64      `json:"projected_cost"`
	Status        BudgetStatus `json:"status"`
	OverWarning   bool         `json:"over_warning"`
	OverCritical  bool         `json:"over_critical"`
}

// MonthlyProjections carries the multi-month outlook.
type MonthlyProjections struct {
	CurrentMonth float64           `json:"current_month"`
	NextMonth    float64           `json:"next_month"`
	Months       []MonthProjection `json:"months"`
}

// OptimizationTargets states the reductions needed to get back inside budget.
type OptimizationTargets struct {
	CurrentSpend         float64          `json:"current_spend"`
	Thresholds           BudgetThresholds `json:"thresholds"`
	ReductionForWarning  float64          `json:"reduction_needed_for_warning"`
	ReductionForCritical float64          `json:"reduction_needed_for_critical"`
	SafeDailyRate        float64          `json:"safe_daily_spending_rate"`
	DailyReductionNeeded float64          `json:"daily_reduction_needed"`
	Opportunities        []string         `json:"optimization_opportunities"`
}
