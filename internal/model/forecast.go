package model

import (
	"time"
)

// Forecast is a forward-looking growth model derived from historical cost
// samples. A forecast is never mutated after construction; each forecasting
// cycle supersedes the previous one.
type Forecast struct {
	ForecastedAmount float64 `json:"forecasted_amount" db:"forecasted_amount"`
	ConfidenceLevel  float64 `json:"confidence_level" db:"confidence_level"`
	BaseAmount       float64 `json:"base_amount" db:"base_amount"`
	// TrendFactor is the multiplicative monthly growth, e.g. 1.05 = +5%/month.
	TrendFactor float64 `json:"trend_factor" db:"trend_factor"`
	// DailyGrowthRate is the monthly growth rate spread linearly over 30 days.
	DailyGrowthRate    float64   `json:"daily_growth_rate" db:"daily_growth_rate"`
	ForecastPeriodDays int       `json:"forecast_period_days" db:"forecast_period_days"`
	GeneratedAt        time.Time `json:"generated_at" db:"generated_at"`
}

// ForecastRecord is a persisted forecast together with the timeline that was
// projected from it.
type ForecastRecord struct {
	BaseEntity
	Forecast Forecast        `json:"forecast"`
	Timeline *BudgetTimeline `json:"timeline,omitempty"`
}

// MonthlyGrowthRatePct returns the growth rate as a percentage per month.
func (f Forecast) MonthlyGrowthRatePct() float64 {
	return (f.TrendFactor - 1) * 100
}

// ProjectedOverspend returns how far the forecast exceeds the base amount.
func (f Forecast) ProjectedOverspend() float64 {
	if over := f.ForecastedAmount - f.BaseAmount; over > 0 {
		return over
	}
	return 0
}
