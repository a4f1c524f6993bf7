package model

import (
	"time"
)

// CostSample is one period's total spend as reported by a cost provider.
// Samples are immutable; a forecast cycle consumes them read-only.
type CostSample struct {
	Amount      float64   `json:"amount" db:"amount"`
	Currency    Currency  `json:"currency" db:"currency"`
	PeriodStart time.Time `json:"period_start" db:"period_start"`
	PeriodEnd   time.Time `json:"period_end" db:"period_end"`
}

// ServiceCost is a cost breakdown entry for a single AWS service.
type ServiceCost struct {
	ServiceName string   `json:"service_name"`
	Amount      float64  `json:"amount"`
	Currency    Currency `json:"currency"`
}

// CostSummary provides a high-level view of current spend.
type CostSummary struct {
	TotalCost   float64       `json:"total_cost"`
	Currency    Currency      `json:"currency"`
	DateRange   DateRange     `json:"date_range"`
	ByService   []ServiceCost `json:"by_service"`
	DailyRate   float64       `json:"daily_rate"`
	RetrievedAt time.Time     `json:"retrieved_at"`
}

// TrendDirection classifies the shape of recent cost history.
type TrendDirection string

const (
	TrendInsufficientData  TrendDirection = "insufficient_data"
	TrendIncreasingRapidly TrendDirection = "increasing_rapidly"
	TrendIncreasing        TrendDirection = "increasing"
	TrendStable            TrendDirection = "stable"
	TrendDecreasing        TrendDirection = "decreasing"
	TrendDecreasingRapidly TrendDirection = "decreasing_rapidly"
)

// CostTrend summarizes month-over-month movement of cost history.
type CostTrend struct {
	Direction     TrendDirection `json:"direction"`
	GrowthRatePct float64        `json:"growth_rate_pct"`
	CurrentCost   float64        `json:"current_cost"`
	PreviousCost  float64        `json:"previous_cost"`
	DataPoints    int            `json:"data_points"`
}
