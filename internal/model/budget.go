package model

import (
	"fmt"
	"time"
)

// BudgetStatus represents the four-tier budget health classification.
type BudgetStatus string

const (
	BudgetStatusHealthy  BudgetStatus = "HEALTHY"
	BudgetStatusCaution  BudgetStatus = "CAUTION"
	BudgetStatusWarning  BudgetStatus = "WARNING"
	BudgetStatusCritical BudgetStatus = "CRITICAL"
)

// AlertLevel represents budget alert severity.
type AlertLevel string

const (
	AlertLevelInfo     AlertLevel = "INFO"
	AlertLevelCaution  AlertLevel = "CAUTION"
	AlertLevelWarning  AlertLevel = "WARNING"
	AlertLevelCritical AlertLevel = "CRITICAL"
)

// BudgetThresholds holds the two configured spend limits.
// Invariant: 0 <= WarningLimit <= MaximumLimit.
type BudgetThresholds struct {
	WarningLimit float64 `json:"warning_limit" db:"warning_limit"`
	MaximumLimit float64 `json:"maximum_limit" db:"maximum_limit"`
}

// Validate checks the threshold invariant and reports a descriptive error.
func (t BudgetThresholds) Validate() error {
	if t.WarningLimit < 0 {
		return fmt.Errorf("budget thresholds: warning limit must be non-negative, got %.2f", t.WarningLimit)
	}
	if t.MaximumLimit < t.WarningLimit {
		return fmt.Errorf("budget thresholds: maximum limit %.2f is below warning limit %.2f", t.MaximumLimit, t.WarningLimit)
	}
	return nil
}

// ThresholdPolicy holds the classification constants shared by the timeline
// projector and the alert evaluator so the two never drift apart.
type ThresholdPolicy struct {
	// CautionRatio is the fraction of the warning limit at which spend is
	// classified CAUTION.
	CautionRatio float64 `json:"caution_ratio"`
	// NearTermDays is the horizon inside which a projected breach demands
	// action.
	NearTermDays int `json:"near_term_days"`
	// EarlyWarningDays is the horizon for early-warning recommendations.
	EarlyWarningDays int `json:"early_warning_days"`
	// HorizonDays caps days-to-threshold projections; anything beyond is
	// reported as no near-term risk.
	HorizonDays int `json:"horizon_days"`
}

// DefaultThresholdPolicy returns the standard classification policy.
func DefaultThresholdPolicy() ThresholdPolicy {
	return ThresholdPolicy{
		CautionRatio:     0.75,
		NearTermDays:     30,
		EarlyWarningDays: 60,
		HorizonDays:      365,
	}
}

// ClassifySpend maps a spend amount against thresholds to a budget status.
// Precedence runs CRITICAL, WARNING, CAUTION, HEALTHY; first match wins.
func (p ThresholdPolicy) ClassifySpend(amount float64, thresholds BudgetThresholds) BudgetStatus {
	switch {
	case amount > thresholds.MaximumLimit:
		return BudgetStatusCritical
	case amount > thresholds.WarningLimit:
		return BudgetStatusWarning
	case amount >= p.CautionRatio*thresholds.WarningLimit:
		return BudgetStatusCaution
	default:
		return BudgetStatusHealthy
	}
}

// BudgetAlert is a single leveled alert produced by an evaluation.
type BudgetAlert struct {
	Level          AlertLevel `json:"level"`
	Message        string     `json:"message"`
	ActionRequired bool       `json:"action_required"`
	Timestamp      time.Time  `json:"timestamp"`
}

// BudgetSnapshot captures an evaluated budget state for persistence and the
// reporting API.
type BudgetSnapshot struct {
	BaseEntity
	CurrentSpend float64          `json:"current_spend" db:"current_spend"`
	Thresholds   BudgetThresholds `json:"thresholds"`
	Status       BudgetStatus     `json:"status" db:"status"`
	Currency     Currency         `json:"currency" db:"currency"`
	EvaluatedAt  time.Time        `json:"evaluated_at" db:"evaluated_at"`
}
