// Package forecast derives a forward-looking cost growth model from
// historical spend samples.
package forecast

import (
	"github.com/vismaya/demandops/internal/model"
)

const (
	// defaultGrowthRate is assumed for accounts with a single data point:
	// modest organic growth rather than a measured trend.
	defaultGrowthRate = 0.05

	// Growth rates outside these bounds are treated as noise from a single
	// period delta and clamped.
	minGrowthRate = -0.5
	maxGrowthRate = 2.0

	forecastPeriodDays = 30
)

// Generate builds a Forecast from chronological cost samples (oldest first).
// It is deterministic, has no side effects, and never fails on well-formed
// input: degenerate histories produce a zero or default forecast instead.
// GeneratedAt is left for the caller to stamp so identical input always
// yields identical output.
func Generate(history []model.CostSample) model.Forecast {
	if len(history) == 0 {
		return model.Forecast{
			ForecastPeriodDays: forecastPeriodDays,
			TrendFactor:        1.0,
		}
	}

	recent := history[len(history)-1].Amount

	growthRate := defaultGrowthRate
	if len(history) > 1 {
		previous := history[len(history)-2].Amount
		if previous > 0 {
			growthRate = (recent - previous) / previous
		} else {
			growthRate = 0
		}
	}

	if growthRate < minGrowthRate {
		growthRate = minGrowthRate
	}
	if growthRate > maxGrowthRate {
		growthRate = maxGrowthRate
	}

	// Confidence rises with the amount of history, capped at 0.9.
	points := len(history)
	if points > 4 {
		points = 4
	}
	confidence := 0.5 + 0.1*float64(points)
	if confidence > 0.9 {
		confidence = 0.9
	}

	return model.Forecast{
		ForecastedAmount:   recent * (1 + growthRate),
		ConfidenceLevel:    confidence,
		BaseAmount:         recent,
		TrendFactor:        1 + growthRate,
		DailyGrowthRate:    growthRate / 30,
		ForecastPeriodDays: forecastPeriodDays,
	}
}
