package forecast

import (
	"github.com/vismaya/demandops/internal/model"
)

// AnalyzeTrend classifies the month-over-month movement of cost history.
// Two samples are required; anything less reports insufficient data.
func AnalyzeTrend(history []model.CostSample) model.CostTrend {
	if len(history) < 2 {
		return model.CostTrend{
			Direction:  model.TrendInsufficientData,
			DataPoints: len(history),
		}
	}

	recent := history[len(history)-1].Amount
	previous := history[len(history)-2].Amount

	var growthPct float64
	if previous > 0 {
		growthPct = ((recent - previous) / previous) * 100
	}

	var direction model.TrendDirection
	switch {
	case growthPct > 10:
		direction = model.TrendIncreasingRapidly
	case growthPct > 0:
		direction = model.TrendIncreasing
	case growthPct < -10:
		direction = model.TrendDecreasingRapidly
	case growthPct < 0:
		direction = model.TrendDecreasing
	default:
		direction = model.TrendStable
	}

	return model.CostTrend{
		Direction:     direction,
		GrowthRatePct: growthPct,
		CurrentCost:   recent,
		PreviousCost:  previous,
		DataPoints:    len(history),
	}
}
