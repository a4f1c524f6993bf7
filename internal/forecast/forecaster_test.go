package forecast_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vismaya/demandops/internal/forecast"
	"github.com/vismaya/demandops/internal/model"
)

func samples(amounts ...float64) []model.CostSample {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.CostSample, 0, len(amounts))
	for i, a := range amounts {
		out = append(out, model.CostSample{
			Amount:      a,
			Currency:    model.CurrencyUSD,
			PeriodStart: start.AddDate(0, i, 0),
			PeriodEnd:   start.AddDate(0, i+1, 0),
		})
	}
	return out
}

func TestGenerate_EmptyHistory(t *testing.T) {
	fc := forecast.Generate(nil)

	assert.Zero(t, fc.ForecastedAmount)
	assert.Zero(t, fc.ConfidenceLevel)
	assert.Zero(t, fc.BaseAmount)
	assert.Equal(t, 30, fc.ForecastPeriodDays)
}

func TestGenerate_SingleSampleDefaultGrowth(t *testing.T) {
	fc := forecast.Generate(samples(200))

	assert.InDelta(t, 210.0, fc.ForecastedAmount, 0.0001) // 200 * 1.05
	assert.InDelta(t, 1.05, fc.TrendFactor, 0.0001)
	assert.InDelta(t, 0.6, fc.ConfidenceLevel, 0.0001)
	assert.InDelta(t, 200.0, fc.BaseAmount, 0.0001)
}

func TestGenerate_GrowthRateFromLastTwoSamples(t *testing.T) {
	fc := forecast.Generate(samples(100, 110))

	assert.InDelta(t, 1.10, fc.TrendFactor, 0.0001)
	assert.InDelta(t, 121.0, fc.ForecastedAmount, 0.0001)
	assert.InDelta(t, 0.10/30, fc.DailyGrowthRate, 1e-9)
}

func TestGenerate_ZeroPreviousGuard(t *testing.T) {
	fc := forecast.Generate(samples(0, 50))

	assert.InDelta(t, 1.0, fc.TrendFactor, 0.0001)
	assert.InDelta(t, 50.0, fc.ForecastedAmount, 0.0001)
	assert.Zero(t, fc.DailyGrowthRate)
}

func TestGenerate_ClampUpper(t *testing.T) {
	// 100 -> 400 is +300%/month; clamp at +200%.
	fc := forecast.Generate(samples(100, 400))

	assert.InDelta(t, 3.0, fc.TrendFactor, 0.0001)
	assert.InDelta(t, 1200.0, fc.ForecastedAmount, 0.0001)
}

func TestGenerate_ClampLower(t *testing.T) {
	// 100 -> 40 is -60%/month; clamp at -50%.
	fc := forecast.Generate(samples(100, 40))

	assert.InDelta(t, 0.5, fc.TrendFactor, 0.0001)
	assert.InDelta(t, 20.0, fc.ForecastedAmount, 0.0001)
}

func TestGenerate_ConfidenceRisesWithHistory(t *testing.T) {
	cases := []struct {
		points     int
		confidence float64
	}{
		{1, 0.6},
		{2, 0.7},
		{3, 0.8},
		{4, 0.9},
		{6, 0.9}, // capped
	}

	for _, tc := range cases {
		amounts := make([]float64, tc.points)
		for i := range amounts {
			amounts[i] = 100 + float64(i)
		}
		fc := forecast.Generate(samples(amounts...))
		assert.InDelta(t, tc.confidence, fc.ConfidenceLevel, 0.0001, "points=%d", tc.points)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	history := samples(5000, 8000, 12000)

	first := forecast.Generate(history)
	second := forecast.Generate(history)

	assert.Equal(t, first, second)
}

func TestGenerate_FiveMonthHistory(t *testing.T) {
	fc := forecast.Generate(samples(5000, 8000, 12000, 18000, 23000))

	// growth = (23000-18000)/18000 ~= 0.2778, inside the clamp range.
	assert.InDelta(t, 1.2778, fc.TrendFactor, 0.0001)
	assert.InDelta(t, 29388.9, fc.ForecastedAmount, 0.1)
	assert.InDelta(t, 23000.0, fc.BaseAmount, 0.0001)
	assert.InDelta(t, 0.9, fc.ConfidenceLevel, 0.0001)
}

func TestAnalyzeTrend(t *testing.T) {
	cases := []struct {
		name      string
		history   []model.CostSample
		direction model.TrendDirection
	}{
		{"insufficient", samples(100), model.TrendInsufficientData},
		{"rapid growth", samples(100, 120), model.TrendIncreasingRapidly},
		{"growth", samples(100, 105), model.TrendIncreasing},
		{"stable", samples(100, 100), model.TrendStable},
		{"decline", samples(100, 95), model.TrendDecreasing},
		{"rapid decline", samples(100, 80), model.TrendDecreasingRapidly},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trend := forecast.AnalyzeTrend(tc.history)
			assert.Equal(t, tc.direction, trend.Direction)
		})
	}
}

func TestAnalyzeTrend_Values(t *testing.T) {
	trend := forecast.AnalyzeTrend(samples(18000, 23000))

	assert.InDelta(t, 27.78, trend.GrowthRatePct, 0.01)
	assert.InDelta(t, 23000.0, trend.CurrentCost, 0.0001)
	assert.InDelta(t, 18000.0, trend.PreviousCost, 0.0001)
	assert.Equal(t, 2, trend.DataPoints)
}
