package timeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vismaya/demandops/internal/model"
	"github.com/vismaya/demandops/internal/timeline"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newProjector() *timeline.Projector {
	return timeline.NewProjector(model.DefaultThresholdPolicy())
}

func thresholds(warning, maximum float64) model.BudgetThresholds {
	return model.BudgetThresholds{WarningLimit: warning, MaximumLimit: maximum}
}

func growthForecast(base, trendFactor float64) model.Forecast {
	growth := trendFactor - 1
	return model.Forecast{
		ForecastedAmount:   base * trendFactor,
		BaseAmount:         base,
		TrendFactor:        trendFactor,
		DailyGrowthRate:    growth / 30,
		ForecastPeriodDays: 30,
		ConfidenceLevel:    0.8,
	}
}

func TestGenerateTimeline_FlatGrowthHasNoThresholdDates(t *testing.T) {
	p := newProjector()

	for _, trend := range []float64{1.0, 0.8} {
		tl, err := p.GenerateTimeline(testNow, 50, thresholds(80, 100), growthForecast(50, trend))
		require.NoError(t, err)

		assert.Nil(t, tl.DaysToWarning, "trend=%v", trend)
		assert.Nil(t, tl.DaysToCritical, "trend=%v", trend)
		assert.Nil(t, tl.WarningDate, "trend=%v", trend)
		assert.False(t, tl.WillExceedWarning, "trend=%v", trend)
	}
}

func TestGenerateTimeline_CompoundInversion(t *testing.T) {
	p := newProjector()

	// 30% monthly growth -> daily rate 0.01; ln(80/50)/ln(1.01) ~= 47.2 days.
	fc := growthForecast(50, 1.3)
	tl, err := p.GenerateTimeline(testNow, 50, thresholds(80, 100), fc)
	require.NoError(t, err)

	require.NotNil(t, tl.DaysToWarning)
	assert.Equal(t, 47, *tl.DaysToWarning)
	require.NotNil(t, tl.DaysToCritical)
	assert.Equal(t, 69, *tl.DaysToCritical) // ln(2)/ln(1.01)

	require.NotNil(t, tl.WarningDate)
	assert.Equal(t, testNow.AddDate(0, 0, 47), *tl.WarningDate)

	assert.False(t, tl.WillExceedWarning)
	assert.False(t, tl.WillExceedCritical)
}

func TestGenerateTimeline_NearTermBreachFlags(t *testing.T) {
	p := newProjector()

	// 90% monthly growth -> daily 0.03; ln(80/50)/ln(1.03) ~= 15.9 days.
	fc := growthForecast(50, 1.9)
	tl, err := p.GenerateTimeline(testNow, 50, thresholds(80, 100), fc)
	require.NoError(t, err)

	require.NotNil(t, tl.DaysToWarning)
	assert.Equal(t, 15, *tl.DaysToWarning)
	assert.True(t, tl.WillExceedWarning)

	require.NotNil(t, tl.DaysToCritical)
	assert.Equal(t, 23, *tl.DaysToCritical) // ln(2)/ln(1.03)
	assert.True(t, tl.WillExceedCritical)

	require.NotEmpty(t, tl.RecommendedActions)
	assert.Contains(t, tl.RecommendedActions[0], "URGENT")
}

func TestGenerateTimeline_BeyondHorizonIsNoRisk(t *testing.T) {
	p := newProjector()

	// Growth so close to zero the crossing is hundreds of thousands of days
	// out; report no near-term risk instead of a far-future date.
	fc := growthForecast(50, 1.3)
	fc.DailyGrowthRate = 1e-6
	tl, err := p.GenerateTimeline(testNow, 50, thresholds(80, 100), fc)
	require.NoError(t, err)

	assert.Nil(t, tl.DaysToWarning)
	assert.Nil(t, tl.DaysToCritical)
}

func TestGenerateTimeline_AlreadyBreachedThresholds(t *testing.T) {
	p := newProjector()

	fc := growthForecast(85, 1.3)
	tl, err := p.GenerateTimeline(testNow, 85, thresholds(80, 100), fc)
	require.NoError(t, err)

	// Warning already breached: no future warning date is produced, only the
	// critical crossing is projected.
	assert.Nil(t, tl.DaysToWarning)
	assert.NotNil(t, tl.DaysToCritical)
	assert.True(t, tl.NegativeHeadroom)
	assert.Zero(t, tl.SafeDailyBudget)
}

func TestGenerateTimeline_ZeroSpend(t *testing.T) {
	p := newProjector()

	tl, err := p.GenerateTimeline(testNow, 0, thresholds(80, 100), growthForecast(0, 1.3))
	require.NoError(t, err)

	assert.Nil(t, tl.DaysToWarning)
	assert.Nil(t, tl.DaysToCritical)
	assert.False(t, tl.NegativeHeadroom)
}

func TestGenerateTimeline_SafeDailyBudget(t *testing.T) {
	p := newProjector()

	// March has 31 days; on the 10th there are 21 remaining.
	tl, err := p.GenerateTimeline(testNow, 38, thresholds(80, 100), growthForecast(38, 1.0))
	require.NoError(t, err)

	assert.InDelta(t, (80.0-38.0)/21.0, tl.SafeDailyBudget, 0.0001)
	assert.InDelta(t, 3.8, tl.DailyCostEstimate, 0.0001) // 38 over 10 elapsed days
	assert.False(t, tl.NegativeHeadroom)
}

func TestGenerateTimeline_HealthyRecommendations(t *testing.T) {
	p := newProjector()

	tl, err := p.GenerateTimeline(testNow, 20, thresholds(80, 100), growthForecast(20, 1.0))
	require.NoError(t, err)

	require.NotEmpty(t, tl.RecommendedActions)
	assert.Contains(t, tl.RecommendedActions[0], "healthy")
}

func TestGenerateTimeline_GrowthNotes(t *testing.T) {
	p := newProjector()

	tl, err := p.GenerateTimeline(testNow, 10, thresholds(8000, 10000), growthForecast(10, 1.3))
	require.NoError(t, err)
	assert.Contains(t, tl.RecommendedActions[len(tl.RecommendedActions)-1], "High growth rate")

	tl, err = p.GenerateTimeline(testNow, 10, thresholds(8000, 10000), growthForecast(10, 0.8))
	require.NoError(t, err)
	assert.Contains(t, tl.RecommendedActions[len(tl.RecommendedActions)-1], "Declining usage")
}

func TestGenerateTimeline_RejectsMalformedInput(t *testing.T) {
	p := newProjector()
	fc := growthForecast(50, 1.1)

	_, err := p.GenerateTimeline(testNow, 50, thresholds(100, 80), fc)
	assert.Error(t, err)

	_, err = p.GenerateTimeline(testNow, 50, thresholds(-5, 100), fc)
	assert.Error(t, err)

	_, err = p.GenerateTimeline(testNow, -1, thresholds(80, 100), fc)
	assert.Error(t, err)
}

func TestMonthlyProjections_CompoundGrowth(t *testing.T) {
	p := newProjector()

	out, err := p.MonthlyProjections(growthForecast(100, 1.1), thresholds(120, 140))
	require.NoError(t, err)
	require.Len(t, out.Months, 6)

	assert.InDelta(t, 133.10, out.Months[2].ProjectedCost, 0.01) // 100 * 1.1^3
	assert.Equal(t, 3, out.Months[2].Month)

	// 110.0 -> CAUTION (>= 0.75*120), 121.0 -> WARNING, 146.41 -> CRITICAL.
	assert.Equal(t, model.BudgetStatusCaution, out.Months[0].Status)
	assert.Equal(t, model.BudgetStatusWarning, out.Months[1].Status)
	assert.Equal(t, model.BudgetStatusCritical, out.Months[3].Status)

	assert.False(t, out.Months[0].OverWarning)
	assert.True(t, out.Months[1].OverWarning)
	assert.True(t, out.Months[3].OverCritical)
}

func TestOptimizationTargets_OverWarning(t *testing.T) {
	p := newProjector()

	targets, err := p.OptimizationTargets(testNow, 90, thresholds(80, 100))
	require.NoError(t, err)

	assert.InDelta(t, 10.0, targets.ReductionForWarning, 0.0001)
	assert.Zero(t, targets.ReductionForCritical)
	assert.Zero(t, targets.SafeDailyRate)
	require.NotEmpty(t, targets.Opportunities)
	assert.Contains(t, targets.Opportunities[0], "Immediate reduction needed")
}

func TestOptimizationTargets_UnderBudget(t *testing.T) {
	p := newProjector()

	targets, err := p.OptimizationTargets(testNow, 42, thresholds(80, 100))
	require.NoError(t, err)

	assert.Zero(t, targets.ReductionForWarning)
	assert.InDelta(t, (80.0-42.0)/21.0, targets.SafeDailyRate, 0.0001)
	// Daily estimate 4.2 exceeds the safe rate ~1.81, so a reduction is asked.
	assert.Greater(t, targets.DailyReductionNeeded, 0.0)
}
