package budgetalert_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vismaya/demandops/internal/budgetalert"
	"github.com/vismaya/demandops/internal/model"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newEvaluator() *budgetalert.Evaluator {
	return budgetalert.NewEvaluator(model.DefaultThresholdPolicy())
}

func thresholds80_100() model.BudgetThresholds {
	return model.BudgetThresholds{WarningLimit: 80, MaximumLimit: 100}
}

func TestEvaluateStatus_Precedence(t *testing.T) {
	e := newEvaluator()

	cases := []struct {
		spend  float64
		status model.BudgetStatus
	}{
		{105, model.BudgetStatusCritical},
		{100, model.BudgetStatusWarning}, // at the maximum, not over it
		{85, model.BudgetStatusWarning},
		{80, model.BudgetStatusCaution}, // at the warning limit, not over it
		{61, model.BudgetStatusCaution},
		{60, model.BudgetStatusCaution}, // caution boundary is inclusive
		{50, model.BudgetStatusHealthy},
		{0, model.BudgetStatusHealthy},
	}

	for _, tc := range cases {
		got := e.EvaluateStatus(tc.spend, thresholds80_100())
		assert.Equal(t, tc.status, got, "spend=%.2f", tc.spend)
	}
}

func TestCheck_CriticalAlert(t *testing.T) {
	e := newEvaluator()

	alerts, err := e.Check(testNow, 105, thresholds80_100())
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, model.AlertLevelCritical, alert.Level)
	assert.True(t, alert.ActionRequired)
	assert.Contains(t, alert.Message, "$105.00")
	assert.Contains(t, alert.Message, "$100.00")
	assert.Equal(t, testNow, alert.Timestamp)
}

func TestCheck_WarningCarriesOverageAndRemaining(t *testing.T) {
	e := newEvaluator()

	alerts, err := e.Check(testNow, 85, thresholds80_100())
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, model.AlertLevelWarning, alert.Level)
	assert.True(t, alert.ActionRequired)
	assert.Contains(t, alert.Message, "by $5.00")
	assert.Contains(t, alert.Message, "$15.00 remaining")
}

func TestCheck_CautionIsNotActionable(t *testing.T) {
	e := newEvaluator()

	alerts, err := e.Check(testNow, 61, thresholds80_100())
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, model.AlertLevelCaution, alert.Level)
	assert.False(t, alert.ActionRequired)
	assert.Contains(t, alert.Message, "76.2%")
}

func TestCheck_HealthyEmitsInfoAlert(t *testing.T) {
	e := newEvaluator()

	alerts, err := e.Check(testNow, 50, thresholds80_100())
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, model.AlertLevelInfo, alert.Level)
	assert.False(t, alert.ActionRequired)
	assert.Contains(t, alert.Message, "62.5%")
}

func TestCheck_Deterministic(t *testing.T) {
	e := newEvaluator()

	first, err := e.Check(testNow, 85, thresholds80_100())
	require.NoError(t, err)
	second, err := e.Check(testNow, 85, thresholds80_100())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCheck_RejectsMalformedThresholds(t *testing.T) {
	e := newEvaluator()

	_, err := e.Check(testNow, 50, model.BudgetThresholds{WarningLimit: 100, MaximumLimit: 80})
	assert.Error(t, err)

	_, err = e.Check(testNow, 50, model.BudgetThresholds{WarningLimit: -10, MaximumLimit: 100})
	assert.Error(t, err)
}

func TestRecommendations_OrderedBySeverity(t *testing.T) {
	e := newEvaluator()

	critical := e.Recommendations(105, thresholds80_100())
	require.NotEmpty(t, critical)
	assert.Contains(t, critical[0], "IMMEDIATE")

	warning := e.Recommendations(85, thresholds80_100())
	require.NotEmpty(t, warning)
	assert.Contains(t, warning[0], "cost drivers")

	healthy := e.Recommendations(50, thresholds80_100())
	require.NotEmpty(t, healthy)
	assert.Contains(t, healthy[0], "healthy")
}

func TestRecommendations_StableOrdering(t *testing.T) {
	e := newEvaluator()

	assert.Equal(t,
		e.Recommendations(85, thresholds80_100()),
		e.Recommendations(85, thresholds80_100()),
	)
}

func TestInsights(t *testing.T) {
	e := newEvaluator()

	ins := e.Insights(60, thresholds80_100())

	assert.Equal(t, model.BudgetStatusCaution, ins.Status)
	assert.InDelta(t, 75.0, ins.UtilizationPct, 0.0001)
	assert.InDelta(t, 60.0, ins.MaxUtilizationPct, 0.0001)
	assert.InDelta(t, 20.0, ins.RemainingToWarning, 0.0001)
	assert.InDelta(t, 40.0, ins.RemainingToMaximum, 0.0001)

	// Naive flat-rate estimate: 60/30 = $2/day.
	require.NotNil(t, ins.DaysUntilWarning)
	assert.Equal(t, 10, *ins.DaysUntilWarning)
	require.NotNil(t, ins.DaysUntilMaximum)
	assert.Equal(t, 20, *ins.DaysUntilMaximum)
}

func TestInsights_OverMaximum(t *testing.T) {
	e := newEvaluator()

	ins := e.Insights(120, thresholds80_100())

	assert.Equal(t, model.BudgetStatusCritical, ins.Status)
	assert.Zero(t, ins.RemainingToWarning)
	assert.Zero(t, ins.RemainingToMaximum)
	assert.Nil(t, ins.DaysUntilWarning)
	assert.Nil(t, ins.DaysUntilMaximum)
}
