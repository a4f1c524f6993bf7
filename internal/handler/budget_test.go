package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vismaya/demandops/internal/budgetalert"
	"github.com/vismaya/demandops/internal/handler"
	"github.com/vismaya/demandops/internal/model"
	"github.com/vismaya/demandops/internal/notification"
	"github.com/vismaya/demandops/internal/policy"
	"github.com/vismaya/demandops/internal/provider/demo"
	"github.com/vismaya/demandops/internal/timeline"
)

func testThresholds() model.BudgetThresholds {
	return model.BudgetThresholds{WarningLimit: 15000, MaximumLimit: 20000}
}

func newBudgetHandler(t *testing.T, policies *policy.Set) *handler.BudgetHandler {
	t.Helper()
	defaults := model.DefaultThresholdPolicy()
	return handler.NewBudgetHandler(
		demo.NewProvider(),
		timeline.NewProjector(defaults),
		budgetalert.NewEvaluator(defaults),
		testThresholds(),
		policies,
		nil,
		nil,
	)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestBudgetStatus(t *testing.T) {
	h := newBudgetHandler(t, nil)

	w := httptest.NewRecorder()
	h.GetStatus(w, httptest.NewRequest(http.MethodGet, "/budget/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)

	// Demo spend 12500 against a 15000 warning limit sits in caution.
	assert.Equal(t, 12500.0, body["current_spend"])
	assert.Equal(t, "CAUTION", body["status"])
	assert.NotEmpty(t, body["recommendations"])
}

func TestBudgetStatus_TeamPolicyOverride(t *testing.T) {
	policies := &policy.Set{
		Defaults: testThresholds(),
		Teams: map[string]model.BudgetThresholds{
			"platform": {WarningLimit: 10000, MaximumLimit: 12000},
		},
	}
	h := newBudgetHandler(t, policies)

	w := httptest.NewRecorder()
	h.GetStatus(w, httptest.NewRequest(http.MethodGet, "/budget/status?team=platform", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)

	// 12500 exceeds the platform maximum of 12000.
	assert.Equal(t, "CRITICAL", body["status"])
}

func TestBudgetTimeline(t *testing.T) {
	h := newBudgetHandler(t, nil)

	w := httptest.NewRecorder()
	h.GetTimeline(w, httptest.NewRequest(http.MethodGet, "/budget/timeline", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var tl model.BudgetTimeline
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tl))
	assert.Equal(t, 12500.0, tl.CurrentSpend)
	assert.Greater(t, tl.DailyGrowthRate, 0.0)
	assert.NotEmpty(t, tl.RecommendedActions)
}

func TestBudgetAlerts_Live(t *testing.T) {
	h := newBudgetHandler(t, nil)

	w := httptest.NewRecorder()
	h.GetAlerts(w, httptest.NewRequest(http.MethodGet, "/budget/alerts", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "live", body["source"])

	alerts, ok := body["alerts"].([]interface{})
	require.True(t, ok)
	require.Len(t, alerts, 1)
	first := alerts[0].(map[string]interface{})
	assert.Equal(t, "CAUTION", first["level"])
}

func TestBudgetProjections(t *testing.T) {
	h := newBudgetHandler(t, nil)

	w := httptest.NewRecorder()
	h.GetProjections(w, httptest.NewRequest(http.MethodGet, "/budget/projections", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var projections model.MonthlyProjections
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &projections))
	assert.Len(t, projections.Months, 6)
	assert.Greater(t, projections.NextMonth, projections.CurrentMonth)
}

func TestResourceStop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewResourceHandler(demo.NewProvider(), notification.NewService(notification.Config{}, logger))

	payload, _ := json.Marshal(map[string][]string{"instance_ids": {"i-1234567890abcdef0"}})
	w := httptest.NewRecorder()
	h.StopInstances(w, httptest.NewRequest(http.MethodPost, "/resources/stop", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 1.0, body["count"])
}

func TestResourceStop_EmptyList(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewResourceHandler(demo.NewProvider(), notification.NewService(notification.Config{}, logger))

	payload := bytes.NewReader([]byte(`{"instance_ids": []}`))
	w := httptest.NewRecorder()
	h.StopInstances(w, httptest.NewRequest(http.MethodPost, "/resources/stop", payload))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCostTrend(t *testing.T) {
	h := handler.NewCostHandler(demo.NewProvider(), nil)

	w := httptest.NewRecorder()
	h.GetTrend(w, httptest.NewRequest(http.MethodGet, "/costs/trend", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var trend model.CostTrend
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trend))
	assert.Equal(t, model.TrendIncreasingRapidly, trend.Direction)
	assert.Equal(t, 23000.0, trend.CurrentCost)
}
