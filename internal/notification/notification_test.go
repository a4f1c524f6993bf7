package notification_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vismaya/demandops/internal/model"
	"github.com/vismaya/demandops/internal/notification"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func thresholds() model.BudgetThresholds {
	return model.BudgetThresholds{WarningLimit: 80, MaximumLimit: 100}
}

func TestSendBudgetAlert_Slack(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := notification.NewService(notification.Config{SlackWebhookURL: server.URL}, testLogger())

	alert := model.BudgetAlert{
		Level:          model.AlertLevelCritical,
		Message:        "CRITICAL: spending $105.00 exceeds the maximum limit of $100.00.",
		ActionRequired: true,
	}
	require.NoError(t, svc.SendBudgetAlert(context.Background(), alert, 105, thresholds()))

	attachments, ok := received["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, attachments, 1)

	attachment := attachments[0].(map[string]any)
	assert.Equal(t, "#FF0000", attachment["color"])
	assert.Equal(t, "Budget Exceeded", attachment["title"])
	assert.Contains(t, attachment["text"], "$105.00")
	assert.Equal(t, "DemandOps", attachment["footer"])
}

func TestSendBudgetAlert_SkipsInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no notification expected for INFO alerts")
	}))
	defer server.Close()

	svc := notification.NewService(notification.Config{SlackWebhookURL: server.URL}, testLogger())

	alert := model.BudgetAlert{Level: model.AlertLevelInfo, Message: "Budget healthy"}
	assert.NoError(t, svc.SendBudgetAlert(context.Background(), alert, 50, thresholds()))
}

func TestSendBreachProjection_Webhook(t *testing.T) {
	var msg notification.Message
	var eventHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventHeader = r.Header.Get("X-DemandOps-Event")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &msg))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	svc := notification.NewService(notification.Config{WebhookURLs: []string{server.URL}}, testLogger())

	daysWarning, daysCritical := 15, 23
	timeline := &model.BudgetTimeline{
		DaysToWarning:     &daysWarning,
		DaysToCritical:    &daysCritical,
		WillExceedWarning: true,
		SafeDailyBudget:   2.0,
	}
	require.NoError(t, svc.SendBreachProjection(context.Background(), timeline))

	assert.Equal(t, "budget.breach_projected", eventHeader)
	assert.Equal(t, notification.EventBreachProjected, msg.EventType)
	assert.Equal(t, model.AlertLevelWarning, msg.Level)
	assert.Contains(t, msg.Body, "15 days")
}

func TestSendBreachProjection_NoRiskIsQuiet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no notification expected without a projected breach")
	}))
	defer server.Close()

	svc := notification.NewService(notification.Config{WebhookURLs: []string{server.URL}}, testLogger())

	assert.NoError(t, svc.SendBreachProjection(context.Background(), &model.BudgetTimeline{}))
	assert.NoError(t, svc.SendBreachProjection(context.Background(), nil))
}

func TestSend_ReportsFailedChannel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := notification.NewService(notification.Config{SlackWebhookURL: server.URL}, testLogger())

	err := svc.Send(context.Background(), notification.Message{
		EventType: notification.EventBudgetWarning,
		Title:     "Budget Warning",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack")
}

func TestHasChannel(t *testing.T) {
	svc := notification.NewService(notification.Config{SlackWebhookURL: "http://example.invalid"}, testLogger())
	assert.True(t, svc.HasChannel(notification.ChannelSlack))
	assert.False(t, svc.HasChannel(notification.ChannelEmail))
	assert.False(t, svc.HasChannel(notification.ChannelWebhook))
}
