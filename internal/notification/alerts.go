package notification

import (
	"context"
	"fmt"

	"github.com/vismaya/demandops/internal/model"
)

// SendBudgetAlert delivers an evaluated budget alert. INFO alerts are not
// worth a page and are skipped.
func (s *Service) SendBudgetAlert(ctx context.Context, alert model.BudgetAlert, currentSpend float64, thresholds model.BudgetThresholds) error {
	if alert.Level == model.AlertLevelInfo {
		return nil
	}

	eventType := EventBudgetCaution
	title := "Budget Caution"
	switch alert.Level {
	case model.AlertLevelWarning:
		eventType = EventBudgetWarning
		title = "Budget Warning"
	case model.AlertLevelCritical:
		eventType = EventBudgetExceeded
		title = "Budget Exceeded"
	}

	return s.Send(ctx, Message{
		EventType: eventType,
		Title:     title,
		Body:      alert.Message,
		Level:     alert.Level,
		Data: map[string]any{
			"Current Spend":   fmt.Sprintf("$%.2f", currentSpend),
			"Warning Limit":   fmt.Sprintf("$%.2f", thresholds.WarningLimit),
			"Maximum Limit":   fmt.Sprintf("$%.2f", thresholds.MaximumLimit),
			"Action Required": alert.ActionRequired,
		},
	})
}

// SendBreachProjection warns that the timeline projects a threshold breach
// within the near-term window.
func (s *Service) SendBreachProjection(ctx context.Context, timeline *model.BudgetTimeline) error {
	if timeline == nil || timeline.DaysToWarning == nil {
		return nil
	}

	body := fmt.Sprintf("Projected to reach the warning limit in %d days at the current growth rate.", *timeline.DaysToWarning)
	data := map[string]any{
		"Days To Warning":   *timeline.DaysToWarning,
		"Safe Daily Budget": fmt.Sprintf("$%.2f", timeline.SafeDailyBudget),
	}
	if timeline.DaysToCritical != nil {
		body += fmt.Sprintf(" Maximum limit follows %d days later.", *timeline.DaysToCritical-*timeline.DaysToWarning)
		data["Days To Critical"] = *timeline.DaysToCritical
	}

	level := model.AlertLevelCaution
	if timeline.WillExceedWarning {
		level = model.AlertLevelWarning
	}

	return s.Send(ctx, Message{
		EventType: EventBreachProjected,
		Title:     "Budget Breach Projected",
		Body:      body,
		Level:     level,
		Data:      data,
	})
}

// SendForecastSummary announces a completed forecasting cycle.
func (s *Service) SendForecastSummary(ctx context.Context, fc model.Forecast) error {
	return s.Send(ctx, Message{
		EventType: EventForecastReady,
		Title:     "Monthly Cost Forecast Updated",
		Body: fmt.Sprintf("Next month is forecast at $%.2f (%.1f%% monthly growth, %.0f%% confidence).",
			fc.ForecastedAmount, fc.MonthlyGrowthRatePct(), fc.ConfidenceLevel*100),
		Level: model.AlertLevelInfo,
		Data: map[string]any{
			"Forecast":   fmt.Sprintf("$%.2f", fc.ForecastedAmount),
			"Base":       fmt.Sprintf("$%.2f", fc.BaseAmount),
			"Confidence": fmt.Sprintf("%.0f%%", fc.ConfidenceLevel*100),
		},
	})
}

// SendEnforcementNotice reports instances stopped for budget enforcement.
func (s *Service) SendEnforcementNotice(ctx context.Context, instanceIDs []string) error {
	if len(instanceIDs) == 0 {
		return nil
	}
	return s.Send(ctx, Message{
		EventType: EventInstancesStopped,
		Title:     "Instances Stopped",
		Body:      fmt.Sprintf("%d instance(s) were stopped to contain spend after a critical budget breach.", len(instanceIDs)),
		Level:     model.AlertLevelCritical,
		Data: map[string]any{
			"Instances": instanceIDs,
		},
	})
}
