package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vismaya/demandops/internal/budgetalert"
	"github.com/vismaya/demandops/internal/forecast"
	"github.com/vismaya/demandops/internal/model"
	"github.com/vismaya/demandops/internal/notification"
	"github.com/vismaya/demandops/internal/provider"
	"github.com/vismaya/demandops/internal/report"
	"github.com/vismaya/demandops/internal/repository"
	"github.com/vismaya/demandops/internal/timeline"
)

// Months of history fed to the forecaster each cycle.
const historyMonths = 6

// Pipeline runs the periodic forecasting cycle: fetch spend, forecast,
// project the timeline, evaluate the budget, then persist and notify.
type Pipeline struct {
	provider   provider.Provider
	projector  *timeline.Projector
	evaluator  *budgetalert.Evaluator
	thresholds model.BudgetThresholds
	notifier   *notification.Service
	logger     *slog.Logger

	// Optional sinks; nil in demo mode without infrastructure.
	samples   repository.CostSampleRepository
	forecasts repository.ForecastRepository
	snapshots repository.SnapshotRepository
	publisher *report.S3Publisher
}

// PipelineConfig carries the pipeline's collaborators.
type PipelineConfig struct {
	Provider   provider.Provider
	Projector  *timeline.Projector
	Evaluator  *budgetalert.Evaluator
	Thresholds model.BudgetThresholds
	Notifier   *notification.Service
	Samples    repository.CostSampleRepository
	Forecasts  repository.ForecastRepository
	Snapshots  repository.SnapshotRepository
	Publisher  *report.S3Publisher
	Logger     *slog.Logger
}

// NewPipeline assembles the forecasting pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		provider:   cfg.Provider,
		projector:  cfg.Projector,
		evaluator:  cfg.Evaluator,
		thresholds: cfg.Thresholds,
		notifier:   cfg.Notifier,
		samples:    cfg.Samples,
		forecasts:  cfg.Forecasts,
		snapshots:  cfg.Snapshots,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
	}
}

// SyncCosts pulls monthly history from the provider into the sample store.
func (p *Pipeline) SyncCosts(ctx context.Context) error {
	samples, err := p.provider.MonthlyCostHistory(ctx, historyMonths)
	if err != nil {
		return fmt.Errorf("fetching cost history: %w", err)
	}

	if p.samples != nil {
		if err := p.samples.UpsertBatch(ctx, samples); err != nil {
			return fmt.Errorf("storing cost samples: %w", err)
		}
	}

	p.logger.Info("cost sync completed", "samples", len(samples))
	return nil
}

// RunForecastCycle generates a forecast from history, projects the budget
// timeline, stores the record, and announces the result.
func (p *Pipeline) RunForecastCycle(ctx context.Context) error {
	now := time.Now().UTC()

	history, err := p.loadHistory(ctx)
	if err != nil {
		return err
	}

	summary, err := p.provider.CurrentMonthSpend(ctx)
	if err != nil {
		return fmt.Errorf("fetching current spend: %w", err)
	}

	fc := forecast.Generate(history)
	fc.GeneratedAt = now

	tl, err := p.projector.GenerateTimeline(now, summary.TotalCost, p.thresholds, fc)
	if err != nil {
		return fmt.Errorf("projecting timeline: %w", err)
	}

	if p.forecasts != nil {
		record := &model.ForecastRecord{
			BaseEntity: model.NewBaseEntity(),
			Forecast:   fc,
			Timeline:   tl,
		}
		if err := p.forecasts.Create(ctx, record); err != nil {
			return fmt.Errorf("storing forecast: %w", err)
		}
	}

	if err := p.notifier.SendForecastSummary(ctx, fc); err != nil {
		p.logger.Warn("forecast notification failed", "error", err)
	}
	if tl.WillExceedWarning || tl.WillExceedCritical {
		if err := p.notifier.SendBreachProjection(ctx, tl); err != nil {
			p.logger.Warn("breach projection notification failed", "error", err)
		}
	}

	p.logger.Info("forecast cycle completed",
		"forecast", fc.ForecastedAmount,
		"confidence", fc.ConfidenceLevel,
		"will_exceed_warning", tl.WillExceedWarning,
	)
	return nil
}

// RunBudgetCheck evaluates current spend against thresholds, records the
// snapshot, and sends any actionable alerts.
func (p *Pipeline) RunBudgetCheck(ctx context.Context) error {
	now := time.Now().UTC()

	summary, err := p.provider.CurrentMonthSpend(ctx)
	if err != nil {
		return fmt.Errorf("fetching current spend: %w", err)
	}

	alerts, err := p.evaluator.Check(now, summary.TotalCost, p.thresholds)
	if err != nil {
		return fmt.Errorf("evaluating budget: %w", err)
	}
	status := p.evaluator.EvaluateStatus(summary.TotalCost, p.thresholds)

	if p.snapshots != nil {
		snapshot := &model.BudgetSnapshot{
			BaseEntity:   model.NewBaseEntity(),
			CurrentSpend: summary.TotalCost,
			Thresholds:   p.thresholds,
			Status:       status,
			Currency:     summary.Currency,
			EvaluatedAt:  now,
		}
		if err := p.snapshots.CreateSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("storing snapshot: %w", err)
		}
		if err := p.snapshots.RecordAlerts(ctx, snapshot.ID, alerts); err != nil {
			return fmt.Errorf("storing alerts: %w", err)
		}
	}

	for _, alert := range alerts {
		if err := p.notifier.SendBudgetAlert(ctx, alert, summary.TotalCost, p.thresholds); err != nil {
			p.logger.Warn("budget alert notification failed", "level", alert.Level, "error", err)
		}
	}

	p.logger.Info("budget check completed", "spend", summary.TotalCost, "status", status)
	return nil
}

// PublishReport assembles and uploads the cost report for this cycle.
func (p *Pipeline) PublishReport(ctx context.Context, format report.Format) (string, error) {
	if p.publisher == nil {
		return "", fmt.Errorf("report publishing is not configured")
	}

	now := time.Now().UTC()

	summary, err := p.provider.CurrentMonthSpend(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching current spend: %w", err)
	}
	history, err := p.loadHistory(ctx)
	if err != nil {
		return "", err
	}

	fc := forecast.Generate(history)
	fc.GeneratedAt = now
	tl, err := p.projector.GenerateTimeline(now, summary.TotalCost, p.thresholds, fc)
	if err != nil {
		return "", fmt.Errorf("projecting timeline: %w", err)
	}

	r := &report.CostReport{
		GeneratedAt: now,
		Summary:     summary,
		History:     history,
		Forecast:    &fc,
		Timeline:    tl,
		Status:      p.evaluator.EvaluateStatus(summary.TotalCost, p.thresholds),
	}
	return p.publisher.Publish(ctx, r, format)
}

// loadHistory prefers the sample store and falls back to the provider.
func (p *Pipeline) loadHistory(ctx context.Context) ([]model.CostSample, error) {
	if p.samples != nil {
		history, err := p.samples.Recent(ctx, historyMonths)
		if err == nil && len(history) > 0 {
			return history, nil
		}
		if err != nil {
			p.logger.Warn("reading stored samples failed, falling back to provider", "error", err)
		}
	}

	history, err := p.provider.MonthlyCostHistory(ctx, historyMonths)
	if err != nil {
		return nil, fmt.Errorf("fetching cost history: %w", err)
	}
	return history, nil
}
