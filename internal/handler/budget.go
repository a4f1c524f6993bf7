package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/vismaya/demandops/internal/apierrors"
	"github.com/vismaya/demandops/internal/budgetalert"
	"github.com/vismaya/demandops/internal/forecast"
	"github.com/vismaya/demandops/internal/model"
	"github.com/vismaya/demandops/internal/policy"
	"github.com/vismaya/demandops/internal/provider"
	"github.com/vismaya/demandops/internal/repository"
	"github.com/vismaya/demandops/internal/timeline"
)

// BudgetHandler serves budget status, timelines, projections and alerts.
type BudgetHandler struct {
	provider   provider.Provider
	projector  *timeline.Projector
	evaluator  *budgetalert.Evaluator
	thresholds model.BudgetThresholds
	policies   *policy.Set
	snapshots  repository.SnapshotRepository
	samples    repository.CostSampleRepository
}

func NewBudgetHandler(
	p provider.Provider,
	projector *timeline.Projector,
	evaluator *budgetalert.Evaluator,
	thresholds model.BudgetThresholds,
	policies *policy.Set,
	snapshots repository.SnapshotRepository,
	samples repository.CostSampleRepository,
) *BudgetHandler {
	return &BudgetHandler{
		provider:   p,
		projector:  projector,
		evaluator:  evaluator,
		thresholds: thresholds,
		policies:   policies,
		snapshots:  snapshots,
		samples:    samples,
	}
}

// thresholdsFor resolves thresholds for the optional team query parameter.
func (h *BudgetHandler) thresholdsFor(r *http.Request) model.BudgetThresholds {
	if h.policies != nil {
		if team := r.URL.Query().Get("team"); team != "" {
			return h.policies.ThresholdsFor(team)
		}
	}
	return h.thresholds
}

// GetStatus handles GET /budget/status.
func (h *BudgetHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	thresholds := h.thresholdsFor(r)

	summary, err := h.provider.CurrentMonthSpend(ctx)
	if err != nil {
		apierrors.NewServiceUnavailableError("cost provider").Write(w, r)
		return
	}

	insights := h.evaluator.Insights(summary.TotalCost, thresholds)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current_spend":   summary.TotalCost,
		"currency":        string(summary.Currency),
		"thresholds":      thresholds,
		"status":          insights.Status,
		"insights":        insights,
		"recommendations": h.evaluator.Recommendations(summary.TotalCost, thresholds),
	})
}

// GetTimeline handles GET /budget/timeline.
func (h *BudgetHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	thresholds := h.thresholdsFor(r)

	summary, fc, err := h.liveForecast(ctx)
	if err != nil {
		apierrors.NewServiceUnavailableError("cost provider").Write(w, r)
		return
	}

	tl, err := h.projector.GenerateTimeline(fc.GeneratedAt, summary.TotalCost, thresholds, fc)
	if err != nil {
		apierrors.NewValidationError(err.Error(), nil).Write(w, r)
		return
	}

	writeJSON(w, http.StatusOK, tl)
}

// GetProjections handles GET /budget/projections.
func (h *BudgetHandler) GetProjections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	thresholds := h.thresholdsFor(r)

	_, fc, err := h.liveForecast(ctx)
	if err != nil {
		apierrors.NewServiceUnavailableError("cost provider").Write(w, r)
		return
	}

	projections, err := h.projector.MonthlyProjections(fc, thresholds)
	if err != nil {
		apierrors.NewValidationError(err.Error(), nil).Write(w, r)
		return
	}

	writeJSON(w, http.StatusOK, projections)
}

// GetTargets handles GET /budget/targets.
func (h *BudgetHandler) GetTargets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	thresholds := h.thresholdsFor(r)

	summary, err := h.provider.CurrentMonthSpend(ctx)
	if err != nil {
		apierrors.NewServiceUnavailableError("cost provider").Write(w, r)
		return
	}

	targets, err := h.projector.OptimizationTargets(time.Now().UTC(), summary.TotalCost, thresholds)
	if err != nil {
		apierrors.NewValidationError(err.Error(), nil).Write(w, r)
		return
	}

	writeJSON(w, http.StatusOK, targets)
}

// GetAlerts handles GET /budget/alerts. It returns recorded alert history
// when persistence is configured, otherwise a live evaluation.
func (h *BudgetHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.snapshots != nil {
		pagination := model.Pagination{
			Page:     queryInt(r, "page", 1, 1, 10000),
			PageSize: queryInt(r, "page_size", 50, 1, 200),
		}
		alerts, total, err := h.snapshots.ListAlerts(ctx, pagination)
		if err != nil {
			apierrors.NewInternalError("failed to list alerts").Write(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"alerts": alerts,
			"total":  total,
			"source": "history",
		})
		return
	}

	thresholds := h.thresholdsFor(r)
	summary, err := h.provider.CurrentMonthSpend(ctx)
	if err != nil {
		apierrors.NewServiceUnavailableError("cost provider").Write(w, r)
		return
	}

	alerts, err := h.evaluator.Check(time.Now().UTC(), summary.TotalCost, thresholds)
	if err != nil {
		apierrors.NewValidationError(err.Error(), nil).Write(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"total":  len(alerts),
		"source": "live",
	})
}

// GetPolicy handles GET /budget/policy.
func (h *BudgetHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"defaults": h.thresholds,
	}
	if h.policies != nil {
		teams := make(map[string]model.BudgetThresholds, len(h.policies.Teams))
		for name, t := range h.policies.Teams {
			teams[name] = t
		}
		resp["teams"] = teams
	}
	writeJSON(w, http.StatusOK, resp)
}

// liveForecast computes a forecast from recent history for timeline views.
func (h *BudgetHandler) liveForecast(ctx context.Context) (*model.CostSummary, model.Forecast, error) {
	var history []model.CostSample
	if h.samples != nil {
		if stored, err := h.samples.Recent(ctx, forecastHistoryMonths); err == nil && len(stored) > 0 {
			history = stored
		}
	}
	if history == nil {
		fetched, err := h.provider.MonthlyCostHistory(ctx, forecastHistoryMonths)
		if err != nil {
			return nil, model.Forecast{}, err
		}
		history = fetched
	}

	summary, err := h.provider.CurrentMonthSpend(ctx)
	if err != nil {
		return nil, model.Forecast{}, err
	}

	fc := forecast.Generate(history)
	fc.GeneratedAt = time.Now().UTC()
	return summary, fc, nil
}
