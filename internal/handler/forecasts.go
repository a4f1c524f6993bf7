package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vismaya/demandops/internal/apierrors"
	"github.com/vismaya/demandops/internal/forecast"
	"github.com/vismaya/demandops/internal/model"
	"github.com/vismaya/demandops/internal/provider"
	"github.com/vismaya/demandops/internal/repository"
	"github.com/vismaya/demandops/internal/timeline"
)

// Months of history consumed when computing a forecast on demand.
const forecastHistoryMonths = 6

// ForecastHandler serves stored forecasts and computes fresh ones.
type ForecastHandler struct {
	provider   provider.Provider
	projector  *timeline.Projector
	thresholds model.BudgetThresholds
	forecasts  repository.ForecastRepository
	samples    repository.CostSampleRepository
}

func NewForecastHandler(
	p provider.Provider,
	projector *timeline.Projector,
	thresholds model.BudgetThresholds,
	forecasts repository.ForecastRepository,
	samples repository.CostSampleRepository,
) *ForecastHandler {
	return &ForecastHandler{
		provider:   p,
		projector:  projector,
		thresholds: thresholds,
		forecasts:  forecasts,
		samples:    samples,
	}
}

// GetLatest handles GET /forecasts/latest. It prefers the most recent stored
// record and falls back to computing one on the fly.
func (h *ForecastHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.forecasts != nil {
		record, err := h.forecasts.GetLatest(ctx)
		if err == nil && record != nil {
			writeJSON(w, http.StatusOK, record)
			return
		}
	}

	record, err := h.compute(ctx)
	if err != nil {
		apierrors.NewServiceUnavailableError("cost provider").Write(w, r)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// List handles GET /forecasts?page=N&page_size=M.
func (h *ForecastHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.forecasts == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"forecasts": []*model.ForecastRecord{},
			"total":     0,
		})
		return
	}

	pagination := model.Pagination{
		Page:     queryInt(r, "page", 1, 1, 10000),
		PageSize: queryInt(r, "page_size", 20, 1, 100),
	}

	records, total, err := h.forecasts.List(r.Context(), pagination)
	if err != nil {
		apierrors.NewInternalError("failed to list forecasts").Write(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"forecasts": records,
		"total":     total,
		"page":      pagination.Page,
		"page_size": pagination.PageSize,
	})
}

// Generate handles POST /forecasts. It computes a fresh forecast and stores
// it when persistence is configured.
func (h *ForecastHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.compute(ctx)
	if err != nil {
		apierrors.NewServiceUnavailableError("cost provider").Write(w, r)
		return
	}

	if h.forecasts != nil {
		if err := h.forecasts.Create(ctx, record); err != nil {
			apierrors.NewInternalError("failed to store forecast").Write(w, r)
			return
		}
	}

	writeJSON(w, http.StatusCreated, record)
}

// GetByID handles GET /forecasts/{id}.
func (h *ForecastHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		apierrors.NewBadRequestError("invalid forecast id").Write(w, r)
		return
	}

	if h.forecasts == nil {
		apierrors.NewNotFoundError("forecast", idStr).Write(w, r)
		return
	}

	record, err := h.forecasts.GetByID(r.Context(), id)
	if err != nil {
		apierrors.NewInternalError("failed to load forecast").Write(w, r)
		return
	}
	if record == nil {
		apierrors.NewNotFoundError("forecast", idStr).Write(w, r)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *ForecastHandler) compute(ctx context.Context) (*model.ForecastRecord, error) {
	var history []model.CostSample
	if h.samples != nil {
		if stored, err := h.samples.Recent(ctx, forecastHistoryMonths); err == nil && len(stored) > 0 {
			history = stored
		}
	}
	if history == nil {
		fetched, err := h.provider.MonthlyCostHistory(ctx, forecastHistoryMonths)
		if err != nil {
			return nil, err
		}
		history = fetched
	}

	summary, err := h.provider.CurrentMonthSpend(ctx)
	if err != nil {
		return nil, err
	}

	fc := forecast.Generate(history)
	fc.GeneratedAt = time.Now().UTC()

	tl, err := h.projector.GenerateTimeline(fc.GeneratedAt, summary.TotalCost, h.thresholds, fc)
	if err != nil {
		return nil, err
	}

	return &model.ForecastRecord{
		BaseEntity: model.NewBaseEntity(),
		Forecast:   fc,
		Timeline:   tl,
	}, nil
}
