package handler

import (
	"context"
	"net/http"

	"github.com/vismaya/demandops/internal/apierrors"
	"github.com/vismaya/demandops/internal/forecast"
	"github.com/vismaya/demandops/internal/model"
	"github.com/vismaya/demandops/internal/provider"
	"github.com/vismaya/demandops/internal/repository"
)

// CostHandler serves current spend and cost history.
type CostHandler struct {
	provider provider.Provider
	samples  repository.CostSampleRepository
}

func NewCostHandler(p provider.Provider, samples repository.CostSampleRepository) *CostHandler {
	return &CostHandler{provider: p, samples: samples}
}

// GetCurrent handles GET /costs/current.
func (h *CostHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	summary, err := h.provider.CurrentMonthSpend(r.Context())
	if err != nil {
		apierrors.NewServiceUnavailableError("cost provider").Write(w, r)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// GetHistory handles GET /costs/history?months=N.
func (h *CostHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	months := queryInt(r, "months", 6, 1, 36)

	history, err := h.loadHistory(ctx, months)
	if err != nil {
		apierrors.NewServiceUnavailableError("cost provider").Write(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"months":  len(history),
		"samples": history,
	})
}

// GetTrend handles GET /costs/trend?months=N.
func (h *CostHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	months := queryInt(r, "months", 6, 2, 36)

	history, err := h.loadHistory(ctx, months)
	if err != nil {
		apierrors.NewServiceUnavailableError("cost provider").Write(w, r)
		return
	}

	writeJSON(w, http.StatusOK, forecast.AnalyzeTrend(history))
}

// loadHistory prefers stored samples and falls back to the provider.
func (h *CostHandler) loadHistory(ctx context.Context, months int) ([]model.CostSample, error) {
	if h.samples != nil {
		history, err := h.samples.Recent(ctx, months)
		if err == nil && len(history) > 0 {
			return history, nil
		}
	}
	return h.provider.MonthlyCostHistory(ctx, months)
}
