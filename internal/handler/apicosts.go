package handler

import (
	"net/http"

	"github.com/vismaya/demandops/internal/apitrack"
)

// APICostHandler exposes the AWS API usage cost tracker.
type APICostHandler struct {
	tracker *apitrack.Tracker
}

func NewAPICostHandler(tracker *apitrack.Tracker) *APICostHandler {
	return &APICostHandler{tracker: tracker}
}

// GetSession handles GET /api-costs/session.
func (h *APICostHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.SessionSummary())
}

// GetBreakdown handles GET /api-costs/breakdown.
func (h *APICostHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	calls := h.tracker.DetailedBreakdown()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"calls": calls,
		"total": len(calls),
	})
}

// GetMonthlyEstimate handles GET /api-costs/estimate?multiplier=N. The
// multiplier scales observed hourly usage to an assumed daily pattern.
func (h *APICostHandler) GetMonthlyEstimate(w http.ResponseWriter, r *http.Request) {
	multiplier := queryFloat(r, "multiplier", 1.0)
	writeJSON(w, http.StatusOK, h.tracker.EstimateMonthlyCost(multiplier))
}
