package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vismaya/demandops/internal/apierrors"
	"github.com/vismaya/demandops/internal/budgetalert"
	"github.com/vismaya/demandops/internal/jobs"
	"github.com/vismaya/demandops/internal/model"
	"github.com/vismaya/demandops/internal/provider"
	"github.com/vismaya/demandops/internal/report"
	"github.com/vismaya/demandops/internal/repository"
	"github.com/vismaya/demandops/internal/timeline"
)

// ReportHandler builds cost report downloads and triggers S3 publication.
type ReportHandler struct {
	provider   provider.Provider
	projector  *timeline.Projector
	evaluator  *budgetalert.Evaluator
	thresholds model.BudgetThresholds
	samples    repository.CostSampleRepository
	pipeline   *jobs.Pipeline
}

func NewReportHandler(
	p provider.Provider,
	projector *timeline.Projector,
	evaluator *budgetalert.Evaluator,
	thresholds model.BudgetThresholds,
	samples repository.CostSampleRepository,
	pipeline *jobs.Pipeline,
) *ReportHandler {
	return &ReportHandler{
		provider:   p,
		projector:  projector,
		evaluator:  evaluator,
		thresholds: thresholds,
		samples:    samples,
		pipeline:   pipeline,
	}
}

// Export handles GET /reports/export?format=csv|json as a file download.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	format := report.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = report.FormatCSV
	}

	now := time.Now().UTC()

	summary, err := h.provider.CurrentMonthSpend(ctx)
	if err != nil {
		apierrors.NewServiceUnavailableError("cost provider").Write(w, r)
		return
	}

	var history []model.CostSample
	if h.samples != nil {
		history, _ = h.samples.Recent(ctx, forecastHistoryMonths)
	}
	if len(history) == 0 {
		history, _ = h.provider.MonthlyCostHistory(ctx, forecastHistoryMonths)
	}

	cr := &report.CostReport{
		GeneratedAt: now,
		Summary:     summary,
		History:     history,
		Status:      h.evaluator.EvaluateStatus(summary.TotalCost, h.thresholds),
	}

	body, err := cr.Render(format)
	if err != nil {
		apierrors.NewBadRequestError(err.Error()).Write(w, r)
		return
	}

	contentType := "text/csv"
	if format == report.FormatJSON {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, cr.Filename(format)))
	w.Write(body)
}

// Publish handles POST /reports/publish?format=csv|json. It runs the full
// report cycle and uploads the result to S3.
func (h *ReportHandler) Publish(w http.ResponseWriter, r *http.Request) {
	format := report.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = report.FormatCSV
	}

	key, err := h.pipeline.PublishReport(r.Context(), format)
	if err != nil {
		apierrors.NewInternalError(err.Error()).Write(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"published": true,
		"key":       key,
	})
}
