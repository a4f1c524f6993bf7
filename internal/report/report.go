// Package report renders cost reports and publishes them to S3.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/vismaya/demandops/internal/model"
)

// Format selects the report encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// CostReport is the assembled reporting payload for one cycle.
type CostReport struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Summary     *model.CostSummary    `json:"summary"`
	History     []model.CostSample    `json:"history,omitempty"`
	Forecast    *model.Forecast       `json:"forecast,omitempty"`
	Timeline    *model.BudgetTimeline `json:"timeline,omitempty"`
	Status      model.BudgetStatus    `json:"status,omitempty"`
}

// Filename returns the conventional object name for the report.
func (r *CostReport) Filename(format Format) string {
	return fmt.Sprintf("demandops-costs-%s.%s", r.GeneratedAt.Format("2006-01-02"), format)
}

// Render encodes the report in the requested format.
func (r *CostReport) Render(format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return r.renderCSV()
	case FormatJSON:
		return json.MarshalIndent(r, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

// renderCSV writes the per-service breakdown followed by monthly history
// rows. Section is the first column so one file carries both.
func (r *CostReport) renderCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"section", "name", "period_start", "amount", "currency"}); err != nil {
		return nil, err
	}

	if r.Summary != nil {
		for _, sc := range r.Summary.ByService {
			row := []string{
				"service",
				sc.ServiceName,
				r.Summary.DateRange.Start.Format("2006-01-02"),
				strconv.FormatFloat(sc.Amount, 'f', 2, 64),
				string(sc.Currency),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
		total := []string{
			"total",
			"month_to_date",
			r.Summary.DateRange.Start.Format("2006-01-02"),
			strconv.FormatFloat(r.Summary.TotalCost, 'f', 2, 64),
			string(r.Summary.Currency),
		}
		if err := w.Write(total); err != nil {
			return nil, err
		}
	}

	for _, sample := range r.History {
		row := []string{
			"history",
			sample.PeriodStart.Format("2006-01"),
			sample.PeriodStart.Format("2006-01-02"),
			strconv.FormatFloat(sample.Amount, 'f', 2, 64),
			string(sample.Currency),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	if r.Forecast != nil {
		row := []string{
			"forecast",
			"next_30_days",
			r.GeneratedAt.Format("2006-01-02"),
			strconv.FormatFloat(r.Forecast.ForecastedAmount, 'f', 2, 64),
			string(model.CurrencyUSD),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
