package report_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vismaya/demandops/internal/model"
	"github.com/vismaya/demandops/internal/report"
)

func sampleReport() *report.CostReport {
	generated := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	return &report.CostReport{
		GeneratedAt: generated,
		Summary: &model.CostSummary{
			TotalCost: 12500,
			Currency:  model.CurrencyUSD,
			DateRange: model.DateRange{Start: monthStart, End: generated},
			ByService: []model.ServiceCost{
				{ServiceName: "Amazon Relational Database Service", Amount: 4100, Currency: model.CurrencyUSD},
				{ServiceName: "Amazon Elastic Compute Cloud - Compute", Amount: 2800, Currency: model.CurrencyUSD},
			},
		},
		History: []model.CostSample{
			{Amount: 18000, Currency: model.CurrencyUSD, PeriodStart: monthStart.AddDate(0, -2, 0), PeriodEnd: monthStart.AddDate(0, -1, 0)},
			{Amount: 23000, Currency: model.CurrencyUSD, PeriodStart: monthStart.AddDate(0, -1, 0), PeriodEnd: monthStart},
		},
		Forecast: &model.Forecast{
			ForecastedAmount: 29388.89,
			BaseAmount:       23000,
			TrendFactor:      1.2778,
		},
		Status: model.BudgetStatusWarning,
	}
}

func TestRenderCSV(t *testing.T) {
	data, err := sampleReport().Render(report.FormatCSV)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	// header + 2 services + total + 2 history + forecast
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"section", "name", "period_start", "amount", "currency"}, rows[0])
	assert.Equal(t, "service", rows[1][0])
	assert.Equal(t, "Amazon Relational Database Service", rows[1][1])
	assert.Equal(t, "4100.00", rows[1][3])
	assert.Equal(t, []string{"total", "month_to_date", "2025-03-01", "12500.00", "USD"}, rows[3])
	assert.Equal(t, "history", rows[4][0])
	assert.Equal(t, "2025-01", rows[4][1])
	assert.Equal(t, []string{"forecast", "next_30_days", "2025-03-10", "29388.89", "USD"}, rows[6])
}

func TestRenderJSON(t *testing.T) {
	data, err := sampleReport().Render(report.FormatJSON)
	require.NoError(t, err)

	var decoded report.CostReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 12500.0, decoded.Summary.TotalCost)
	assert.Equal(t, model.BudgetStatusWarning, decoded.Status)
	assert.Len(t, decoded.History, 2)
}

func TestRender_UnsupportedFormat(t *testing.T) {
	_, err := sampleReport().Render(report.Format("xml"))
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "demandops-costs-2025-03-10.csv", r.Filename(report.FormatCSV))
	assert.Equal(t, "demandops-costs-2025-03-10.json", r.Filename(report.FormatJSON))
}

func TestRenderCSV_EmptyReport(t *testing.T) {
	r := &report.CostReport{GeneratedAt: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)}
	data, err := r.Render(report.FormatCSV)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1) // header only
}
