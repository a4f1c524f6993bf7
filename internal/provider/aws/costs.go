package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/vismaya/demandops/internal/model"
)

// CurrentMonthSpend retrieves month-to-date spend from Cost Explorer grouped
// by service.
func (p *Provider) CurrentMonthSpend(ctx context.Context) (*model.CostSummary, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	// Cost Explorer treats End as exclusive, so query through tomorrow to
	// include today's partial data.
	end := now.AddDate(0, 0, 1)

	p.logger.Info("fetching AWS month-to-date costs",
		"start", monthStart.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
	)

	p.tracker.TrackCostExplorerCall("GetCostAndUsage")
	output, err := p.costExplorer.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(monthStart.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []cetypes.GroupDefinition{
			{
				Type: cetypes.GroupDefinitionTypeDimension,
				Key:  aws.String("SERVICE"),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cost data: %w", err)
	}

	summary := &model.CostSummary{
		Currency: model.CurrencyUSD,
		DateRange: model.DateRange{
			Start: monthStart,
			End:   now,
		},
		RetrievedAt: now,
	}

	for _, result := range output.ResultsByTime {
		for _, group := range result.Groups {
			amount := metricAmount(group.Metrics, "UnblendedCost")
			if len(group.Keys) == 0 {
				continue
			}
			summary.ByService = append(summary.ByService, model.ServiceCost{
				ServiceName: group.Keys[0],
				Amount:      amount,
				Currency:    model.CurrencyUSD,
			})
			summary.TotalCost += amount
		}
	}

	summary.DailyRate = summary.TotalCost / float64(now.Day())
	return summary, nil
}

// MonthlyCostHistory retrieves up to months of month-total samples from Cost
// Explorer, oldest first.
func (p *Provider) MonthlyCostHistory(ctx context.Context, months int) ([]model.CostSample, error) {
	if months <= 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	currentMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := currentMonthStart.AddDate(0, -months, 0)

	p.tracker.TrackCostExplorerCall("GetCostAndUsage")
	output, err := p.costExplorer.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(currentMonthStart.Format("2006-01-02")),
		},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cost history: %w", err)
	}

	samples := make([]model.CostSample, 0, len(output.ResultsByTime))
	for _, result := range output.ResultsByTime {
		if result.TimePeriod == nil || result.TimePeriod.Start == nil {
			continue
		}
		periodStart, err := time.Parse("2006-01-02", *result.TimePeriod.Start)
		if err != nil {
			continue
		}
		var periodEnd time.Time
		if result.TimePeriod.End != nil {
			periodEnd, _ = time.Parse("2006-01-02", *result.TimePeriod.End)
		}

		samples = append(samples, model.CostSample{
			Amount:      metricAmount(result.Total, "UnblendedCost"),
			Currency:    model.CurrencyUSD,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
		})
	}

	return samples, nil
}

func metricAmount(metrics map[string]cetypes.MetricValue, key string) float64 {
	var amount float64
	if metric, ok := metrics[key]; ok && metric.Amount != nil {
		fmt.Sscanf(*metric.Amount, "%f", &amount)
	}
	return amount
}
