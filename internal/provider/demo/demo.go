// Package demo provides a canned-data provider so the full pipeline runs
// without cloud credentials. Enabled with DEMO_MODE=true.
package demo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vismaya/demandops/internal/model"
	"github.com/vismaya/demandops/internal/provider"
)

const currentMonthSpend = 12500.0

// Month totals for the five completed months before the current one.
var monthlyHistory = []float64{5000, 8000, 12000, 18000, 23000}

// Provider serves a fixed account snapshot. StopInstances mutates the
// in-memory inventory so enforcement flows can be exercised end to end.
type Provider struct {
	mu        sync.Mutex
	instances []model.EC2Instance
	volumes   []model.StorageVolume
}

// NewProvider creates the demo provider with its seed inventory.
func NewProvider() *Provider {
	return &Provider{
		instances: []model.EC2Instance{
			{
				InstanceID:   "i-1234567890abcdef0",
				InstanceType: "t3.medium",
				State:        model.InstanceStateRunning,
				Name:         "Web Server 1",
				MonthlyCost:  30.40,
				Tags:         model.Tags{"Environment": "Production", "Team": "WebDev"},
			},
			{
				InstanceID:   "i-0987654321fedcba0",
				InstanceType: "t3.large",
				State:        model.InstanceStateRunning,
				Name:         "Database Server",
				MonthlyCost:  60.80,
				Tags:         model.Tags{"Environment": "Production", "Team": "Database"},
			},
			{
				InstanceID:   "i-abcdef1234567890",
				InstanceType: "t3.small",
				State:        model.InstanceStateStopped,
				Name:         "Development Server",
				MonthlyCost:  0,
				Tags:         model.Tags{"Environment": "Development", "Team": "DevOps"},
			},
		},
		volumes: []model.StorageVolume{
			{VolumeID: "vol-1234567890abcdef0", SizeGB: 100, VolumeType: "gp3", MonthlyCost: 8, AttachedInstance: "i-1234567890abcdef0"},
			{VolumeID: "vol-0987654321fedcba0", SizeGB: 500, VolumeType: "gp3", MonthlyCost: 40, AttachedInstance: "i-0987654321fedcba0"},
			// Unattached, an optimization opportunity.
			{VolumeID: "vol-abcdef1234567890", SizeGB: 50, VolumeType: "gp2", MonthlyCost: 5},
		},
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "demo"
}

// Health always reports healthy.
func (p *Provider) Health(ctx context.Context) provider.HealthStatus {
	return provider.HealthStatus{
		Healthy:     true,
		Message:     "demo provider healthy",
		LastChecked: time.Now(),
	}
}

// CurrentMonthSpend returns the canned month-to-date summary.
func (p *Provider) CurrentMonthSpend(ctx context.Context) (*model.CostSummary, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	return &model.CostSummary{
		TotalCost: currentMonthSpend,
		Currency:  model.CurrencyUSD,
		DateRange: model.DateRange{Start: monthStart, End: now},
		ByService: []model.ServiceCost{
			{ServiceName: "Amazon Relational Database Service", Amount: 4100, Currency: model.CurrencyUSD},
			{ServiceName: "Amazon Elastic Block Store", Amount: 3800, Currency: model.CurrencyUSD},
			{ServiceName: "Amazon Elastic Compute Cloud - Compute", Amount: 2800, Currency: model.CurrencyUSD},
			{ServiceName: "Amazon Simple Storage Service", Amount: 1800, Currency: model.CurrencyUSD},
		},
		DailyRate:   currentMonthSpend / float64(now.Day()),
		RetrievedAt: now,
	}, nil
}

// MonthlyCostHistory returns up to months of completed month totals, oldest
// first.
func (p *Provider) MonthlyCostHistory(ctx context.Context, months int) ([]model.CostSample, error) {
	if months <= 0 {
		return nil, nil
	}
	if months > len(monthlyHistory) {
		months = len(monthlyHistory)
	}

	now := time.Now().UTC()
	currentMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	amounts := monthlyHistory[len(monthlyHistory)-months:]
	samples := make([]model.CostSample, 0, len(amounts))
	for i, amount := range amounts {
		monthsAgo := len(amounts) - i
		start := currentMonthStart.AddDate(0, -monthsAgo, 0)
		samples = append(samples, model.CostSample{
			Amount:      amount,
			Currency:    model.CurrencyUSD,
			PeriodStart: start,
			PeriodEnd:   start.AddDate(0, 1, 0),
		})
	}
	return samples, nil
}

// Resources returns the demo inventory.
func (p *Provider) Resources(ctx context.Context) (*model.ResourceInventory, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inv := &model.ResourceInventory{
		Instances: make([]model.EC2Instance, len(p.instances)),
		Volumes:   make([]model.StorageVolume, len(p.volumes)),
	}
	copy(inv.Instances, p.instances)
	copy(inv.Volumes, p.volumes)
	return inv, nil
}

// StopInstances marks the given demo instances stopped.
func (p *Provider) StopInstances(ctx context.Context, instanceIDs []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range instanceIDs {
		found := false
		for i := range p.instances {
			if p.instances[i].InstanceID == id {
				p.instances[i].State = model.InstanceStateStopped
				p.instances[i].MonthlyCost = 0
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown instance %q", id)
		}
	}
	return nil
}

// Close cleans up provider resources.
func (p *Provider) Close() error {
	return nil
}
