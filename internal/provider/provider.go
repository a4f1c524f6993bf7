// Package provider defines the cost data source interface and types.
package provider

import (
	"context"
	"time"

	"github.com/vismaya/demandops/internal/model"
)

// Provider is a source of spend and resource data for one cloud account.
// The demo provider satisfies it with canned data so the full pipeline runs
// without credentials.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Health checks provider connectivity.
	Health(ctx context.Context) HealthStatus

	// CurrentMonthSpend returns month-to-date spend with a per-service
	// breakdown.
	CurrentMonthSpend(ctx context.Context) (*model.CostSummary, error)

	// MonthlyCostHistory returns up to months of month-total samples,
	// oldest first. The forecaster consumes this directly.
	MonthlyCostHistory(ctx context.Context, months int) ([]model.CostSample, error)

	// Resources returns the billable resource inventory.
	Resources(ctx context.Context) (*model.ResourceInventory, error)

	// StopInstances stops the given instances. Used when a critical
	// budget breach calls for shedding compute.
	StopInstances(ctx context.Context, instanceIDs []string) error

	// Close cleans up provider resources.
	Close() error
}

// HealthStatus represents provider health.
type HealthStatus struct {
	Healthy     bool           `json:"healthy"`
	Message     string         `json:"message"`
	LastChecked time.Time      `json:"last_checked"`
	Details     map[string]any `json:"details,omitempty"`
}

// Registry manages registered providers.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(name string, provider Provider) {
	r.providers[name] = provider
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns all provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// HealthAll checks health of all providers.
func (r *Registry) HealthAll(ctx context.Context) map[string]HealthStatus {
	health := make(map[string]HealthStatus)
	for name, provider := range r.providers {
		health[name] = provider.Health(ctx)
	}
	return health
}

// Close closes all providers.
func (r *Registry) Close() error {
	for _, provider := range r.providers {
		provider.Close()
	}
	return nil
}
