// Package repository defines data access interfaces.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vismaya/demandops/internal/model"
)

// CostSampleRepository persists monthly cost samples fetched from providers.
type CostSampleRepository interface {
	Upsert(ctx context.Context, sample model.CostSample) error
	UpsertBatch(ctx context.Context, samples []model.CostSample) error
	ListRange(ctx context.Context, from, to time.Time) ([]model.CostSample, error)
	// Recent returns the newest n samples, oldest first, ready for the
	// forecaster.
	Recent(ctx context.Context, n int) ([]model.CostSample, error)
}

// ForecastRepository persists forecast records and their timelines.
type ForecastRepository interface {
	Create(ctx context.Context, record *model.ForecastRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ForecastRecord, error)
	GetLatest(ctx context.Context) (*model.ForecastRecord, error)
	List(ctx context.Context, pagination model.Pagination) ([]*model.ForecastRecord, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SnapshotRepository persists budget evaluations and the alerts they raised.
type SnapshotRepository interface {
	CreateSnapshot(ctx context.Context, snapshot *model.BudgetSnapshot) error
	LatestSnapshot(ctx context.Context) (*model.BudgetSnapshot, error)
	ListSnapshots(ctx context.Context, from, to time.Time) ([]*model.BudgetSnapshot, error)
	RecordAlerts(ctx context.Context, snapshotID uuid.UUID, alerts []model.BudgetAlert) error
	ListAlerts(ctx context.Context, pagination model.Pagination) ([]model.BudgetAlert, int, error)
}
