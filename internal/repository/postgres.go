// Package repository provides PostgreSQL repository implementations.
package repository

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vismaya/demandops/internal/model"
)

// PostgresCostSampleRepository implements CostSampleRepository for
// PostgreSQL.
type PostgresCostSampleRepository struct {
	db *sql.DB
}

// NewPostgresCostSampleRepository creates a new PostgresCostSampleRepository.
func NewPostgresCostSampleRepository(db *sql.DB) *PostgresCostSampleRepository {
	return &PostgresCostSampleRepository{db: db}
}

func (r *PostgresCostSampleRepository) Upsert(ctx context.Context, sample model.CostSample) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cost_samples (period_start, period_end, amount, currency)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (period_start) DO UPDATE SET
			period_end = EXCLUDED.period_end,
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency
	`, sample.PeriodStart, sample.PeriodEnd, sample.Amount, sample.Currency)
	return err
}

func (r *PostgresCostSampleRepository) UpsertBatch(ctx context.Context, samples []model.CostSample) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cost_samples (period_start, period_end, amount, currency)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (period_start) DO UPDATE SET
			period_end = EXCLUDED.period_end,
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sample := range samples {
		if _, err := stmt.ExecContext(ctx, sample.PeriodStart, sample.PeriodEnd, sample.Amount, sample.Currency); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresCostSampleRepository) ListRange(ctx context.Context, from, to time.Time) ([]model.CostSample, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT period_start, period_end, amount, currency
		FROM cost_samples
		WHERE period_start >= $1 AND period_start < $2
		ORDER BY period_start
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSamples(rows)
}

func (r *PostgresCostSampleRepository) Recent(ctx context.Context, n int) ([]model.CostSample, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT period_start, period_end, amount, currency FROM (
			SELECT period_start, period_end, amount, currency
			FROM cost_samples
			ORDER BY period_start DESC
			LIMIT $1
		) recent ORDER BY period_start
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSamples(rows)
}

func scanSamples(rows *sql.Rows) ([]model.CostSample, error) {
	var samples []model.CostSample
	for rows.Next() {
		var s model.CostSample
		if err := rows.Scan(&s.PeriodStart, &s.PeriodEnd, &s.Amount, &s.Currency); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// EnsureSchema creates all tables if they don't exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cost_samples (
			period_start TIMESTAMPTZ PRIMARY KEY,
			period_end TIMESTAMPTZ NOT NULL,
			amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			currency VARCHAR(3) NOT NULL DEFAULT 'USD'
		)`,
		`CREATE TABLE IF NOT EXISTS forecasts (
			id UUID PRIMARY KEY,
			forecasted_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			confidence_level DOUBLE PRECISION NOT NULL DEFAULT 0,
			base_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			trend_factor DOUBLE PRECISION NOT NULL DEFAULT 1,
			daily_growth_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			forecast_period_days INT NOT NULL DEFAULT 30,
			generated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			timeline JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS budget_snapshots (
			id UUID PRIMARY KEY,
			current_spend DOUBLE PRECISION NOT NULL DEFAULT 0,
			warning_limit DOUBLE PRECISION NOT NULL DEFAULT 0,
			maximum_limit DOUBLE PRECISION NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL,
			currency VARCHAR(3) NOT NULL DEFAULT 'USD',
			evaluated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS budget_alerts (
			id UUID PRIMARY KEY,
			snapshot_id UUID REFERENCES budget_snapshots(id) ON DELETE CASCADE,
			level VARCHAR(20) NOT NULL,
			message TEXT NOT NULL,
			action_required BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_generated_at ON forecasts (generated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_budget_snapshots_evaluated_at ON budget_snapshots (evaluated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_budget_alerts_created_at ON budget_alerts (created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
