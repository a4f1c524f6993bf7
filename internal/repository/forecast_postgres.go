package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/vismaya/demandops/internal/model"
)

// PostgresForecastRepository implements ForecastRepository for PostgreSQL.
type PostgresForecastRepository struct {
	db *sql.DB
}

// NewPostgresForecastRepository creates a new PostgresForecastRepository.
func NewPostgresForecastRepository(db *sql.DB) *PostgresForecastRepository {
	return &PostgresForecastRepository{db: db}
}

func (r *PostgresForecastRepository) Create(ctx context.Context, record *model.ForecastRecord) error {
	var timelineJSON []byte
	if record.Timeline != nil {
		var err error
		timelineJSON, err = json.Marshal(record.Timeline)
		if err != nil {
			return fmt.Errorf("marshaling timeline: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO forecasts (id, forecasted_amount, confidence_level, base_amount, trend_factor, daily_growth_rate, forecast_period_days, generated_at, timeline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			timeline = EXCLUDED.timeline,
			updated_at = EXCLUDED.updated_at
	`, record.ID, record.Forecast.ForecastedAmount, record.Forecast.ConfidenceLevel,
		record.Forecast.BaseAmount, record.Forecast.TrendFactor, record.Forecast.DailyGrowthRate,
		record.Forecast.ForecastPeriodDays, record.Forecast.GeneratedAt, timelineJSON,
		record.CreatedAt, record.UpdatedAt)
	return err
}

func (r *PostgresForecastRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ForecastRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, forecasted_amount, confidence_level, base_amount, trend_factor, daily_growth_rate, forecast_period_days, generated_at, timeline, created_at, updated_at
		FROM forecasts WHERE id = $1
	`, id)
	return scanForecast(row)
}

func (r *PostgresForecastRepository) GetLatest(ctx context.Context) (*model.ForecastRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, forecasted_amount, confidence_level, base_amount, trend_factor, daily_growth_rate, forecast_period_days, generated_at, timeline, created_at, updated_at
		FROM forecasts ORDER BY generated_at DESC LIMIT 1
	`)
	return scanForecast(row)
}

func (r *PostgresForecastRepository) List(ctx context.Context, pagination model.Pagination) ([]*model.ForecastRecord, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM forecasts").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, forecasted_amount, confidence_level, base_amount, trend_factor, daily_growth_rate, forecast_period_days, generated_at, timeline, created_at, updated_at
		FROM forecasts ORDER BY generated_at DESC LIMIT %d OFFSET %d
	`, pagination.PageSize, (pagination.Page-1)*pagination.PageSize))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*model.ForecastRecord
	for rows.Next() {
		record, err := scanForecast(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	return records, total, rows.Err()
}

func (r *PostgresForecastRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM forecasts WHERE id = $1", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanForecast(row rowScanner) (*model.ForecastRecord, error) {
	var record model.ForecastRecord
	var timelineJSON []byte
	err := row.Scan(&record.ID, &record.Forecast.ForecastedAmount, &record.Forecast.ConfidenceLevel,
		&record.Forecast.BaseAmount, &record.Forecast.TrendFactor, &record.Forecast.DailyGrowthRate,
		&record.Forecast.ForecastPeriodDays, &record.Forecast.GeneratedAt, &timelineJSON,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(timelineJSON) > 0 {
		record.Timeline = &model.BudgetTimeline{}
		if err := json.Unmarshal(timelineJSON, record.Timeline); err != nil {
			return nil, fmt.Errorf("unmarshaling timeline: %w", err)
		}
	}
	return &record, nil
}
