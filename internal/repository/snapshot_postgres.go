package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vismaya/demandops/internal/model"
)

// PostgresSnapshotRepository implements SnapshotRepository for PostgreSQL.
type PostgresSnapshotRepository struct {
	db *sql.DB
}

// NewPostgresSnapshotRepository creates a new PostgresSnapshotRepository.
func NewPostgresSnapshotRepository(db *sql.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

func (r *PostgresSnapshotRepository) CreateSnapshot(ctx context.Context, snapshot *model.BudgetSnapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budget_snapshots (id, current_spend, warning_limit, maximum_limit, status, currency, evaluated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, snapshot.ID, snapshot.CurrentSpend, snapshot.Thresholds.WarningLimit, snapshot.Thresholds.MaximumLimit,
		snapshot.Status, snapshot.Currency, snapshot.EvaluatedAt, snapshot.CreatedAt, snapshot.UpdatedAt)
	return err
}

func (r *PostgresSnapshotRepository) LatestSnapshot(ctx context.Context) (*model.BudgetSnapshot, error) {
	var s model.BudgetSnapshot
	err := r.db.QueryRowContext(ctx, `
		SELECT id, current_spend, warning_limit, maximum_limit, status, currency, evaluated_at, created_at, updated_at
		FROM budget_snapshots ORDER BY evaluated_at DESC LIMIT 1
	`).Scan(&s.ID, &s.CurrentSpend, &s.Thresholds.WarningLimit, &s.Thresholds.MaximumLimit,
		&s.Status, &s.Currency, &s.EvaluatedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresSnapshotRepository) ListSnapshots(ctx context.Context, from, to time.Time) ([]*model.BudgetSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, current_spend, warning_limit, maximum_limit, status, currency, evaluated_at, created_at, updated_at
		FROM budget_snapshots
		WHERE evaluated_at >= $1 AND evaluated_at < $2
		ORDER BY evaluated_at
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*model.BudgetSnapshot
	for rows.Next() {
		var s model.BudgetSnapshot
		if err := rows.Scan(&s.ID, &s.CurrentSpend, &s.Thresholds.WarningLimit, &s.Thresholds.MaximumLimit,
			&s.Status, &s.Currency, &s.EvaluatedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, &s)
	}
	return snapshots, rows.Err()
}

func (r *PostgresSnapshotRepository) RecordAlerts(ctx context.Context, snapshotID uuid.UUID, alerts []model.BudgetAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, alert := range alerts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO budget_alerts (id, snapshot_id, level, message, action_required, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New(), snapshotID, alert.Level, alert.Message, alert.ActionRequired, alert.Timestamp)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresSnapshotRepository) ListAlerts(ctx context.Context, pagination model.Pagination) ([]model.BudgetAlert, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM budget_alerts").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT level, message, action_required, created_at
		FROM budget_alerts ORDER BY created_at DESC LIMIT %d OFFSET %d
	`, pagination.PageSize, (pagination.Page-1)*pagination.PageSize))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var alerts []model.BudgetAlert
	for rows.Next() {
		var a model.BudgetAlert
		if err := rows.Scan(&a.Level, &a.Message, &a.ActionRequired, &a.Timestamp); err != nil {
			return nil, 0, err
		}
		alerts = append(alerts, a)
	}
	return alerts, total, rows.Err()
}

var _ SnapshotRepository = (*PostgresSnapshotRepository)(nil)
var _ ForecastRepository = (*PostgresForecastRepository)(nil)
var _ CostSampleRepository = (*PostgresCostSampleRepository)(nil)

// Open connects to PostgreSQL using the pgx stdlib driver and verifies the
// connection.
func Open(ctx context.Context, dsn string, maxOpen, maxIdle int, maxLifetime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}
