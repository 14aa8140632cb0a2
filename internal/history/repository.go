// Package history records computed commute reports and lists recent ones.
package history

import (
	"context"
	"embed"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrations holds the goose migrations for the history tables.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

// Report is one recorded commute report.
type Report struct {
	ID                  uuid.UUID `json:"id"`
	Origin              string    `json:"origin"`
	Destination         string    `json:"destination"`
	Date                string    `json:"date"`
	AverageDailyCommute float64   `json:"average_daily_commute"`
	YearlyCommuteHours  float64   `json:"yearly_commute_hours"`
	CarbonEmissionKg    float64   `json:"carbon_emission_kg"`
	MorningSamples      int       `json:"morning_samples"`
	EveningSamples      int       `json:"evening_samples"`
	CreatedAt           time.Time `json:"created_at"`
}

// Repository persists reports.
type Repository interface {
	Insert(ctx context.Context, report Report) error
	ListRecent(ctx context.Context, limit int) ([]Report, error)
}

// PgRepository is the Postgres implementation of Repository.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Insert stores a report. Re-inserting the same id is a no-op.
func (r *PgRepository) Insert(ctx context.Context, report Report) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO commute_reports (
			id, origin, destination, commute_date,
			average_daily_commute, yearly_commute_hours, carbon_emission_kg,
			morning_samples, evening_samples, created_at
		)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`, report.ID, report.Origin, report.Destination, report.Date,
		report.AverageDailyCommute, report.YearlyCommuteHours, report.CarbonEmissionKg,
		report.MorningSamples, report.EveningSamples, report.CreatedAt)
	return err
}

// ListRecent returns the newest reports first.
func (r *PgRepository) ListRecent(ctx context.Context, limit int) ([]Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, origin, destination, to_char(commute_date, 'YYYY-MM-DD'),
			average_daily_commute, yearly_commute_hours, carbon_emission_kg,
			morning_samples, evening_samples, created_at
		FROM commute_reports
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]Report, 0, limit)
	for rows.Next() {
		var report Report
		if err := rows.Scan(
			&report.ID, &report.Origin, &report.Destination, &report.Date,
			&report.AverageDailyCommute, &report.YearlyCommuteHours, &report.CarbonEmissionKg,
			&report.MorningSamples, &report.EveningSamples, &report.CreatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

var _ Repository = (*PgRepository)(nil)
