package repository

import (
	"context"
	"fmt"

	"geoform/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS reports (
		id BIGSERIAL PRIMARY KEY,
		town TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		imported_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS reports_country_idx ON reports (country);
`

// Repository stores raw location reports in PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the reports table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}

// ListReports returns every stored report in insertion order
func (r *Repository) ListReports(ctx context.Context) ([]models.RawReport, error) {
	rows, err := r.db.Query(ctx, `SELECT id, town, country FROM reports ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []models.RawReport{}
	for rows.Next() {
		var rep models.RawReport
		if err := rows.Scan(&rep.ID, &rep.Town, &rep.Country); err != nil {
			return nil, fmt.Errorf("repository: failed to scan report: %w", err)
		}
		reports = append(reports, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return reports, nil
}

// ReplaceReports swaps the stored reports for a new snapshot in one transaction
func (r *Repository) ReplaceReports(ctx context.Context, reports []models.RawReport) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reports`); err != nil {
		return 0, fmt.Errorf("repository: failed to clear reports: %w", err)
	}

	n, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"reports"},
		[]string{"town", "country"},
		pgx.CopyFromSlice(len(reports), func(i int) ([]any, error) {
			return []any{reports[i].Town, reports[i].Country}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to copy reports: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("repository: failed to commit reports: %w", err)
	}
	return n, nil
}

// CountReports returns the number of stored reports
func (r *Repository) CountReports(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count reports: %w", err)
	}
	return count, nil
}
