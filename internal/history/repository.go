package history

import (
	"context"
	"database/sql"
	"fmt"

	"sgjobs-insights/internal/domain"
)

// Compile-time check.
var _ domain.HistoryRepository = (*Repository)(nil)

// Repository stores query records in the SQLite metastore.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a Repository over an opened metastore handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert records one executed query.
func (r *Repository) Insert(ctx context.Context, rec *domain.QueryRecord) error {
	const q = `INSERT INTO query_history (kind, sql_text, params, status, error, duration_ms)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, rec.Kind, rec.SQL, rec.Params, rec.Status, rec.Error, rec.DurationMS)
	if err != nil {
		return fmt.Errorf("insert query record: %w", err)
	}
	return nil
}

// List returns the most recent query records, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, kind, sql_text, params, status, error, duration_ms, created_at
FROM query_history
ORDER BY id DESC
LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list query records: %w", err)
	}
	defer rows.Close()

	var out []domain.QueryRecord
	for rows.Next() {
		var rec domain.QueryRecord
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.SQL, &rec.Params, &rec.Status, &rec.Error, &rec.DurationMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
