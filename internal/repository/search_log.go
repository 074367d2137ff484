package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/actuallystonmai/gift-recommendation-service/internal/domain"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSearchLog commits one immutable audit record. The write runs in
// its own transaction so a failure rolls back without touching the
// response already computed by the pipeline.
func (r *Repository) CreateSearchLog(ctx context.Context, entry *domain.SearchLog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin search log tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO gift_searches (id, search_params, recommendations, model_version, processing_time_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.SearchParams, entry.Recommendations,
		entry.ModelVersion, entry.ProcessingTimeMs, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert search log %s: %w", entry.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit search log %s: %w", entry.ID, err)
	}
	return nil
}

// ListSearchLogs returns audit records, newest first.
func (r *Repository) ListSearchLogs(ctx context.Context, page, limit int) ([]domain.SearchLog, error) {
	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx,
		`SELECT id, search_params, recommendations, model_version, processing_time_ms, created_at
		 FROM gift_searches
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query search logs page %d: %w", page, err)
	}
	defer rows.Close()

	var logs []domain.SearchLog
	for rows.Next() {
		var entry domain.SearchLog
		if err := rows.Scan(&entry.ID, &entry.SearchParams, &entry.Recommendations,
			&entry.ModelVersion, &entry.ProcessingTimeMs, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search log: %w", err)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search logs: %w", err)
	}
	return logs, nil
}

// CountSearchLogs returns the total number of audit records.
func (r *Repository) CountSearchLogs(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM gift_searches`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count search logs: %w", err)
	}
	return total, nil
}
