// Package repo provides database repositories
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-swapi/internal/domain"
)

// DefaultListLimit is used when a caller asks for a non-positive number of rows
const DefaultListLimit = 20

// WalkRepo persists one summary row per aggregation walk. Entities are never stored.
type WalkRepo struct {
	pool *pgxpool.Pool
}

// NewWalkRepo creates a new walk repository
func NewWalkRepo(pool *pgxpool.Pool) *WalkRepo {
	return &WalkRepo{pool: pool}
}

// RecordWalk inserts a walk summary
func (r *WalkRepo) RecordWalk(ctx context.Context, log domain.WalkLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO walk_log (category, started_at, duration_ms, pages, entities, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.Category, log.StartedAt, log.DurationMs, log.Pages, log.Entities, log.Status, log.Error)
	return err
}

// ListWalks lists the most recent walks, newest first
func (r *WalkRepo) ListWalks(ctx context.Context, limit int) ([]domain.WalkLog, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, category, started_at, duration_ms, pages, entities, status, error
		FROM walk_log ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.WalkLog, 0, limit)
	for rows.Next() {
		var item domain.WalkLog
		if err := rows.Scan(&item.ID, &item.Category, &item.StartedAt, &item.DurationMs,
			&item.Pages, &item.Entities, &item.Status, &item.Error); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// LatestWalk returns the newest walk for a category, or nil if none was recorded
func (r *WalkRepo) LatestWalk(ctx context.Context, category string) (*domain.WalkLog, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, category, started_at, duration_ms, pages, entities, status, error
		FROM walk_log WHERE category = $1 ORDER BY id DESC LIMIT 1`, category)

	var item domain.WalkLog
	err := row.Scan(&item.ID, &item.Category, &item.StartedAt, &item.DurationMs,
		&item.Pages, &item.Entities, &item.Status, &item.Error)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// InitDB initializes database tables
func InitDB(ctx context.Context, pool *pgxpool.Pool) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS walk_log(
			id BIGSERIAL PRIMARY KEY,
			category TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			duration_ms BIGINT NOT NULL,
			pages INT NOT NULL,
			entities INT NOT NULL,
			status TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS ix_walk_log_category
		 ON walk_log(category, id DESC)`,
	}

	for _, q := range queries {
		if _, err := pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Open connects to url and makes sure the schema exists
func Open(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if err := InitDB(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
