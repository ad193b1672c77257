package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Export struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ClientName string
	WindowSig  string
	ObjectKey  string
	RowCount   int
	CreatedAt  time.Time
}

const (
	insertExportSQL = `
		INSERT INTO report_exports (id, user_id, client_name, window_sig, object_key, row_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	listExportsSQL = `
		SELECT id, user_id, client_name, window_sig, object_key, row_count, created_at
		FROM report_exports
		WHERE client_name = $1
		ORDER BY created_at DESC
		LIMIT $2`
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Record(ctx context.Context, e Export) (Export, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, insertExportSQL,
		e.ID, e.UserID, e.ClientName, e.WindowSig, e.ObjectKey, e.RowCount,
	).Scan(&e.CreatedAt)
	return e, err
}

// List returns the latest exports of one client.
func (r *Repository) List(ctx context.Context, client string, limit int) ([]Export, error) {
	rows, err := r.pool.Query(ctx, listExportsSQL, client, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Export, 0)
	for rows.Next() {
		var e Export
		if err := rows.Scan(&e.ID, &e.UserID, &e.ClientName, &e.WindowSig, &e.ObjectKey, &e.RowCount, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
