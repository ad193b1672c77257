package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const (
	distinctAdSpendClientsSQL = `
		SELECT DISTINCT client_name FROM ad_spend
		WHERE client_name IS NOT NULL AND btrim(client_name) <> ''`
	distinctLeadClientsSQL = `
		SELECT DISTINCT client_name FROM leads
		WHERE client_name IS NOT NULL AND btrim(client_name) <> ''`
	assignedClientsSQL = `
		SELECT DISTINCT client_name FROM user_clients
		WHERE user_id = $1
		ORDER BY client_name ASC`
)

// DistinctAdSpendClients scans ad_spend for every non-empty client name.
func (r *Repository) DistinctAdSpendClients(ctx context.Context) ([]string, error) {
	return r.names(ctx, distinctAdSpendClientsSQL)
}

// DistinctLeadClients scans leads for every non-empty client name.
func (r *Repository) DistinctLeadClients(ctx context.Context) ([]string, error) {
	return r.names(ctx, distinctLeadClientsSQL)
}

// AssignedClients lists the user_clients rows of one user.
func (r *Repository) AssignedClients(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return r.names(ctx, assignedClientsSQL, userID)
}

// ReplaceAssignments swaps the user's assigned clients in one transaction.
func (r *Repository) ReplaceAssignments(ctx context.Context, userID uuid.UUID, clients []string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_clients WHERE user_id = $1`, userID); err != nil {
			return err
		}
		for _, client := range clients {
			if _, err := tx.Exec(ctx, `
				INSERT INTO user_clients (user_id, client_name) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, userID, client); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) names(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
