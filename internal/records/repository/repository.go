// Package repository is the pgx implementation of records.Store.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketing_dashboard_backend/internal/records"
	"marketing_dashboard_backend/internal/window"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadColumns = `id, client_name, created_at, phone, name, sale_amount::float8, status, closed_at, notes,
	campaign_name, adset_name, ad_name`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) QueryAdSpend(ctx context.Context, tenant string, p *window.Predicates) ([]records.AdSpendRow, error) {
	query, args := adSpendQuery(tenant, p)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]records.AdSpendRow, 0)
	for rows.Next() {
		var item records.AdSpendRow
		if err := rows.Scan(
			&item.ClientName, &item.Date, &item.CampaignName, &item.AdsetName, &item.AdName,
			&item.Spend, &item.Reach, &item.Impressions, &item.LinkClicks, &item.MessagesStarted,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

func (r *Repository) QueryLeads(ctx context.Context, tenant string, p *window.Predicates, includePhoneless bool) ([]records.LeadRow, error) {
	query, args := leadsQuery(tenant, p, includePhoneless)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]records.LeadRow, 0)
	for rows.Next() {
		item, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

func (r *Repository) QueryLead(ctx context.Context, tenant string, id uuid.UUID) (records.LeadRow, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1 AND client_name = $2`, id, tenant)
	item, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return records.LeadRow{}, records.ErrNotFound
	}
	return item, err
}

func (r *Repository) UpdateLeadStatus(ctx context.Context, tenant string, id uuid.UUID, change records.StatusChange) (records.LeadRow, error) {
	return r.writeLead(ctx, tenant, id, change.Applies, func(tx pgx.Tx) pgx.Row {
		return tx.QueryRow(ctx, `
			UPDATE leads SET status = $3
			WHERE id = $1 AND client_name = $2
			RETURNING `+leadColumns, id, tenant, change.Status)
	})
}

// UpdateSaleClosure sets status, sale amount, closing time and notes in one
// statement so a closed lead never exists without its sale.
func (r *Repository) UpdateSaleClosure(ctx context.Context, tenant string, id uuid.UUID, closure records.SaleClosure) (records.LeadRow, error) {
	return r.writeLead(ctx, tenant, id, closure.Applies, func(tx pgx.Tx) pgx.Row {
		return tx.QueryRow(ctx, `
			UPDATE leads
			SET status = $3, sale_amount = $4, closed_at = $5, notes = NULLIF($6, '')
			WHERE id = $1 AND client_name = $2
			RETURNING `+leadColumns, id, tenant, records.StatusClosed, closure.Amount, closure.ClosedAt, closure.Notes)
	})
}

// writeLead locks the row, re-checks its owner and its state, and applies the
// update in the same transaction. The state check runs on the locked row so a
// concurrent move between the caller's read and this write cannot slip through.
func (r *Repository) writeLead(ctx context.Context, tenant string, id uuid.UUID, applies func(records.LeadRecord) bool, update func(pgx.Tx) pgx.Row) (records.LeadRow, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return records.LeadRow{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	locked, err := scanLead(tx.QueryRow(ctx, lockLeadQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return records.LeadRow{}, records.ErrNotFound
	}
	if err != nil {
		return records.LeadRow{}, err
	}
	if err := checkLocked(locked, tenant, applies); err != nil {
		return records.LeadRow{}, err
	}

	item, err := scanLead(update(tx))
	if errors.Is(err, pgx.ErrNoRows) {
		return records.LeadRow{}, records.ErrNotFound
	}
	if err != nil {
		return records.LeadRow{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return records.LeadRow{}, err
	}
	return item, nil
}

const lockLeadQuery = `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 FOR UPDATE`

// checkLocked verifies owner first so a foreign row is reported as such even
// when its state would also reject the write.
func checkLocked(locked records.LeadRow, tenant string, applies func(records.LeadRecord) bool) error {
	if locked.ClientName == nil || *locked.ClientName != tenant {
		owner := ""
		if locked.ClientName != nil {
			owner = *locked.ClientName
		}
		return &records.TenantMismatchError{Requested: tenant, Found: owner}
	}
	if !applies(records.NormalizeLead(locked)) {
		return records.ErrStageChanged
	}
	return nil
}

func scanLead(row pgx.Row) (records.LeadRow, error) {
	var item records.LeadRow
	err := row.Scan(
		&item.ID, &item.ClientName, &item.CreatedAt, &item.Phone, &item.Name, &item.SaleAmount,
		&item.Status, &item.ClosedAt, &item.Notes, &item.CampaignName, &item.AdsetName, &item.AdName,
	)
	return item, err
}

func adSpendQuery(tenant string, p *window.Predicates) (string, []any) {
	var b strings.Builder
	b.WriteString(`
		SELECT client_name, date, campaign_name, adset_name, ad_name,
			spend::float8, reach, impressions, link_clicks, messages_started
		FROM ad_spend
		WHERE client_name = $1`)
	args := []any{tenant}

	if p != nil {
		args = append(args, p.AdSpend.From, p.AdSpend.To)
		fmt.Fprintf(&b, ` AND date >= $%d::date AND date <= $%d::date`, len(args)-1, len(args))
	}
	b.WriteString(` ORDER BY date ASC`)
	return b.String(), args
}

func leadsQuery(tenant string, p *window.Predicates, includePhoneless bool) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + leadColumns + ` FROM leads WHERE client_name = $1`)
	args := []any{tenant}

	if !includePhoneless {
		b.WriteString(` AND phone IS NOT NULL AND btrim(phone) <> ''`)
	}
	if p != nil {
		args = append(args, p.Leads.From, p.Leads.Before)
		fmt.Fprintf(&b, ` AND created_at >= $%d AND created_at < $%d`, len(args)-1, len(args))
	}
	b.WriteString(` ORDER BY created_at DESC`)
	return b.String(), args
}

var _ records.Store = (*Repository)(nil)
