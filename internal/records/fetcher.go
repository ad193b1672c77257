package records

import (
	"context"
	"errors"
	"net"
	"strings"

	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/apperr"
	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/errreport"
	"marketing_dashboard_backend/platform/logger"
	"marketing_dashboard_backend/platform/retry"
	"marketing_dashboard_backend/platform/telemetry"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Fetcher reads and writes client-scoped records through a Store.
type Fetcher struct {
	store   Store
	policy  retry.Policy
	log     *logger.Logger
	metrics *telemetry.Metrics
}

func NewFetcher(store Store, cfg config.ReportingConfig, log *logger.Logger, metrics *telemetry.Metrics) *Fetcher {
	if log == nil {
		log = logger.New("")
	}
	return &Fetcher{
		store: store,
		policy: retry.Policy{
			Attempts:  max(cfg.GetFetchMaxAttempts(), 1),
			BaseDelay: cfg.GetFetchRetryBaseDelay(),
			Retryable: isTransient,
		},
		log:     log,
		metrics: metrics,
	}
}

// FetchAdSpend returns the client's ad_spend rows inside p. An empty tenant
// yields no rows without touching the store.
func (f *Fetcher) FetchAdSpend(ctx context.Context, tenant string, p *window.Predicates) ([]AdSpendRecord, error) {
	if isBlank(tenant) {
		return []AdSpendRecord{}, nil
	}

	var rows []AdSpendRow
	err := f.read(ctx, "fetch ad spend", tableAdSpend, func(ctx context.Context) error {
		var err error
		rows, err = f.store.QueryAdSpend(ctx, tenant, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	if found, ok := foreignOwner(rows, tenant, func(r AdSpendRow) *string { return r.ClientName }); ok {
		return nil, f.violation(ctx, tableAdSpend, tenant, found, len(rows))
	}

	out := make([]AdSpendRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, NormalizeAdSpend(row))
	}
	return out, nil
}

// FetchLeads returns the client's leads inside p. Leads without a phone are
// excluded at the query unless the filter asks for them.
func (f *Fetcher) FetchLeads(ctx context.Context, tenant string, p *window.Predicates, filter LeadFilter) ([]LeadRecord, error) {
	if isBlank(tenant) {
		return []LeadRecord{}, nil
	}

	var rows []LeadRow
	err := f.read(ctx, "fetch leads", tableLeads, func(ctx context.Context) error {
		var err error
		rows, err = f.store.QueryLeads(ctx, tenant, p, filter.IncludePhoneless)
		return err
	})
	if err != nil {
		return nil, err
	}

	if found, ok := foreignOwner(rows, tenant, func(r LeadRow) *string { return r.ClientName }); ok {
		return nil, f.violation(ctx, tableLeads, tenant, found, len(rows))
	}

	return normalizeLeads(rows), nil
}

// GetLead loads one lead of the client by its stable id.
func (f *Fetcher) GetLead(ctx context.Context, tenant string, id uuid.UUID) (LeadRecord, error) {
	if isBlank(tenant) {
		return LeadRecord{}, apperr.Validation("no active client")
	}

	var row LeadRow
	err := f.read(ctx, "get lead", tableLeads, func(ctx context.Context) error {
		var err error
		row, err = f.store.QueryLead(ctx, tenant, id)
		return err
	})
	if err != nil {
		return LeadRecord{}, err
	}
	if owner(row.ClientName) != tenant {
		return LeadRecord{}, f.violation(ctx, tableLeads, tenant, owner(row.ClientName), 1)
	}
	return NormalizeLead(row), nil
}

// WriteLeadStatus sets leads.status for one open lead of the client, provided
// it is still in change.From. Writes are never retried.
func (f *Fetcher) WriteLeadStatus(ctx context.Context, tenant string, id uuid.UUID, change StatusChange) (LeadRecord, error) {
	if isBlank(tenant) {
		return LeadRecord{}, apperr.Validation("no active client")
	}
	row, err := f.store.UpdateLeadStatus(ctx, tenant, id, change)
	return f.afterWrite(ctx, "write lead status", tenant, row, err)
}

// WriteSaleClosure records the sale and closes the lead in one statement. Only
// a lead that is still Scheduled without a sale is closed.
func (f *Fetcher) WriteSaleClosure(ctx context.Context, tenant string, id uuid.UUID, closure SaleClosure) (LeadRecord, error) {
	if isBlank(tenant) {
		return LeadRecord{}, apperr.Validation("no active client")
	}
	row, err := f.store.UpdateSaleClosure(ctx, tenant, id, closure)
	return f.afterWrite(ctx, "write sale closure", tenant, row, err)
}

func (f *Fetcher) afterWrite(ctx context.Context, op, tenant string, row LeadRow, err error) (LeadRecord, error) {
	var mismatch *TenantMismatchError
	switch {
	case err == nil:
	case errors.As(err, &mismatch):
		return LeadRecord{}, f.violation(ctx, tableLeads, tenant, mismatch.Found, 1)
	case errors.Is(err, ErrNotFound):
		return LeadRecord{}, apperr.NotFound("lead not found")
	case errors.Is(err, ErrStageChanged):
		return LeadRecord{}, apperr.Validation("lead changed stage since it was loaded; reload the pipeline and try again")
	case isContextErr(err):
		return LeadRecord{}, err
	default:
		f.logger(ctx).DatabaseError(op, err)
		return LeadRecord{}, apperr.Wrap(apperr.KindInternal, op+" failed", err)
	}

	if owner(row.ClientName) != tenant {
		return LeadRecord{}, f.violation(ctx, tableLeads, tenant, owner(row.ClientName), 1)
	}
	return NormalizeLead(row), nil
}

func (f *Fetcher) read(ctx context.Context, op, table string, fn func(context.Context) error) error {
	policy := f.policy
	policy.OnRetry = func(attempt int, err error) {
		f.metrics.FetchRetry(table)
		f.logger(ctx).Warn("retrying store read", "operation", op, "attempt", attempt, "error", err)
	}

	err := retry.Do(ctx, op, policy, fn)
	if err == nil {
		return nil
	}

	var exhausted *retry.ExhaustedError
	switch {
	case errors.As(err, &exhausted):
		f.metrics.FetchExhausted(table)
		f.logger(ctx).DatabaseError(op, err)
		return apperr.Unavailable(op+" failed after retries", err)
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("lead not found")
	case isContextErr(err):
		return err
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	f.logger(ctx).DatabaseError(op, err)
	return apperr.Wrap(apperr.KindInternal, op+" failed", err)
}

func (f *Fetcher) violation(ctx context.Context, table, requested, found string, rows int) error {
	f.metrics.IsolationViolation(table)
	f.logger(ctx).IsolationViolation(table, requested, found, rows)
	err := apperr.Isolation("records of another client reached a scoped " + table + " result")
	errreport.Capture(ctx, err, map[string]string{
		"table":            table,
		"requested_client": requested,
		"found_client":     found,
	})
	return err
}

func (f *Fetcher) logger(ctx context.Context) *logger.Logger {
	return f.log.WithContext(ctx)
}

func normalizeLeads(rows []LeadRow) []LeadRecord {
	out := make([]LeadRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, NormalizeLead(row))
	}
	return out
}

// foreignOwner returns the first tenant that differs from want.
func foreignOwner[T any](rows []T, want string, ownerOf func(T) *string) (string, bool) {
	for _, row := range rows {
		if got := owner(ownerOf(row)); got != want {
			return got, true
		}
	}
	return "", false
}

// isTransient reports whether a read error may succeed on a later attempt:
// network failures, timeouts, failed connects, errors pgconn marks safe to
// retry, and server errors of the connection, rollback, resource and operator
// intervention classes. Everything else, scan and type errors included, is
// final.
func isTransient(err error) bool {
	if _, ok := apperr.As(err); ok {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows) || isContextErr(err) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) < 2 {
			return false
		}
		switch pgErr.Code[:2] {
		case "08", "40", "53", "57":
			return true
		default:
			return false
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func isBlank(tenant string) bool {
	return strings.TrimSpace(tenant) == ""
}
