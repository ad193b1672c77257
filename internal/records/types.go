// Package records is the only path between the dashboard and the ad_spend
// and leads tables. Every read and write is scoped to one client, and every
// result is checked for foreign-client rows before it leaves the package.
package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketing_dashboard_backend/internal/window"

	"github.com/google/uuid"
)

// Status values written to leads.status by the pipeline.
const (
	StatusContacted = "Contacted"
	StatusScheduled = "Scheduled"
	StatusClosed    = "Closed"
)

const (
	tableAdSpend = "ad_spend"
	tableLeads   = "leads"
)

// ErrNotFound is returned by stores when a scoped lead lookup matches nothing.
var ErrNotFound = errors.New("lead not found")

// ErrStageChanged is returned by a store write when the locked row is no
// longer in the state the move was validated against.
var ErrStageChanged = errors.New("lead changed since it was read")

// TenantMismatchError is returned by a store write when the locked row
// belongs to another client.
type TenantMismatchError struct {
	Requested string
	Found     string
}

func (e *TenantMismatchError) Error() string {
	return fmt.Sprintf("lead belongs to client %q, not %q", e.Found, e.Requested)
}

// AdSpendRecord is one normalized ad_spend row. Missing numeric fields read 0
// and set the matching Missing flag.
type AdSpendRecord struct {
	ClientName      string    `json:"clientName"`
	Date            time.Time `json:"date"`
	CampaignName    string    `json:"campaignName"`
	AdsetName       string    `json:"adsetName"`
	AdName          string    `json:"adName"`
	Spend           float64   `json:"spend"`
	Reach           int64     `json:"reach"`
	Impressions     int64     `json:"impressions"`
	LinkClicks      int64     `json:"linkClicks"`
	MessagesStarted int64     `json:"messagesStarted"`
	MissingSpend    bool      `json:"missingSpend"`
	MissingReach    bool      `json:"missingReach"`
}

// LeadRecord is one normalized leads row.
type LeadRecord struct {
	ID           uuid.UUID  `json:"id"`
	ClientName   string     `json:"clientName"`
	CreatedAt    time.Time  `json:"createdAt"`
	Phone        string     `json:"phone"`
	Name         string     `json:"name"`
	SaleAmount   *float64   `json:"saleAmount,omitempty"`
	Status       string     `json:"status,omitempty"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CampaignName string     `json:"campaignName"`
	AdsetName    string     `json:"adsetName"`
	AdName       string     `json:"adName"`
}

// HasSale reports whether a sale amount was recorded.
func (l LeadRecord) HasSale() bool {
	return l.SaleAmount != nil
}

// LeadFilter controls the phone precondition applied at the query.
type LeadFilter struct {
	// IncludePhoneless returns leads with NULL or blank phone as well.
	IncludePhoneless bool
}

// SaleClosure is written in a single statement together with status=Closed.
type SaleClosure struct {
	Amount   float64
	ClosedAt time.Time
	Notes    string
}

// Applies reports whether lead is still an open Scheduled lead. Only those
// may be closed; a recorded sale is never overwritten.
func (SaleClosure) Applies(lead LeadRecord) bool {
	return !lead.HasSale() && lead.Status == StatusScheduled
}

// StatusChange moves an open lead between Contacted and Scheduled. From is
// the status the move was validated against.
type StatusChange struct {
	From   string
	Status string
}

// Applies reports whether lead is still open and on the same side of
// Scheduled as From. Any status other than Scheduled counts as Contacted.
func (c StatusChange) Applies(lead LeadRecord) bool {
	if lead.HasSale() {
		return false
	}
	return (lead.Status == StatusScheduled) == (c.From == StatusScheduled)
}

// AdSpendRow is an ad_spend row as scanned from the store.
type AdSpendRow struct {
	ClientName      *string
	Date            time.Time
	CampaignName    *string
	AdsetName       *string
	AdName          *string
	Spend           *float64
	Reach           *int64
	Impressions     *int64
	LinkClicks      *int64
	MessagesStarted *int64
}

// LeadRow is a leads row as scanned from the store.
type LeadRow struct {
	ID           uuid.UUID
	ClientName   *string
	CreatedAt    time.Time
	Phone        *string
	Name         *string
	SaleAmount   *float64
	Status       *string
	ClosedAt     *time.Time
	Notes        *string
	CampaignName *string
	AdsetName    *string
	AdName       *string
}

// Store is the backing table access. Implementations must filter every query
// by client_name; the Fetcher still verifies the results.
type Store interface {
	QueryAdSpend(ctx context.Context, tenant string, p *window.Predicates) ([]AdSpendRow, error)
	QueryLeads(ctx context.Context, tenant string, p *window.Predicates, includePhoneless bool) ([]LeadRow, error)
	QueryLead(ctx context.Context, tenant string, id uuid.UUID) (LeadRow, error)
	UpdateLeadStatus(ctx context.Context, tenant string, id uuid.UUID, change StatusChange) (LeadRow, error)
	UpdateSaleClosure(ctx context.Context, tenant string, id uuid.UUID, closure SaleClosure) (LeadRow, error)
}
