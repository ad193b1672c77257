package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"marketing_dashboard_backend/internal/analytics"
	"marketing_dashboard_backend/internal/events"
	"marketing_dashboard_backend/internal/records"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/apperr"
	"marketing_dashboard_backend/platform/logger"
	"marketing_dashboard_backend/platform/sanitize"

	"github.com/google/uuid"
)

// LeadStore is the scoped fetcher as used by the pipeline.
type LeadStore interface {
	FetchLeads(ctx context.Context, tenant string, p *window.Predicates, filter records.LeadFilter) ([]records.LeadRecord, error)
	GetLead(ctx context.Context, tenant string, id uuid.UUID) (records.LeadRecord, error)
	WriteLeadStatus(ctx context.Context, tenant string, id uuid.UUID, change records.StatusChange) (records.LeadRecord, error)
	WriteSaleClosure(ctx context.Context, tenant string, id uuid.UUID, closure records.SaleClosure) (records.LeadRecord, error)
}

type Board struct {
	Client       string               `json:"client"`
	Contacted    []records.LeadRecord `json:"contacted"`
	Scheduled    []records.LeadRecord `json:"scheduled"`
	Closed       []records.LeadRecord `json:"closed"`
	WithoutPhone []records.LeadRecord `json:"withoutPhone"`
}

// SaleConfirmation is what the user confirms when closing a lead.
type SaleConfirmation struct {
	Amount   float64
	ClosedAt *time.Time
	Notes    string
}

type Service struct {
	store LeadStore
	bus   events.Bus
	log   *logger.Logger
	now   func() time.Time
}

func NewService(store LeadStore, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log, now: time.Now}
}

// Board groups the client's leads inside p by derived stage.
func (s *Service) Board(ctx context.Context, tenant string, p *window.Predicates) (Board, error) {
	board := Board{
		Client:       tenant,
		Contacted:    []records.LeadRecord{},
		Scheduled:    []records.LeadRecord{},
		Closed:       []records.LeadRecord{},
		WithoutPhone: []records.LeadRecord{},
	}
	leads, err := s.store.FetchLeads(ctx, tenant, p, records.LeadFilter{IncludePhoneless: true})
	if err != nil {
		return Board{}, err
	}

	for _, lead := range leads {
		stage, ok := Derive(lead)
		switch {
		case !ok:
			board.WithoutPhone = append(board.WithoutPhone, lead)
		case stage == StageClosed:
			board.Closed = append(board.Closed, lead)
		case stage == StageScheduled:
			board.Scheduled = append(board.Scheduled, lead)
		default:
			board.Contacted = append(board.Contacted, lead)
		}
	}
	return board, nil
}

// Move changes a lead between Contacted and Scheduled with a single status
// write. Closing goes through Close.
func (s *Service) Move(ctx context.Context, tenant string, leadID uuid.UUID, target Stage, actorID uuid.UUID) (records.LeadRecord, error) {
	lead, from, err := s.current(ctx, tenant, leadID)
	if err != nil {
		return records.LeadRecord{}, err
	}
	if err := ValidateTransition(from, target); err != nil {
		return records.LeadRecord{}, err
	}
	if target == StageClosed {
		return records.LeadRecord{}, apperr.Validation("closing a lead requires a sale confirmation")
	}

	updated, err := s.store.WriteLeadStatus(ctx, tenant, lead.ID, records.StatusChange{
		From:   string(from),
		Status: string(target),
	})
	if err != nil {
		return records.LeadRecord{}, err
	}
	s.published(ctx, tenant, lead.ID, from, target, actorID)
	return updated, nil
}

// Close records a confirmed sale on a Scheduled lead. Status, amount,
// closing time and notes are written together in one call.
func (s *Service) Close(ctx context.Context, tenant string, leadID uuid.UUID, confirm SaleConfirmation, actorID uuid.UUID) (records.LeadRecord, error) {
	if math.IsNaN(confirm.Amount) || math.IsInf(confirm.Amount, 0) || confirm.Amount < analytics.MinSaleValue {
		return records.LeadRecord{}, apperr.Validation(fmt.Sprintf("sale amount must be at least %.2f", analytics.MinSaleValue))
	}

	lead, from, err := s.current(ctx, tenant, leadID)
	if err != nil {
		return records.LeadRecord{}, err
	}
	if err := ValidateTransition(from, StageClosed); err != nil {
		return records.LeadRecord{}, err
	}

	closedAt := s.now().UTC()
	if confirm.ClosedAt != nil && !confirm.ClosedAt.IsZero() {
		closedAt = confirm.ClosedAt.UTC()
	}

	updated, err := s.store.WriteSaleClosure(ctx, tenant, lead.ID, records.SaleClosure{
		Amount:   confirm.Amount,
		ClosedAt: closedAt,
		Notes:    sanitize.Text(confirm.Notes),
	})
	if err != nil {
		return records.LeadRecord{}, err
	}
	s.published(ctx, tenant, lead.ID, from, StageClosed, actorID)
	return updated, nil
}

func (s *Service) current(ctx context.Context, tenant string, leadID uuid.UUID) (records.LeadRecord, Stage, error) {
	lead, err := s.store.GetLead(ctx, tenant, leadID)
	if err != nil {
		return records.LeadRecord{}, "", err
	}
	stage, ok := Derive(lead)
	if !ok {
		return records.LeadRecord{}, "", apperr.Validation("lead has no usable phone and is not on the pipeline")
	}
	return lead, stage, nil
}

func (s *Service) published(ctx context.Context, tenant string, leadID uuid.UUID, from, to Stage, actorID uuid.UUID) {
	log := s.log.WithContext(ctx)
	log.Info("lead stage changed", "client", tenant, "leadId", leadID, "from", from, "to", to)
	if s.bus == nil {
		return
	}
	// Synchronous so cached metrics of the client are gone before the response.
	err := s.bus.PublishSync(ctx, events.LeadStageChanged{
		BaseEvent:  events.NewBaseEvent(),
		ClientName: tenant,
		LeadID:     leadID,
		From:       string(from),
		To:         string(to),
		ActorID:    actorID,
	})
	if err != nil {
		log.Error("lead stage change handlers failed", "error", err)
	}
}
