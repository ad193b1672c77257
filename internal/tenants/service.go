package tenants

import (
	"context"
	"slices"
	"strings"

	"marketing_dashboard_backend/internal/events"
	"marketing_dashboard_backend/platform/apperr"
	"marketing_dashboard_backend/platform/logger"
	"marketing_dashboard_backend/platform/telemetry"

	"github.com/google/uuid"
)

// Repository lists tenants from data and from the assignment table.
type Repository interface {
	DistinctAdSpendClients(ctx context.Context) ([]string, error)
	DistinctLeadClients(ctx context.Context) ([]string, error)
	AssignedClients(ctx context.Context, userID uuid.UUID) ([]string, error)
	ReplaceAssignments(ctx context.Context, userID uuid.UUID, clients []string) error
}

// Preferences persists the remembered tenant of an identity.
type Preferences interface {
	Remembered(ctx context.Context, userID uuid.UUID) (string, error)
	Remember(ctx context.Context, userID uuid.UUID, tenant string) error
	Forget(ctx context.Context, userID uuid.UUID) error
}

// Invalidator drops cached queries of a tenant.
type Invalidator interface {
	Invalidate(tenant string)
}

type Service struct {
	repo          Repository
	prefs         Preferences
	sessions      *Sessions
	bus           events.Bus
	priorityMatch string
	invalidators  []Invalidator
	log           *logger.Logger
	metrics       *telemetry.Metrics
}

func NewService(repo Repository, prefs Preferences, sessions *Sessions, bus events.Bus, priorityMatch string, log *logger.Logger, metrics *telemetry.Metrics) *Service {
	return &Service{
		repo:          repo,
		prefs:         prefs,
		sessions:      sessions,
		bus:           bus,
		priorityMatch: priorityMatch,
		log:           log,
		metrics:       metrics,
	}
}

// OnInvalidate registers a cache that must forget a tenant before a switch
// away from it commits.
func (s *Service) OnInvalidate(inv Invalidator) {
	s.invalidators = append(s.invalidators, inv)
}

// Accessible returns the sorted set of tenants the identity may act on.
// Admins see every tenant present in ad_spend or leads; members see only
// their assignments.
func (s *Service) Accessible(ctx context.Context, id Identity) ([]string, error) {
	if id.IsAdmin() {
		return s.AllClients(ctx)
	}
	assigned, err := s.repo.AssignedClients(ctx, id.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list assigned clients", err)
	}
	return mergeSorted(assigned), nil
}

// AllClients is the union of both distinct scans.
func (s *Service) AllClients(ctx context.Context) ([]string, error) {
	fromAds, err := s.repo.DistinctAdSpendClients(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list ad spend clients", err)
	}
	fromLeads, err := s.repo.DistinctLeadClients(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list lead clients", err)
	}
	return mergeSorted(fromAds, fromLeads), nil
}

// Resolve returns the accessible set and the default selection.
func (s *Service) Resolve(ctx context.Context, id Identity) (Resolution, error) {
	accessible, err := s.Accessible(ctx, id)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{
		Tenants: accessible,
		Default: SelectDefault(accessible, s.remembered(ctx, id.UserID), s.priorityMatch),
	}, nil
}

// Active returns the identity's committed tenant, resolving and committing
// the default on first use. "" means no data.
func (s *Service) Active(ctx context.Context, id Identity) (string, error) {
	if tenant, committed := s.sessions.Active(id.UserID); committed {
		return tenant, nil
	}
	res, err := s.Resolve(ctx, id)
	if err != nil {
		return "", err
	}
	return s.sessions.CommitIfUnset(id.UserID, res.Default), nil
}

// IsActive reports whether tenant is still the identity's committed tenant.
func (s *Service) IsActive(userID uuid.UUID, tenant string) bool {
	active, committed := s.sessions.Active(userID)
	return committed && active == tenant
}

// Track registers an in-flight fetch; see Sessions.Track.
func (s *Service) Track(ctx context.Context, userID uuid.UUID, key Key) (context.Context, func()) {
	return s.sessions.Track(ctx, userID, key)
}

// ChangeActive switches the identity to requested. The accessible set is
// recomputed here. On success the slot is cleared, fetches and cached
// queries of the previous tenant are dropped, and only then is the new
// tenant committed and remembered.
func (s *Service) ChangeActive(ctx context.Context, id Identity, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	log := s.log.WithContext(ctx)

	accessible, err := s.Accessible(ctx, id)
	if err != nil {
		return "", err
	}
	current, _ := s.sessions.Active(id.UserID)
	if requested == "" || !slices.Contains(accessible, requested) {
		s.metrics.TenantSwitch(false)
		log.TenantSwitch(id.UserID.String(), current, requested, false)
		return "", apperr.Forbidden("client is not accessible to this user")
	}

	previous := s.sessions.BeginSwitch(id.UserID)
	if previous != "" {
		for _, inv := range s.invalidators {
			inv.Invalidate(previous)
		}
	}
	s.sessions.Commit(id.UserID, requested)

	if err := s.prefs.Remember(ctx, id.UserID, requested); err != nil {
		log.Warn("failed to remember active client", "error", err)
	}

	s.metrics.TenantSwitch(true)
	log.TenantSwitch(id.UserID.String(), previous, requested, true)
	if s.bus != nil {
		s.bus.Publish(ctx, events.ActiveClientChanged{
			BaseEvent: events.NewBaseEvent(),
			UserID:    id.UserID,
			Previous:  previous,
			Current:   requested,
		})
	}
	return requested, nil
}

// ListAssignments returns the member's assigned tenants.
func (s *Service) ListAssignments(ctx context.Context, userID uuid.UUID) ([]string, error) {
	assigned, err := s.repo.AssignedClients(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list assigned clients", err)
	}
	return mergeSorted(assigned), nil
}

// ReplaceAssignments overwrites the member's assignment rows and drops the
// member's active slot so the next request resolves against the new set.
func (s *Service) ReplaceAssignments(ctx context.Context, userID uuid.UUID, clients []string) ([]string, error) {
	cleaned := mergeSorted(clients)
	if err := s.repo.ReplaceAssignments(ctx, userID, cleaned); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "replace assigned clients", err)
	}
	s.sessions.Clear(userID)
	return cleaned, nil
}

// RegisterHandlers subscribes to session lifecycle events.
func (s *Service) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.NameSessionSignedIn, events.HandlerFunc(s.onSignedIn))
	bus.Subscribe(events.NameSessionSignedOut, events.HandlerFunc(s.onSignedOut))
}

func (s *Service) onSignedIn(ctx context.Context, event events.Event) error {
	e, ok := event.(events.SessionSignedIn)
	if !ok {
		return nil
	}
	id := Identity{UserID: e.UserID, Role: e.Role}
	s.sessions.Clear(id.UserID)
	_, err := s.Active(ctx, id)
	return err
}

func (s *Service) onSignedOut(ctx context.Context, event events.Event) error {
	e, ok := event.(events.SessionSignedOut)
	if !ok {
		return nil
	}
	s.sessions.Clear(e.UserID)
	return s.prefs.Forget(ctx, e.UserID)
}

func (s *Service) remembered(ctx context.Context, userID uuid.UUID) string {
	tenant, err := s.prefs.Remembered(ctx, userID)
	if err != nil {
		s.log.WithContext(ctx).Warn("failed to read remembered client", "error", err)
		return ""
	}
	return tenant
}
