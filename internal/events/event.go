// Package events holds the dashboard's domain events. The bus itself lives
// in platform/events.
package events

import (
	"marketing_dashboard_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

var NewBaseEvent = events.NewBaseEvent

const (
	NameSessionSignedIn     = "auth.session.signed_in"
	NameSessionSignedOut    = "auth.session.signed_out"
	NameActiveClientChanged = "tenants.active.changed"
	NameLeadStageChanged    = "leads.stage.changed"
	NameQualityDegraded     = "analytics.quality.degraded"
)

// =============================================================================
// Auth Domain Events
// =============================================================================

// SessionSignedIn is published after a successful sign-in.
type SessionSignedIn struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
	Role   string    `json:"role"`
}

func (e SessionSignedIn) EventName() string { return NameSessionSignedIn }

// SessionSignedOut is published when a refresh token is revoked by sign-out.
type SessionSignedOut struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
}

func (e SessionSignedOut) EventName() string { return NameSessionSignedOut }

// =============================================================================
// Tenant Domain Events
// =============================================================================

type ActiveClientChanged struct {
	BaseEvent
	UserID   uuid.UUID `json:"userId"`
	Previous string    `json:"previous"`
	Current  string    `json:"current"`
}

func (e ActiveClientChanged) EventName() string { return NameActiveClientChanged }

// =============================================================================
// Pipeline Domain Events
// =============================================================================

// LeadStageChanged is published after a successful pipeline write.
type LeadStageChanged struct {
	BaseEvent
	ClientName string    `json:"clientName"`
	LeadID     uuid.UUID `json:"leadId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ActorID    uuid.UUID `json:"actorId"`
}

func (e LeadStageChanged) EventName() string { return NameLeadStageChanged }

// =============================================================================
// Analytics Domain Events
// =============================================================================

// QualityDegraded is published by the audit job when a client's data quality
// score falls below the alert threshold.
type QualityDegraded struct {
	BaseEvent
	ClientName string   `json:"clientName"`
	Score      int      `json:"score"`
	Threshold  int      `json:"threshold"`
	Issues     []string `json:"issues"`
}

func (e QualityDegraded) EventName() string { return NameQualityDegraded }
