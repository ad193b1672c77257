// Package notification turns domain events into operator alerts. Domain
// modules publish events and never talk to mail providers directly.
package notification

import (
	"context"
	"sync"
	"time"

	"marketing_dashboard_backend/internal/email"
	"marketing_dashboard_backend/internal/events"
	"marketing_dashboard_backend/platform/logger"
)

// alertCooldown keeps a client that stays below threshold from alerting on
// every audit run.
const alertCooldown = 20 * time.Hour

type Module struct {
	sender     email.Sender
	recipients []string
	log        *logger.Logger

	mu        sync.Mutex
	lastAlert map[string]time.Time
	now       func() time.Time
}

func New(sender email.Sender, recipients []string, log *logger.Logger) *Module {
	return &Module{
		sender:     sender,
		recipients: recipients,
		log:        log,
		lastAlert:  make(map[string]time.Time),
		now:        time.Now,
	}
}

func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.NameQualityDegraded, m)
	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QualityDegraded:
		return m.handleQualityDegraded(ctx, e)
	}
	return nil
}

func (m *Module) handleQualityDegraded(ctx context.Context, e events.QualityDegraded) error {
	if len(m.recipients) == 0 {
		m.log.Warn("quality degraded but no alert recipients configured", "client", e.ClientName, "score", e.Score)
		return nil
	}
	if !m.claim(e.ClientName) {
		m.log.Debug("quality alert suppressed by cooldown", "client", e.ClientName)
		return nil
	}

	err := m.sender.SendQualityAlert(ctx, m.recipients, email.QualityAlert{
		ClientName: e.ClientName,
		Score:      e.Score,
		Threshold:  e.Threshold,
		Issues:     e.Issues,
	})
	if err != nil {
		m.release(e.ClientName)
		m.log.Error("failed to send quality alert", "client", e.ClientName, "error", err)
		return err
	}

	m.log.Info("quality alert sent", "client", e.ClientName, "score", e.Score, "recipients", len(m.recipients))
	return nil
}

func (m *Module) claim(client string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if last, ok := m.lastAlert[client]; ok && now.Sub(last) < alertCooldown {
		return false
	}
	m.lastAlert[client] = now
	return true
}

func (m *Module) release(client string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lastAlert, client)
}
