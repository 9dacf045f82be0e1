// Package notification sends notifications in response to domain events.
// Intake publishes events; this module owns email providers and templates.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"lead_intake_backend/internal/email"
	"lead_intake_backend/internal/events"
	"lead_intake_backend/platform/logger"
)

// Module subscribes to intake events. It is not HTTP-facing.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

func New(sender email.Sender, log *logger.Logger) *Module {
	return &Module{sender: sender, log: log}
}

// RegisterHandlers subscribes the module to the events it handles.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadAssigned{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadAssigned:
		return m.handleLeadAssigned(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleLeadAssigned(ctx context.Context, e events.LeadAssigned) error {
	if e.WorkerEmail == "" {
		m.log.WithContext(ctx).Warn("assigned worker has no email address",
			slog.String("worker_id", e.WorkerID.String()))
		return nil
	}

	err := m.sender.SendLeadAssignedEmail(ctx, e.WorkerEmail, email.LeadAssignedEmail{
		WorkerName:   e.WorkerName,
		LeadName:     e.LeadName,
		LeadPhone:    e.LeadPhone,
		LeadPlatform: e.LeadPlatform,
		LeadID:       e.LeadID.String(),
	})
	if err != nil {
		return fmt.Errorf("send lead assigned email to worker %s: %w", e.WorkerID, err)
	}

	m.log.WithContext(ctx).Info("lead assignment email sent",
		slog.String("lead_id", e.LeadID.String()),
		slog.String("worker_id", e.WorkerID.String()),
	)
	return nil
}

var _ events.Handler = (*Module)(nil)
