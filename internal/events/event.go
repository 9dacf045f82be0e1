// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"lead_intake_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Intake Events
// =============================================================================

// LeadIntakeAccepted is published after a lead was committed.
type LeadIntakeAccepted struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	Source   string    `json:"source"`
	Platform string    `json:"platform"`
}

func (e LeadIntakeAccepted) EventName() string { return "leads.intake.accepted" }

// LeadAssigned is published when the assignment policy routed a new lead
// to a worker.
type LeadAssigned struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	WorkerID     uuid.UUID `json:"workerId"`
	WorkerName   string    `json:"workerName"`
	WorkerEmail  string    `json:"workerEmail"`
	LeadName     string    `json:"leadName"`
	LeadPhone    string    `json:"leadPhone"`
	LeadPlatform string    `json:"leadPlatform"`
	Strategy     string    `json:"strategy"`
}

func (e LeadAssigned) EventName() string { return "leads.intake.assigned" }

// LeadIntakeRejected is published for every intake attempt that did not
// produce a lead.
type LeadIntakeRejected struct {
	BaseEvent
	Source string `json:"source"`
	Reason string `json:"reason"`
}

func (e LeadIntakeRejected) EventName() string { return "leads.intake.rejected" }
