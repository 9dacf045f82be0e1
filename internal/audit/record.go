// Package audit stores one append-only record per terminal lead intake
// outcome. Recording never blocks or fails the intake that produced it.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionLeadCreated            Action = "lead_created"
	ActionLeadDuplicateRejected  Action = "lead_duplicate_rejected"
	ActionLeadValidationRejected Action = "lead_validation_rejected"
	ActionSignatureInvalid       Action = "signature_invalid"
	ActionLeadIntakeFailed       Action = "lead_intake_failed"
)

// Record is one intake outcome.
type Record struct {
	ID            uuid.UUID  `json:"id"`
	ActorID       *uuid.UUID `json:"actor_id,omitempty"`
	Action        Action     `json:"action"`
	SubjectLeadID *uuid.UUID `json:"subject_lead_id,omitempty"`
	Source        string     `json:"source"`
	Reason        *string    `json:"reason,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// NewRecord stamps a record with a fresh id and the current time.
func NewRecord(action Action, source string) Record {
	return Record{
		ID:         uuid.New(),
		Action:     action,
		Source:     source,
		OccurredAt: time.Now().UTC(),
	}
}

// Sink accepts records without blocking the caller.
type Sink interface {
	Record(ctx context.Context, rec Record)
}

// Writer persists a record.
type Writer interface {
	Insert(ctx context.Context, rec Record) error
}
