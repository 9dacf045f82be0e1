// Package directory provides read-only lookups against the worker and
// campaign directories used to validate and route leads.
package directory

import (
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("directory entry not found")

const (
	RoleAdmin     = "admin"
	RoleMarketing = "marketing"
	RoleSales     = "sales"

	WorkerActive   = "active"
	WorkerInactive = "inactive"

	CampaignDraft     = "draft"
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
	CampaignCancelled = "cancelled"
)

type Worker struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Status string    `json:"status"`
}

// IsEligibleAssignee reports whether leads may be routed to the worker.
func (w Worker) IsEligibleAssignee() bool {
	return w.Role == RoleSales && w.Status == WorkerActive
}

type Campaign struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Status string    `json:"status"`
}

// IsActive reports whether leads may reference the campaign.
func (c Campaign) IsActive() bool {
	return c.Status == CampaignActive
}
