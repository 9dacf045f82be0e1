// Package transport holds the JSON shapes of the direct lead API.
package transport

import (
	"time"

	"lead_intake_backend/internal/leads/domain"
)

// CreateLeadRequest is the body of POST /api/v1/leads. Field rules are
// enforced by the intake normalizer so every rejection carries a reason code;
// the tags here only bound the input size.
type CreateLeadRequest struct {
	FullName    string `json:"full_name" validate:"max=200"`
	FirstName   string `json:"first_name,omitempty" validate:"max=100"`
	LastName    string `json:"last_name,omitempty" validate:"max=100"`
	Phone       string `json:"phone" validate:"max=40"`
	Email       string `json:"email,omitempty" validate:"max=254"`
	Product     string `json:"product,omitempty" validate:"max=200"`
	Notes       string `json:"notes,omitempty" validate:"max=4000"`
	Platform    string `json:"platform" validate:"max=40"`
	CampaignID  string `json:"campaign_id,omitempty" validate:"max=64"`
	AssignedTo  string `json:"assigned_to,omitempty" validate:"max=64"`
	Status      string `json:"status,omitempty" validate:"max=40"`
	LeadQuality string `json:"lead_quality,omitempty" validate:"max=40"`
	LeadSource  string `json:"lead_source,omitempty" validate:"max=100"`
}

// Fields flattens the request into raw intake fields.
func (r CreateLeadRequest) Fields() map[string]string {
	return map[string]string{
		"full_name":    r.FullName,
		"first_name":   r.FirstName,
		"last_name":    r.LastName,
		"phone":        r.Phone,
		"email":        r.Email,
		"product":      r.Product,
		"notes":        r.Notes,
		"platform":     r.Platform,
		"campaign_id":  r.CampaignID,
		"assigned_to":  r.AssignedTo,
		"status":       r.Status,
		"lead_quality": r.LeadQuality,
		"lead_source":  r.LeadSource,
	}
}

// LeadResponse is the API representation of a lead.
type LeadResponse struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	FullName    string    `json:"full_name"`
	Email       *string   `json:"email"`
	Product     *string   `json:"product"`
	Notes       *string   `json:"notes"`
	Platform    string    `json:"platform"`
	CampaignID  *string   `json:"campaign_id"`
	AssignedTo  *string   `json:"assigned_to"`
	Status      string    `json:"status"`
	LeadQuality string    `json:"lead_quality"`
	LeadSource  string    `json:"lead_source"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToLeadResponse(l domain.Lead) LeadResponse {
	resp := LeadResponse{
		ID:          l.ID.String(),
		Phone:       l.Phone,
		FullName:    l.FullName,
		Email:       l.Email,
		Product:     l.Product,
		Notes:       l.Notes,
		Platform:    l.Platform,
		Status:      l.Status,
		LeadQuality: l.LeadQuality,
		LeadSource:  l.LeadSource,
		CreatedAt:   l.CreatedAt,
	}
	if l.CampaignID != nil {
		s := l.CampaignID.String()
		resp.CampaignID = &s
	}
	if l.AssignedTo != nil {
		s := l.AssignedTo.String()
		resp.AssignedTo = &s
	}
	return resp
}
