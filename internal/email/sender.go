// Package email renders and delivers transactional emails.
package email

import (
	"context"

	"lead_intake_backend/platform/config"
)

// LeadAssignedEmail describes a freshly routed lead for the assignee.
type LeadAssignedEmail struct {
	WorkerName   string
	LeadName     string
	LeadPhone    string
	LeadPlatform string
	LeadID       string
}

type Sender interface {
	SendLeadAssignedEmail(ctx context.Context, toEmail string, data LeadAssignedEmail) error
}

// NoopSender is used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendLeadAssignedEmail(context.Context, string, LeadAssignedEmail) error {
	return nil
}

// NewSender returns an SMTP sender, or NoopSender when SMTP is disabled.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsSMTPEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetSMTPFrom(),
		cfg.GetSMTPFromName(),
	)
}
