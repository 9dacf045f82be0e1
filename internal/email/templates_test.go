package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLeadAssignedEscapesInput(t *testing.T) {
	subject, content, err := renderLeadAssigned(LeadAssignedEmail{
		WorkerName:   "Sam",
		LeadName:     "<b>Jane</b>",
		LeadPhone:    "+31612000001",
		LeadPlatform: "Meta",
		LeadID:       "abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "New lead assigned: <b>Jane</b>", subject)
	assert.Contains(t, content, "Hi Sam,")
	assert.Contains(t, content, "+31612000001")
	assert.Contains(t, content, "&lt;b&gt;Jane&lt;/b&gt;")
	assert.False(t, strings.Contains(content, "<b>Jane</b>"))
}

func TestBuildMessageSetsHeaders(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "", "", "desk@example.com", "Lead Desk")

	msg, err := s.buildMessage("sam@example.com", "Hello", "<p>hi</p>")
	require.NoError(t, err)

	to := msg.GetTo()
	require.Len(t, to, 1)
	assert.Equal(t, "sam@example.com", to[0].Address)
}

func TestBuildMessageRejectsBadRecipient(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "", "", "desk@example.com", "Lead Desk")

	_, err := s.buildMessage("not an address", "Hello", "<p>hi</p>")
	assert.Error(t, err)
}

type smtpDisabled struct{}

func (smtpDisabled) GetSMTPHost() string     { return "" }
func (smtpDisabled) GetSMTPPort() int        { return 587 }
func (smtpDisabled) GetSMTPUsername() string { return "" }
func (smtpDisabled) GetSMTPPassword() string { return "" }
func (smtpDisabled) GetSMTPFrom() string     { return "" }
func (smtpDisabled) GetSMTPFromName() string { return "" }
func (smtpDisabled) IsSMTPEnabled() bool     { return false }

func TestNewSenderWithoutSMTPIsNoop(t *testing.T) {
	sender := NewSender(smtpDisabled{})

	assert.IsType(t, NoopSender{}, sender)
	assert.NoError(t, sender.SendLeadAssignedEmail(context.Background(), "x@example.com", LeadAssignedEmail{}))
}
