// Package domain holds the lead intake value types shared across packages.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lead is a committed inbound sales lead. Phone is the E.164 dedup key.
type Lead struct {
	ID          uuid.UUID
	Phone       string
	FullName    string
	Email       *string
	Product     *string
	Notes       *string
	Platform    string
	CampaignID  *uuid.UUID
	AssignedTo  *uuid.UUID
	Status      string
	LeadQuality string
	LeadSource  string
	CreatedAt   time.Time
}

const (
	PlatformMeta       = "Meta"
	PlatformTikTok     = "TikTok"
	PlatformSnapchat   = "Snapchat"
	PlatformWhatsApp   = "WhatsApp"
	PlatformGoogle     = "Google"
	PlatformDirectCall = "DirectCall"
	PlatformWebsite    = "Website"
	PlatformOther      = "Other"
)

const (
	StatusNew        = "new"
	StatusContacted  = "contacted"
	StatusInterested = "interested"
	StatusFollowUp   = "follow-up"
	StatusClosedWon  = "closed-won"
	StatusClosedLost = "closed-lost"
	StatusNoResponse = "no-response"
)

const (
	QualityHot  = "hot"
	QualityWarm = "warm"
	QualityCold = "cold"
)

var knownPlatforms = canonicalSet(
	PlatformMeta, PlatformTikTok, PlatformSnapchat, PlatformWhatsApp,
	PlatformGoogle, PlatformDirectCall, PlatformWebsite, PlatformOther,
)

var knownStatuses = canonicalSet(
	StatusNew, StatusContacted, StatusInterested, StatusFollowUp,
	StatusClosedWon, StatusClosedLost, StatusNoResponse,
)

var knownQualities = canonicalSet(QualityHot, QualityWarm, QualityCold)

func canonicalSet(values ...string) map[string]string {
	m := make(map[string]string, len(values))
	for _, v := range values {
		m[strings.ToLower(v)] = v
	}
	return m
}

func lookup(set map[string]string, value string) (string, bool) {
	canonical, ok := set[strings.ToLower(strings.TrimSpace(value))]
	return canonical, ok
}

// CanonicalPlatform matches value case-insensitively against the platform
// enum and returns the stored spelling.
func CanonicalPlatform(value string) (string, bool) {
	return lookup(knownPlatforms, value)
}

// CanonicalStatus matches value case-insensitively against the status enum.
func CanonicalStatus(value string) (string, bool) {
	return lookup(knownStatuses, value)
}

// CanonicalQuality matches value case-insensitively against the quality enum.
func CanonicalQuality(value string) (string, bool) {
	return lookup(knownQualities, value)
}
