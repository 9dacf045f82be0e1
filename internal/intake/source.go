package intake

import (
	"strings"

	"lead_intake_backend/internal/leads/domain"
)

// RequestMeta is what the transport knows about an inbound attempt.
// User-Agent is deliberately absent.
type RequestMeta struct {
	// Integration is the route-declared integration name, if any.
	Integration string
	// IntegrationKey is the value of the X-Integration-Key header.
	IntegrationKey string
	// DirectAPI marks callers authenticated by the API transport.
	DirectAPI bool
	// Internal marks in-process submissions from the CRUD layer.
	Internal bool
}

// Resolver classifies attempts into a Source. It never fails: anything it
// cannot place is a generic webhook.
type Resolver struct {
	keys map[string]domain.Source
}

// NewResolver registers integration keys. integrationKeys maps a key to an
// integration name; keys pointing at unknown integrations are ignored.
func NewResolver(integrationKeys map[string]string) *Resolver {
	keys := make(map[string]domain.Source, len(integrationKeys))
	for key, name := range integrationKeys {
		if src, ok := domain.SourceForIntegration(strings.ToLower(name)); ok {
			keys[key] = src
		}
	}
	return &Resolver{keys: keys}
}

func (r *Resolver) Resolve(meta RequestMeta) domain.Source {
	switch {
	case meta.Internal:
		return domain.SourceInternal
	case meta.DirectAPI:
		return domain.SourceDirectAPI
	}

	if meta.Integration != "" {
		if src, ok := domain.SourceForIntegration(strings.ToLower(meta.Integration)); ok {
			return src
		}
	}
	if meta.IntegrationKey != "" {
		if src, ok := r.keys[meta.IntegrationKey]; ok {
			return src
		}
	}
	return domain.SourceGenericWebhook
}
