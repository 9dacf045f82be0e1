package intake

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"lead_intake_backend/internal/leads/domain"
)

const signaturePrefix = "sha256="

// Sign returns "sha256=" followed by the hex HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks provided against the HMAC of body in constant time. An empty
// secret never verifies.
func Verify(body []byte, provided, secret string) bool {
	if secret == "" {
		return false
	}
	provided = strings.TrimSpace(provided)
	if !strings.HasPrefix(provided, signaturePrefix) {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(provided, signaturePrefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// SignatureSettings is the per-integration webhook configuration.
type SignatureSettings interface {
	GetWebhookSecret(integration string) string
	GetWebhookAllowUnsigned() []string
}

// Verifier applies the per-source signature policy.
type Verifier struct {
	secrets       map[domain.Source]string
	allowUnsigned map[domain.Source]bool
}

// NewVerifier snapshots the policy for every webhook source.
func NewVerifier(settings SignatureSettings) *Verifier {
	v := &Verifier{
		secrets:       make(map[domain.Source]string),
		allowUnsigned: make(map[domain.Source]bool),
	}
	for _, src := range webhookSources {
		if secret := settings.GetWebhookSecret(src.Integration()); secret != "" {
			v.secrets[src] = secret
		}
	}
	for _, name := range settings.GetWebhookAllowUnsigned() {
		if src, ok := domain.SourceForIntegration(strings.ToLower(strings.TrimSpace(name))); ok {
			v.allowUnsigned[src] = true
		}
	}
	return v
}

var webhookSources = []domain.Source{
	domain.SourceMetaWebhook,
	domain.SourceTikTokWebhook,
	domain.SourceSnapchatWebhook,
	domain.SourceWhatsAppWebhook,
	domain.SourceGenericWebhook,
}

// Check authenticates a delivery. Direct API and internal submissions are
// authenticated by their transport and always pass. A present signature is
// always verified, even for sources that accept unsigned deliveries.
func (v *Verifier) Check(src domain.Source, body []byte, provided string) error {
	if !src.IsWebhook() {
		return nil
	}
	if strings.TrimSpace(provided) == "" {
		if v.allowUnsigned[src] {
			return nil
		}
		return signatureError()
	}
	if !Verify(body, provided, v.secrets[src]) {
		return signatureError()
	}
	return nil
}
