package domain

// Source classifies the channel an intake attempt arrived on.
type Source string

const (
	SourceMetaWebhook     Source = "meta_webhook"
	SourceTikTokWebhook   Source = "tiktok_webhook"
	SourceSnapchatWebhook Source = "snapchat_webhook"
	SourceWhatsAppWebhook Source = "whatsapp_webhook"
	SourceGenericWebhook  Source = "generic_webhook"
	SourceDirectAPI       Source = "direct_api"
	SourceInternal        Source = "internal"
)

type sourceInfo struct {
	integration string
	platform    string
	leadSource  string
}

var sources = map[Source]sourceInfo{
	SourceMetaWebhook:     {integration: "meta", platform: PlatformMeta, leadSource: "Meta Ads"},
	SourceTikTokWebhook:   {integration: "tiktok", platform: PlatformTikTok, leadSource: "TikTok Ads"},
	SourceSnapchatWebhook: {integration: "snapchat", platform: PlatformSnapchat, leadSource: "Snapchat Ads"},
	SourceWhatsAppWebhook: {integration: "whatsapp", platform: PlatformWhatsApp, leadSource: "WhatsApp"},
	SourceGenericWebhook:  {integration: "generic", leadSource: "Webhook"},
	SourceDirectAPI:       {leadSource: "API"},
	SourceInternal:        {leadSource: "Manual"},
}

// SourceForIntegration maps an integration name (route segment or
// integration key target) to its webhook source.
func SourceForIntegration(name string) (Source, bool) {
	for src, info := range sources {
		if info.integration != "" && info.integration == name {
			return src, true
		}
	}
	return "", false
}

// IsWebhook reports whether the source is an external webhook.
func (s Source) IsWebhook() bool {
	return sources[s].integration != ""
}

// Integration is the key used for per-source webhook settings.
func (s Source) Integration() string {
	return sources[s].integration
}

// DefaultPlatform is the platform assumed when a payload omits one.
// Empty for sources that carry no implied platform.
func (s Source) DefaultPlatform() string {
	return sources[s].platform
}

// DefaultLeadSource is the lead_source tag used when the payload has none.
func (s Source) DefaultLeadSource() string {
	if info, ok := sources[s]; ok {
		return info.leadSource
	}
	return "Webhook"
}

func (s Source) String() string { return string(s) }
