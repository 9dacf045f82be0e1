package webhook

import (
	apphttp "lead_intake_backend/internal/http"
	"lead_intake_backend/platform/config"
	"lead_intake_backend/platform/httpkit"
	"lead_intake_backend/platform/logger"
)

// Module is the webhook module implementing http.Module.
type Module struct {
	handler *Handler
	limiter *httpkit.IPRateLimiter
}

// NewModule creates the webhook module. archive may be nil when payload
// archiving is disabled.
func NewModule(svc Submitter, cfg config.WebhookConfig, archive PayloadArchiver, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(svc, cfg.GetWebhookVerifyToken(), archive, log),
		limiter: httpkit.NewPerMinuteLimiter(cfg.GetWebhookRatePerMinute(), log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the public webhook routes. They authenticate by
// signature, not JWT.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhooks/leads")
	group.Use(m.limiter.RateLimit())

	group.GET("", m.handler.HandleVerify)
	group.POST("", m.handler.HandleDelivery)
	group.GET("/:integration", m.handler.HandleVerify)
	group.POST("/:integration", m.handler.HandleDelivery)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
