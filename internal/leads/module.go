// Package leads provides the direct lead API module.
package leads

import (
	apphttp "lead_intake_backend/internal/http"
	"lead_intake_backend/internal/leads/handler"
	"lead_intake_backend/platform/validator"
)

// Module is the leads module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the direct API onto the shared intake pipeline.
func NewModule(svc handler.Submitter, leads handler.LeadReader, val *validator.Validator) *Module {
	return &Module{handler: handler.New(svc, leads, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts the authenticated lead routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

var _ apphttp.Module = (*Module)(nil)
