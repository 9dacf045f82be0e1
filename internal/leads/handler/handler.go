// Package handler serves the authenticated direct lead API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"lead_intake_backend/internal/intake"
	"lead_intake_backend/internal/leads/domain"
	"lead_intake_backend/internal/leads/repository"
	"lead_intake_backend/internal/leads/transport"
	"lead_intake_backend/platform/httpkit"
	"lead_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgLeadNotFound     = "lead not found"
)

// Submitter runs a direct API submission through intake. Reject audits
// requests that never reach the pipeline.
type Submitter interface {
	Submit(ctx context.Context, sub intake.Submission) (intake.Result, error)
	Reject(ctx context.Context, meta intake.RequestMeta, actor domain.ActorContext, reason, field, message string) error
}

// LeadReader loads committed leads.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
}

type Handler struct {
	intake Submitter
	leads  LeadReader
	val    *validator.Validator
}

func New(svc Submitter, leads LeadReader, val *validator.Validator) *Handler {
	return &Handler{intake: svc, leads: leads, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
}

// Create submits a lead on behalf of the authenticated caller.
// POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	id, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	meta := intake.RequestMeta{DirectAPI: true}
	actor := domain.NewActor(id.UserID, id.Roles)

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.intake.Reject(ctx, meta, actor, intake.ReasonMalformedPayload, "", msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		field, _ := validator.FirstFailure(err)
		httpkit.HandleError(c, h.intake.Reject(ctx, meta, actor, intake.ReasonMalformedPayload, field, msgValidationFailed))
		return
	}

	res, err := h.intake.Submit(ctx, intake.Submission{
		Meta:   meta,
		Actor:  actor,
		Fields: intake.Canonicalize(req.Fields()),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToLeadResponse(res.Lead))
}

// GetByID returns a committed lead.
// GET /api/v1/leads/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.leads.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		httpkit.Error(c, http.StatusNotFound, msgLeadNotFound, nil)
		return
	}
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}
