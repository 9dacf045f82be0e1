// Package webhook exposes the public lead webhook endpoint for advertising
// platforms and generic form tools.
package webhook

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"lead_intake_backend/internal/intake"
	"lead_intake_backend/internal/leads/domain"
	"lead_intake_backend/platform/apperr"
	"lead_intake_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes bounds a single delivery.
const maxBodyBytes = 1 << 20

const (
	headerSignature      = "X-Hub-Signature-256"
	headerSignatureAlias = "X-Signature"
	headerIntegrationKey = "X-Integration-Key"
)

// Submitter runs a delivery through the intake pipeline. Reject audits
// deliveries whose body could not be read.
type Submitter interface {
	Submit(ctx context.Context, sub intake.Submission) (intake.Result, error)
	Reject(ctx context.Context, meta intake.RequestMeta, actor domain.ActorContext, reason, field, message string) error
}

// Handler handles webhook HTTP requests.
type Handler struct {
	intake      Submitter
	verifyToken string
	archive     PayloadArchiver
	log         *logger.Logger
}

// NewHandler creates a webhook handler. archive may be nil.
func NewHandler(svc Submitter, verifyToken string, archive PayloadArchiver, log *logger.Logger) *Handler {
	return &Handler{intake: svc, verifyToken: verifyToken, archive: archive, log: log}
}

type submitResponse struct {
	Success bool   `json:"success"`
	LeadID  string `json:"lead_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HandleVerify answers the subscription handshake used by Meta-style
// platforms. Both underscore and dotted parameter names are accepted.
// GET /api/v1/webhooks/leads[/:integration]
func (h *Handler) HandleVerify(c *gin.Context) {
	challenge := firstQuery(c, "hub_challenge", "hub.challenge")
	token := firstQuery(c, "hub_verify_token", "hub.verify_token")

	if challenge != "" && token != "" && h.tokenMatches(token) {
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(challenge))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "lead webhook is active"})
}

func (h *Handler) tokenMatches(token string) bool {
	if h.verifyToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) == 1
}

// HandleDelivery accepts a lead delivery.
// POST /api/v1/webhooks/leads[/:integration]
func (h *Handler) HandleDelivery(c *gin.Context) {
	ctx := c.Request.Context()
	meta := intake.RequestMeta{
		Integration:    c.Param("integration"),
		IntegrationKey: c.GetHeader(headerIntegrationKey),
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = h.intake.Reject(ctx, meta, domain.Anonymous(), intake.ReasonPayloadTooLarge, "", "payload too large")
			c.JSON(http.StatusRequestEntityTooLarge, submitResponse{Error: intake.ReasonPayloadTooLarge})
			return
		}
		_ = h.intake.Reject(ctx, meta, domain.Anonymous(), intake.ReasonMalformedPayload, "", "request body could not be read")
		c.JSON(http.StatusBadRequest, submitResponse{Error: intake.ReasonMalformedPayload})
		return
	}

	signature := c.GetHeader(headerSignature)
	if signature == "" {
		signature = c.GetHeader(headerSignatureAlias)
	}

	res, err := h.intake.Submit(ctx, intake.Submission{
		Meta:        meta,
		Body:        body,
		ContentType: c.ContentType(),
		Signature:   signature,
	})

	if h.archive != nil {
		h.archive.Archive(ctx, res.Source.String(), archiveOutcome(err), c.ContentType(), body)
	}

	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, submitResponse{Success: true, LeadID: res.Lead.ID.String()})
}

// writeError gives webhook callers coarse codes only.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case intake.IsUnauthenticated(err):
		c.JSON(http.StatusUnauthorized, submitResponse{Error: "unauthorized"})
	case intake.IsValidation(err), intake.IsDuplicate(err):
		c.JSON(http.StatusBadRequest, submitResponse{Error: intake.Reason(err)})
	default:
		_ = c.Error(err)
		h.log.WithContext(c.Request.Context()).Error("webhook delivery failed",
			slog.String("kind", apperr.GetKind(err).String()),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, submitResponse{Error: "internal error"})
	}
}

func archiveOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case intake.IsUnauthenticated(err):
		return "unauthenticated"
	case intake.IsDuplicate(err):
		return "duplicate"
	case intake.IsValidation(err):
		return "invalid"
	default:
		return "failed"
	}
}

func firstQuery(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.Query(name)); v != "" {
			return v
		}
	}
	return ""
}
