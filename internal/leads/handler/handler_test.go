package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lead_intake_backend/internal/intake"
	"lead_intake_backend/internal/leads/domain"
	"lead_intake_backend/internal/leads/repository"
	"lead_intake_backend/platform/apperr"
	"lead_intake_backend/platform/httpkit"
	"lead_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIntake struct {
	got     intake.Submission
	res     intake.Result
	err     error
	rejects []intake.Details
}

func (f *fakeIntake) Reject(_ context.Context, meta intake.RequestMeta, _ domain.ActorContext, reason, field, message string) error {
	if meta.DirectAPI {
		f.rejects = append(f.rejects, intake.Details{Reason: reason, Field: field})
	}
	return apperr.Validation(message).WithDetails(intake.Details{Reason: reason, Field: field})
}

func (f *fakeIntake) Submit(_ context.Context, sub intake.Submission) (intake.Result, error) {
	f.got = sub
	return f.res, f.err
}

type fakeLeads map[uuid.UUID]domain.Lead

func (f fakeLeads) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	l, ok := f[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return l, nil
}

var actorID = uuid.MustParse("7d0f6c6b-9c1e-4b0a-8d55-3b9f1a2c4e01")

func newRouter(h *Handler, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/leads")
	if authenticated {
		rg.Use(func(c *gin.Context) {
			c.Set(httpkit.ContextUserIDKey, actorID)
			c.Set(httpkit.ContextRolesKey, []string{domain.RoleMarketing})
			c.Next()
		})
	}
	h.RegisterRoutes(rg)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateSubmitsAsDirectAPIWithActor(t *testing.T) {
	email := "jane@example.com"
	lead := domain.Lead{
		ID: uuid.New(), Phone: "+31612000001", FullName: "Jane Doe", Email: &email,
		Platform: domain.PlatformWebsite, Status: domain.StatusNew, LeadQuality: domain.QualityWarm,
		LeadSource: "API", CreatedAt: time.Now(),
	}
	fake := &fakeIntake{res: intake.Result{Lead: lead, Source: domain.SourceDirectAPI}}
	r := newRouter(New(fake, fakeLeads{}, validator.New()), true)

	rec := post(r, `{"first_name":"Jane","last_name":"Doe","phone":"0612000001","platform":"website","status":"contacted"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, lead.ID.String(), body["id"])
	assert.Equal(t, "+31612000001", body["phone"])
	assert.Equal(t, "jane@example.com", body["email"])
	assert.Nil(t, body["assigned_to"])

	assert.True(t, fake.got.Meta.DirectAPI)
	require.NotNil(t, fake.got.Actor.ActorID)
	assert.Equal(t, actorID, *fake.got.Actor.ActorID)
	assert.True(t, fake.got.Actor.IsPrivileged())
	assert.Equal(t, "Jane Doe", fake.got.Fields.Get(intake.FieldFullName))
	assert.Equal(t, "contacted", fake.got.Fields.Get(intake.FieldStatus))
	assert.Nil(t, fake.got.Body)
}

func TestCreateRequiresIdentity(t *testing.T) {
	fake := &fakeIntake{}
	r := newRouter(New(fake, fakeLeads{}, validator.New()), false)

	rec := post(r, `{"full_name":"Jane"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, fake.got.Meta.DirectAPI)
}

func TestCreateErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"validation", apperr.Validation("platform is not supported").WithDetails(intake.Details{Reason: intake.ReasonInvalidPlatform, Field: intake.FieldPlatform}), http.StatusBadRequest, intake.ReasonInvalidPlatform},
		{"duplicate", apperr.Conflict("exists").WithDetails(intake.Details{Reason: intake.ReasonDuplicatePhone}), http.StatusConflict, intake.ReasonDuplicatePhone},
		{"dependency", apperr.Dependency("lead store unavailable", errors.New("refused")), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(New(&fakeIntake{err: tt.err}, fakeLeads{}, validator.New()), true)
			rec := post(r, `{"full_name":"Jane","phone":"0612000001","platform":"Instagram"}`)

			assert.Equal(t, tt.status, rec.Code)
			var body struct {
				Error   string `json:"error"`
				Details struct {
					Reason string `json:"reason"`
				} `json:"details"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.reason, body.Details.Reason)
			assert.NotContains(t, rec.Body.String(), "refused")
		})
	}
}

func TestCreateRejectsMalformedJSON(t *testing.T) {
	fake := &fakeIntake{}
	r := newRouter(New(fake, fakeLeads{}, validator.New()), true)

	rec := post(r, `{"full_name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), intake.ReasonMalformedPayload)
	assert.False(t, fake.got.Meta.DirectAPI)
	assert.Equal(t, []intake.Details{{Reason: intake.ReasonMalformedPayload}}, fake.rejects)
}

func TestCreateRejectsOversizedFieldThroughIntake(t *testing.T) {
	fake := &fakeIntake{}
	r := newRouter(New(fake, fakeLeads{}, validator.New()), true)

	rec := post(r, `{"full_name":"`+strings.Repeat("x", 300)+`","phone":"0612000001","platform":"website"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, fake.got.Meta.DirectAPI)
	require.Len(t, fake.rejects, 1)
	assert.Equal(t, intake.ReasonMalformedPayload, fake.rejects[0].Reason)
	assert.Equal(t, "FullName", fake.rejects[0].Field)
}

func TestGetByID(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Phone: "+31612000001", FullName: "Jane", Platform: domain.PlatformMeta}
	r := newRouter(New(&fakeIntake{}, fakeLeads{lead.ID: lead}, validator.New()), true)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/"+lead.ID.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), lead.ID.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
