package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "lead_intake_backend/internal/http"
	"lead_intake_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type testConfig struct{}

func (testConfig) GetHTTPAddr() string        { return ":0" }
func (testConfig) GetCORSAllowAll() bool      { return false }
func (testConfig) GetCORSOrigins() []string   { return []string{"https://crm.example.com"} }
func (testConfig) GetCORSAllowCreds() bool    { return false }
func (testConfig) GetJWTAccessSecret() string { return "s3cret" }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type stubModule struct{}

func (stubModule) Name() string { return "stub" }

func (stubModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/public", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	ctx.Protected.GET("/private", func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

func newEngine(health apphttp.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config:  testConfig{},
		Logger:  logger.Discard(),
		Health:  health,
		Modules: []apphttp.Module{stubModule{}},
	})
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(newEngine(pinger{}), "/api/health").Code)
	assert.Equal(t, http.StatusOK, get(newEngine(pinger{}), "/api/ready").Code)

	down := newEngine(pinger{err: errors.New("db down")})
	assert.Equal(t, http.StatusOK, get(down, "/api/health").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(down, "/api/ready").Code)
}

func TestModuleRoutesAndAuthGroup(t *testing.T) {
	r := newEngine(pinger{})

	assert.Equal(t, http.StatusNoContent, get(r, "/api/v1/public").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/private").Code)
}

func TestMetricsEndpointAndRequestID(t *testing.T) {
	r := newEngine(pinger{})
	get(r, "/api/health")

	rec := get(r, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := newEngine(pinger{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/public", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://crm.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
