package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-enrollments/api/swagger"
	"github.com/noah-isme/campus-enrollments/internal/handler"
	"github.com/noah-isme/campus-enrollments/internal/service"
	"github.com/noah-isme/campus-enrollments/pkg/config"
	"github.com/noah-isme/campus-enrollments/pkg/middleware/requestid"
)

func testConfig() *config.Config {
	return &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api/v1"}
}

func TestEngineServesObservabilityRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, api := NewEngine(testConfig(), zap.NewNop(), service.NewMetricsService(), swagger.EnrollmentsInstance, map[string]handler.ReadinessCheck{
		"postgres": func(ctx context.Context) error { return errors.New("down") },
	})
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, requestid.FromContext(c.Request.Context())) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set(requestid.HeaderKey, "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `path="/api/v1/ping"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Campus Enrollments API")
}

func TestEngineHidesDocsInProduction(t *testing.T) {
	cfg := testConfig()
	cfg.Env = config.EnvProduction
	r, _ := NewEngine(cfg, zap.NewNop(), nil, swagger.CoursesInstance, nil)
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
