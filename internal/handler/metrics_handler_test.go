package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-enrollments/internal/service"
)

func TestReadyReportsFailingCheck(t *testing.T) {
	handler := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("dial tcp: connection refused") },
	})
	c, w := newTestContext(http.MethodGet, "/ready", nil)

	handler.Ready(c)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestReadyWithoutChecks(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, nil).Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPrometheusExposesUpstreamMetrics(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveUpstream("course", "ok", 0)
	c, w := newTestContext(http.MethodGet, "/metrics", nil)

	NewMetricsHandler(metrics, nil).Prometheus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `upstream_request_duration_seconds_count{outcome="ok",service="course"} 1`)
}

func TestPrometheusWithoutMetrics(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/metrics", nil)
	NewMetricsHandler(nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
