//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	"testing"

	"bistro/internal/handler/httperr"
	"bistro/internal/handler/middleware"
	"bistro/internal/pkg/config"
	"bistro/internal/pkg/telemetry"
	"bistro/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, metrics *telemetry.Metrics) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := middleware.NewLogger(config.NewTestConfig().Log)
	engine := gin.New()
	engine.Use(middleware.CustomRecovery())
	engine.Use(logger.LoggingMiddleware(metrics))
	engine.Use(middleware.ErrorHandler())

	engine.GET("/reservations/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"requestId": middleware.GetRequestID(c)})
	})
	engine.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})
	engine.GET("/teapot", func(c *gin.Context) {
		httperr.AbortWithError(c, http.StatusTeapot, errors.New("short and stout"), "I'm a teapot", nil)
	})
	engine.GET("/silent", func(c *gin.Context) {
		_ = c.Error(errors.New("no response written"))
	})
	return engine
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	engine := newEngine(t, nil)

	t.Run("echoes the caller's id", func(t *testing.T) {
		w := httptest.PerformRequestWithHeaders(t, engine, http.MethodGet, "/reservations/7", nil,
			map[string]string{"X-Request-ID": "req-123"})

		require.Equal(t, http.StatusOK, w.Code)
		httptest.AssertHeaders(t, w, map[string]string{"X-Request-ID": "req-123"})
		assert.JSONEq(t, `{"requestId":"req-123"}`, w.Body.String())
	})

	t.Run("generates one when absent", func(t *testing.T) {
		w := httptest.PerformRequest(t, engine, http.MethodGet, "/reservations/7", nil)

		require.Equal(t, http.StatusOK, w.Code)
		httptest.AssertHeaderMatches(t, w, "X-Request-ID", `^\d{14}-[0-9a-f]{8}$`)
	})
}

func TestLoggingMiddleware_RecordsRouteTemplates(t *testing.T) {
	metrics := telemetry.NewMetrics(config.MetricsConfig{Enabled: true, Namespace: "test"})
	engine := newEngine(t, metrics)

	httptest.PerformRequest(t, engine, http.MethodGet, "/reservations/1", nil)
	httptest.PerformRequest(t, engine, http.MethodGet, "/reservations/2", nil)
	httptest.PerformRequest(t, engine, http.MethodGet, "/nowhere", nil)

	// one series per route template and status, not per id
	count, err := testutil.GatherAndCount(metrics.Registry(), "test_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	w := httptest.PerformRequest(t, metrics.Handler(), http.MethodGet, "/metrics", nil)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="GET",route="/reservations/:id",status="200"} 2`)
	assert.Contains(t, w.Body.String(), `route="unmatched",status="404"} 1`)
}

func TestCustomRecovery(t *testing.T) {
	engine := newEngine(t, nil)

	w := httptest.PerformRequest(t, engine, http.MethodGet, "/boom", nil)

	httptest.AssertErrorResponse(t, w, http.StatusInternalServerError, "Internal server error")
}

func TestErrorHandler(t *testing.T) {
	engine := newEngine(t, nil)

	t.Run("public error keeps its response", func(t *testing.T) {
		w := httptest.PerformRequest(t, engine, http.MethodGet, "/teapot", nil)
		httptest.AssertErrorResponse(t, w, http.StatusTeapot, "I'm a teapot")
	})

	t.Run("unanswered error becomes a 500", func(t *testing.T) {
		w := httptest.PerformRequest(t, engine, http.MethodGet, "/silent", nil)
		httptest.AssertErrorResponse(t, w, http.StatusInternalServerError, "Internal server error")
	})
}
