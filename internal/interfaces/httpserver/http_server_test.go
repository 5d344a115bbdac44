package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azamsaif47/Alfred-app/internal/config"
	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation/conversationtest"
	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/telemetry"
	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/handlers"
	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/routes"
)

type noChat struct{ handlers.ChatService }

func newTestServer(t *testing.T, checks map[string]routes.ReadinessCheck) *HttpServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{ServiceName: "alfred-api", Environment: "test", CORSAllowedOrigins: []string{"*"}}
	threads := conversation.NewService(conversationtest.NewMemoryRepository(), nil, "new_chat", zerolog.Nop())
	provider := handlers.NewProvider(noChat{}, threads, telemetry.NewSanitizer("none", ""), zerolog.Nop())
	return New(cfg, zerolog.Nop(), provider, checks)
}

func serve(s *HttpServer, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alfred-api")

	assert.Equal(t, http.StatusOK, serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(s, httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)
}

func TestReadinessReportsFailingChecks(t *testing.T) {
	s := newTestServer(t, map[string]routes.ReadinessCheck{
		"database": func(context.Context) error { return errors.New("connection refused") },
		"cache":    func(context.Context) error { return nil },
	})

	w := serve(s, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.NotContains(t, w.Body.String(), "cache")
}

func TestMetricsEndpointExposesRequestCounters(t *testing.T) {
	s := newTestServer(t, nil)
	serve(s, httptest.NewRequest(http.MethodGet, "/v1/threads", nil))

	w := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alfred_api_requests_total")
}

func TestThreadLifecycleThroughRouter(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/threads", nil)
	w := serve(s, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = serve(s, httptest.NewRequest(http.MethodGet, "/v1/threads", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "new_chat")
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodDelete, "/v1/threads/missing", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := serve(s, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
	assert.Contains(t, w.Body.String(), "req-123")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/v1/threads", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(s, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfigWithExplicitOrigins(t *testing.T) {
	cfg := corsConfig([]string{"https://alfred.example.com"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, []string{"https://alfred.example.com"}, cfg.AllowOrigins)
}
