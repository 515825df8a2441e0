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

	"jan-server/services/messaging-api/internal/config"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/infrastructure/repository/profile"
	"jan-server/services/messaging-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/messaging-api/internal/interfaces/httpserver/middlewares"
)

func newTestServer(t *testing.T, checks ...ReadinessCheck) *HTTPServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{ServiceName: "messaging-api", MaxAttachmentBytes: 1024}
	directory := identity.NewService(profile.NewInMemoryRepository(), nil, zerolog.Nop())
	provider := handlers.NewDefaultProvider(cfg, nil, directory, zerolog.Nop())
	return New(cfg, zerolog.Nop(), provider, nil, checks)
}

func get(s *HTTPServer, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestCoreRoutes(t *testing.T) {
	s := newTestServer(t)

	w := get(s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middlewares.RequestIDHeader))

	w = get(s, "/")
	assert.JSONEq(t, `{"service":"messaging-api","status":"ok"}`, w.Body.String())

	w = get(s, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jan_messaging_api_requests_total")
}

func TestReadiness(t *testing.T) {
	healthy := ReadinessCheck{Name: "postgres", Check: func(context.Context) error { return nil }}
	broken := ReadinessCheck{Name: "attachments", Check: func(context.Context) error { return errors.New("bucket unreachable") }}

	w := get(newTestServer(t, healthy), "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(newTestServer(t, healthy, broken), "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"not_ready","checks":{"attachments":"bucket unreachable"}}`, w.Body.String())
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middlewares.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(middlewares.RequestIDHeader))
}
