package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealth(t *testing.T) {
	ok := HealthCheck{Name: "postgres", Ping: func(context.Context) error { return nil }}
	down := HealthCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("dial tcp: refused") }}

	tests := []struct {
		name       string
		checks     []HealthCheck
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
			wantBody:   map[string]interface{}{"status": "ok", "checks": map[string]interface{}{}},
		},
		{
			name:       "all healthy",
			checks:     []HealthCheck{ok},
			wantStatus: http.StatusOK,
			wantBody:   map[string]interface{}{"status": "ok", "checks": map[string]interface{}{"postgres": "ok"}},
		},
		{
			name:       "dependency down",
			checks:     []HealthCheck{ok, down},
			wantStatus: http.StatusServiceUnavailable,
			wantBody: map[string]interface{}{"status": "degraded", "checks": map[string]interface{}{
				"postgres": "ok", "redis": "unavailable",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(RouterConfig{Env: "test", BasePath: "/api"}, RouterDeps{HealthChecks: tt.checks}, zap.NewNop())

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestRouter_WebSocketRouteOnlyWhenEnabled(t *testing.T) {
	router := NewRouter(RouterConfig{Env: "test", BasePath: "/api"}, RouterDeps{}, zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	manager := NewConnectionManager(zap.NewNop())
	ws := NewWebSocketHandler(manager, nil, nil, WebSocketConfig{CookieName: "token"}, zap.NewNop())
	router = NewRouter(RouterConfig{Env: "test", BasePath: "/api"}, RouterDeps{WebSocket: ws}, zap.NewNop())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	// Без токена шлюз отвечает 401 до апгрейда.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_APIRateLimit(t *testing.T) {
	router := NewRouter(
		RouterConfig{Env: "test", BasePath: "/api", APIRateLimitPerMinute: 2},
		RouterDeps{Notifications: NewNotificationHandler(nil, zap.NewNop())},
		zap.NewNop(),
	)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	// Без auth middleware в контексте нет пользователя: первые запросы получают 401, третий упирается в лимит.
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}
