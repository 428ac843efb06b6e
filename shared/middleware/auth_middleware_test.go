package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"finance-tracker/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestExtractToken(t *testing.T) {
	newReq := func() *http.Request {
		return httptest.NewRequest(http.MethodGet, "/ws?token=from-query", nil)
	}

	t.Run("cookie wins", func(t *testing.T) {
		r := newReq()
		r.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
		r.Header.Set("Authorization", "Bearer from-header")

		token, source := ExtractToken(r, "token", "token")
		assert.Equal(t, "from-cookie", token)
		assert.Equal(t, TokenSourceCookie, source)
	})

	t.Run("query before header", func(t *testing.T) {
		r := newReq()
		r.Header.Set("Authorization", "Bearer from-header")

		token, source := ExtractToken(r, "token", "token")
		assert.Equal(t, "from-query", token)
		assert.Equal(t, TokenSourceQuery, source)
	})

	t.Run("header when query disabled", func(t *testing.T) {
		r := newReq()
		r.Header.Set("Authorization", "bearer from-header")

		token, source := ExtractToken(r, "token", "")
		assert.Equal(t, "from-header", token)
		assert.Equal(t, TokenSourceHeader, source)
	})

	t.Run("nothing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Header.Set("Authorization", "Basic abc")

		token, source := ExtractToken(r, "token", "token")
		assert.Empty(t, token)
		assert.Empty(t, source)
	})
}

func TestGinAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	verifier := func(_ context.Context, token string) (*models.Claims, error) {
		switch token {
		case "good":
			return &models.Claims{UserID: "u1"}, nil
		case "expired":
			return nil, models.ErrTokenExpired
		case "boom":
			return nil, errors.New("store unavailable")
		}
		return nil, models.ErrTokenInvalid
	}

	router := gin.New()
	router.GET("/me", GinAuthMiddleware(verifier, "token", zap.NewNop()), func(c *gin.Context) {
		userID, _ := models.GetUserID(c)
		c.String(http.StatusOK, userID)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid", "Bearer good", http.StatusOK, "u1"},
		{"missing", "", http.StatusUnauthorized, "Missing token"},
		{"expired", "Bearer expired", http.StatusUnauthorized, "Token expired"},
		{"invalid", "Bearer bad", http.StatusUnauthorized, "Invalid token"},
		{"verifier failure", "Bearer boom", http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
