package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"finance-tracker/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGinInterServiceAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	verifier := func(_ context.Context, token string) (*jwt.RegisteredClaims, error) {
		switch token {
		case "good":
			return &jwt.RegisteredClaims{Subject: "transactions"}, nil
		case "expired":
			return nil, models.ErrTokenExpired
		}
		return nil, errors.New("store unavailable")
	}

	newRouter := func(source *string) *gin.Engine {
		r := gin.New()
		r.POST("/internal", GinInterServiceAuthMiddleware(verifier, zap.NewNop()), func(c *gin.Context) {
			*source = c.GetString(models.SourceServiceContextKey)
			c.Status(http.StatusNoContent)
		})
		return r
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantSource string
	}{
		{"missing", "", http.StatusUnauthorized, ""},
		{"valid", "good", http.StatusNoContent, "transactions"},
		{"expired", "expired", http.StatusUnauthorized, ""},
		{"verifier failure", "other", http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var source string
			router := newRouter(&source)

			req := httptest.NewRequest(http.MethodPost, "/internal", nil)
			if tt.token != "" {
				req.Header.Set(InterServiceTokenHeader, tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}
