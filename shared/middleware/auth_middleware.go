package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"finance-tracker/shared/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenVerifier определяет функцию, которая проверяет строку токена и возвращает claims.
// Ошибки могут быть models.ErrTokenInvalid, models.ErrTokenExpired, models.ErrTokenMalformed и т.д.
type TokenVerifier func(ctx context.Context, tokenString string) (*models.Claims, error)

// Источники токена, в порядке приоритета.
const (
	TokenSourceCookie = "cookie"
	TokenSourceQuery  = "query"
	TokenSourceHeader = "header"
)

// ExtractToken достает токен из запроса: сначала cookie cookieName, затем query-параметр
// queryParam (пустая строка отключает этот источник), затем заголовок Authorization: Bearer.
// Возвращает токен и его источник; пустой токен означает, что токена нет.
func ExtractToken(r *http.Request, cookieName, queryParam string) (string, string) {
	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
			return cookie.Value, TokenSourceCookie
		}
	}
	if queryParam != "" {
		if token := r.URL.Query().Get(queryParam); token != "" {
			return token, TokenSourceQuery
		}
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
		return strings.TrimSpace(parts[1]), TokenSourceHeader
	}
	return "", ""
}

// VerificationStatus переводит ошибку верификации в HTTP статус и сообщение для клиента.
func VerificationStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrTokenExpired):
		return http.StatusUnauthorized, "Unauthorized: Token expired"
	case errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenInvalid):
		return http.StatusUnauthorized, "Unauthorized: Invalid token"
	default:
		return http.StatusInternalServerError, "Internal server error during token verification"
	}
}

// GinAuthMiddleware проверяет токен (cookie или Bearer) и кладет UserID и Claims в gin.Context.
func GinAuthMiddleware(verifier TokenVerifier, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		tokenString, source := ExtractToken(c.Request, cookieName, "")
		if tokenString == "" {
			log.Warn("Token missing", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized: Missing token"})
			return
		}

		claims, err := verifier(c.Request.Context(), tokenString)
		if err != nil {
			status, msg := VerificationStatus(err)
			if status == http.StatusInternalServerError {
				log.Error("Unexpected token verification error", zap.Error(err))
			} else {
				log.Warn("Token verification failed", zap.Error(err), zap.String("source", source))
			}
			c.AbortWithStatusJSON(status, models.ErrorResponse{Error: msg})
			return
		}

		c.Set(models.UserContextKey, claims.UserID)
		c.Set(models.ClaimsContextKey, claims)
		c.Next()
	}
}
