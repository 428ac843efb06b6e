package middleware

import (
	"context"
	"net/http"

	"finance-tracker/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// InterServiceTokenHeader - заголовок с межсервисным токеном.
const InterServiceTokenHeader = "X-Internal-Service-Token"

// InterServiceTokenVerifier проверяет межсервисный токен.
type InterServiceTokenVerifier func(ctx context.Context, tokenString string) (*jwt.RegisteredClaims, error)

// GinInterServiceAuthMiddleware пропускает только запросы с валидным межсервисным токеном
// и кладет имя сервиса-источника в контекст.
func GinInterServiceAuthMiddleware(verifier InterServiceTokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("InterServiceAuth")
	return func(c *gin.Context) {
		tokenString := c.GetHeader(InterServiceTokenHeader)
		if tokenString == "" {
			log.Warn("X-Internal-Service-Token header missing", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized: Missing inter-service token"})
			return
		}

		claims, err := verifier(c.Request.Context(), tokenString)
		if err != nil {
			status, msg := VerificationStatus(err)
			if status == http.StatusInternalServerError {
				log.Error("Unexpected inter-service token verification error", zap.Error(err))
			}
			c.AbortWithStatusJSON(status, models.ErrorResponse{Error: msg})
			return
		}

		c.Set(models.SourceServiceContextKey, claims.Subject)
		log.Debug("Inter-service request authorized", zap.String("sourceService", claims.Subject))
		c.Next()
	}
}
