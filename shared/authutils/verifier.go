package authutils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker/shared/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccessTokenStore сообщает, активен ли access-токен (по его JTI).
// Реализация - shared/database.RedisTokenRepository; nil отключает проверку.
type AccessTokenStore interface {
	AccessTokenExists(ctx context.Context, accessUUID string) (bool, error)
}

// JWTVerifier проверяет JWT токены.
// Одно и то же правило используется HTTP middleware и WebSocket шлюзом.
type JWTVerifier struct {
	jwtSecret string
	store     AccessTokenStore
	logger    *zap.Logger
}

// NewJWTVerifier создает новый экземпляр JWTVerifier.
// Принимает секрет и опционально хранилище токенов и логгер. Если логгер nil, используется Noop.
func NewJWTVerifier(jwtSecret string, store AccessTokenStore, logger *zap.Logger) (*JWTVerifier, error) {
	if jwtSecret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTVerifier{
		jwtSecret: jwtSecret,
		store:     store,
		logger:    logger.Named("JWTVerifier"),
	}, nil
}

// VerifyToken проверяет подпись JWT, срок действия и извлекает claims.
// Токен без exp отклоняется.
func (v *JWTVerifier) VerifyToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	log := v.logger.With(zap.String("tokenSnippet", tokenSnippet(tokenString)))
	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Warn("Unexpected signing method", zap.Any("alg", token.Header["alg"]))
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.jwtSecret), nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		log.Warn("Failed to parse or verify token", zap.Error(err))
		return nil, classifyParseError(err)
	}

	if !token.Valid {
		log.Warn("Token is invalid despite no parsing error")
		return nil, models.ErrTokenInvalid
	}

	if claims.UserID == "" {
		log.Warn("Token missing userId", zap.Any("claims", claims))
		return nil, fmt.Errorf("%w: userId missing", models.ErrTokenInvalid)
	}

	// Токен, удаленный из хранилища (logout), больше не принимается.
	if v.store != nil && claims.ID != "" {
		exists, err := v.store.AccessTokenExists(ctx, claims.ID)
		if err != nil {
			log.Error("Failed to check access token in store", zap.Error(err))
			return nil, fmt.Errorf("failed to check access token: %w", err)
		}
		if !exists {
			log.Warn("Access token revoked or unknown", zap.String("jti", claims.ID))
			return nil, fmt.Errorf("%w: access token revoked", models.ErrTokenInvalid)
		}
	}

	log.Debug("Token verified successfully", zap.String("userID", claims.UserID))
	return claims, nil
}

// GenerateTestJWT создает подписанный HS256 токен.
// ВАЖНО: Эта функция предназначена ТОЛЬКО для использования в тестах.
func GenerateTestJWT(userID, secretKey string, validityDuration time.Duration) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		UserID: userID,
		Email:  userID + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign test JWT: %w", err)
	}
	return tokenString, nil
}

// classifyParseError сводит ошибки jwt к ошибкам токена из models.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return models.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return models.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return models.ErrTokenInvalid
	}
	return fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
}

// tokenSnippet возвращает безопасную для логгирования часть токена.
func tokenSnippet(tokenString string) string {
	limit := 15
	if len(tokenString) > limit {
		return tokenString[:limit] + "..."
	}
	return tokenString
}
