package authutils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker/shared/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// InterServiceVerifier проверяет межсервисные токены. Subject токена - имя сервиса-источника.
type InterServiceVerifier struct {
	secret string
	logger *zap.Logger
}

func NewInterServiceVerifier(secret string, logger *zap.Logger) (*InterServiceVerifier, error) {
	if secret == "" {
		return nil, errors.New("inter-service secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterServiceVerifier{secret: secret, logger: logger.Named("InterServiceVerifier")}, nil
}

// VerifyInterServiceToken проверяет подпись и срок действия и возвращает claims с непустым Subject.
func (v *InterServiceVerifier) VerifyInterServiceToken(_ context.Context, tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		v.logger.Warn("Failed to verify inter-service token", zap.String("tokenSnippet", tokenSnippet(tokenString)), zap.Error(err))
		return nil, classifyParseError(err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: source service missing", models.ErrTokenInvalid)
	}
	return claims, nil
}

// GenerateInterServiceToken выпускает токен для вызова внутренних маршрутов от имени serviceName.
func GenerateInterServiceToken(serviceName, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   serviceName,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign inter-service token: %w", err)
	}
	return tokenString, nil
}
