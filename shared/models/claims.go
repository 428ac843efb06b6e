package models

import "github.com/golang-jwt/jwt/v5"

// Claims - полезная нагрузка access-токена, который выпускает сервис аутентификации.
// Формат совпадает с тем, что проверяет HTTP middleware: {userId, email} + стандартные поля.
type Claims struct {
	UserID               string `json:"userId"`
	Email                string `json:"email,omitempty"`
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt, ID (JTI) и т.д.
}
