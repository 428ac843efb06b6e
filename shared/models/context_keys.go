package models

// Ключи, под которыми auth middleware кладет данные пользователя в gin.Context.
const (
	// UserContextKey хранит строковый UserID аутентифицированного пользователя.
	UserContextKey = "userID"
	// ClaimsContextKey хранит *Claims целиком.
	ClaimsContextKey = "claims"
	// SourceServiceContextKey хранит имя сервиса, вызвавшего внутренний маршрут.
	SourceServiceContextKey = "sourceService"
)

// UserIDGetter - минимальный интерфейс контекста (gin.Context ему соответствует).
type UserIDGetter interface {
	GetString(key string) string
}

// GetUserID извлекает UserID из контекста запроса.
// Возвращает пустую строку и false, если пользователь не аутентифицирован.
func GetUserID(c UserIDGetter) (string, bool) {
	userID := c.GetString(UserContextKey)
	return userID, userID != ""
}
