package handler

import (
	"net/http"
	"time"

	"finance-tracker/shared/middleware"
	"finance-tracker/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время, разрешенное для записи сообщения клиенту.
	writeWait = 10 * time.Second
	// Время, разрешенное для чтения следующего pong сообщения от клиента.
	pongWait = 60 * time.Second
	// Отправлять пинги клиенту с этим периодом. Должно быть меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Максимальный размер сообщения, разрешенный от клиента.
	maxMessageSize = 512

	// tokenQueryParam - поле handshake-авторизации для клиентов без cookie.
	tokenQueryParam = "token"
)

// SubscriptionHooks уведомляет консьюмер о подключении и отключении пользователя.
type SubscriptionHooks interface {
	SubscribeUser(userID string)
	UnsubscribeUser(userID string)
}

// WebSocketConfig - настройки шлюза.
type WebSocketConfig struct {
	CookieName     string
	AllowedOrigins []string
	SendQueueSize  int
}

// WebSocketHandler аутентифицирует WebSocket подключения и ведет реестр соединений.
type WebSocketHandler struct {
	manager  *ConnectionManager
	verify   middleware.TokenVerifier
	hooks    SubscriptionHooks
	cfg      WebSocketConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler создает новый обработчик WebSocket. hooks может быть nil.
func NewWebSocketHandler(manager *ConnectionManager, verify middleware.TokenVerifier, hooks SubscriptionHooks, cfg WebSocketConfig, logger *zap.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		manager: manager,
		verify:  verify,
		hooks:   hooks,
		cfg:     cfg,
		logger:  logger.Named("WebSocketHandler"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin пропускает запросы без Origin (не браузерные клиенты) и разрешенные origin'ы.
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	h.logger.Warn("WebSocket origin rejected", zap.String("origin", origin))
	return false
}

// ServeWS обрабатывает входящий HTTP запрос для WebSocket.
// Токен: cookie, затем query-параметр token, затем Authorization: Bearer.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	tokenString, source := middleware.ExtractToken(c.Request, h.cfg.CookieName, tokenQueryParam)
	if tokenString == "" {
		handshakesTotal.WithLabelValues("missing_token").Inc()
		h.logger.Warn("WebSocket handshake without token", zap.String("ip", c.ClientIP()))
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized: Missing token"})
		return
	}

	claims, err := h.verify(c.Request.Context(), tokenString)
	if err != nil {
		handshakesTotal.WithLabelValues("rejected").Inc()
		status, msg := middleware.VerificationStatus(err)
		h.logger.Warn("WebSocket token rejected", zap.Error(err), zap.String("source", source))
		c.AbortWithStatusJSON(status, models.ErrorResponse{Error: msg})
		return
	}
	userID := claims.UserID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		handshakesTotal.WithLabelValues("upgrade_failed").Inc()
		// Upgrader уже записал ответ с ошибкой.
		h.logger.Error("Failed to upgrade connection", zap.Error(err), zap.String("userID", userID))
		return
	}
	handshakesTotal.WithLabelValues("accepted").Inc()

	client := NewClient(userID, uuid.NewString(), conn, h.cfg.SendQueueSize)
	log := h.logger.With(zap.String("userID", userID), zap.String("sessionID", client.SessionID))
	log.Info("WebSocket connection established", zap.String("tokenSource", source))

	h.manager.Register(client)
	if h.hooks != nil {
		h.hooks.SubscribeUser(userID)
	}

	go client.writePump(log)
	go client.readPump(h.manager, h.hooks, log)
}

// readPump читает из соединения до ошибки и затем снимает регистрацию сессии.
func (c *Client) readPump(manager *ConnectionManager, hooks SubscriptionHooks, logger *zap.Logger) {
	defer func() {
		manager.Unregister(c.UserID, c.SessionID)
		if hooks != nil {
			hooks.UnsubscribeUser(c.UserID)
		}
		_ = c.Conn.Close()
		logger.Debug("readPump finished")
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read error", zap.Error(err))
			} else {
				logger.Info("WebSocket connection closed")
			}
			return
		}
		logger.Debug("Received unexpected message from client (ignored)", zap.Int("size", len(message)))
	}
}

// writePump отправляет сообщения из очереди send и пинги.
// Каждое событие уходит отдельным текстовым кадром.
func (c *Client) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		logger.Debug("writePump finished")
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}
