package handler

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	// ErrSessionNotFound - сессии с таким ID нет (клиент уже отключился).
	ErrSessionNotFound = errors.New("websocket session not found")
	// ErrSendQueueFull - очередь отправки клиента переполнена.
	ErrSendQueueFull = errors.New("websocket send queue is full")
)

// DefaultSendQueueSize - размер буфера исходящих сообщений одного клиента.
const DefaultSendQueueSize = 256

// Client представляет собой одно WebSocket соединение пользователя.
type Client struct {
	UserID    string
	SessionID string
	Conn      *websocket.Conn
	send      chan []byte // Канал для отправки сообщений этому клиенту
}

// NewClient создает клиента с буферизованной очередью отправки.
func NewClient(userID, sessionID string, conn *websocket.Conn, queueSize int) *Client {
	if queueSize <= 0 {
		queueSize = DefaultSendQueueSize
	}
	return &Client{
		UserID:    userID,
		SessionID: sessionID,
		Conn:      conn,
		send:      make(chan []byte, queueSize),
	}
}

// ConnectionManager - реестр живых соединений: userID -> sessionID -> Client.
// Запись в канал send идет под RLock, закрытие канала - под Lock,
// поэтому отправка в закрытый канал невозможна.
type ConnectionManager struct {
	mu       sync.RWMutex
	users    map[string]string  // userID -> sessionID последнего подключения
	sessions map[string]*Client // sessionID -> Client
	logger   *zap.Logger
}

// NewConnectionManager создает пустой реестр.
func NewConnectionManager(logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{
		users:    make(map[string]string),
		sessions: make(map[string]*Client),
		logger:   logger.Named("ConnectionManager"),
	}
}

// Register добавляет сессию и направляет пользователя на нее.
// Предыдущее соединение пользователя остается открытым, но больше не получает уведомлений.
func (m *ConnectionManager) Register(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if previous, ok := m.users[client.UserID]; ok && previous != client.SessionID {
		m.logger.Info("Replacing live session for user",
			zap.String("userID", client.UserID),
			zap.String("previousSessionID", previous),
			zap.String("sessionID", client.SessionID))
	}
	m.sessions[client.SessionID] = client
	m.users[client.UserID] = client.SessionID
	activeConnections.Set(float64(len(m.sessions)))

	m.logger.Debug("Client registered", zap.String("userID", client.UserID), zap.String("sessionID", client.SessionID))
}

// Unregister удаляет сессию. Запись пользователя удаляется, только если она
// все еще указывает на эту сессию.
func (m *ConnectionManager) Unregister(userID, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.sessions[sessionID]; ok {
		delete(m.sessions, sessionID)
		close(client.send)
	}
	if current, ok := m.users[userID]; ok && current == sessionID {
		delete(m.users, userID)
	}
	activeConnections.Set(float64(len(m.sessions)))

	m.logger.Debug("Client unregistered", zap.String("userID", userID), zap.String("sessionID", sessionID))
}

// Lookup возвращает текущую сессию пользователя.
func (m *ConnectionManager) Lookup(userID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sessionID, ok := m.users[userID]
	return sessionID, ok
}

// PushToSession ставит сообщение в очередь отправки сессии, не блокируясь.
func (m *ConnectionManager) PushToSession(sessionID string, payload []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, ok := m.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	select {
	case client.send <- payload:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// SendToUser отправляет сообщение в текущую сессию пользователя.
func (m *ConnectionManager) SendToUser(userID string, payload []byte) error {
	sessionID, ok := m.Lookup(userID)
	if !ok {
		return ErrSessionNotFound
	}
	return m.PushToSession(sessionID, payload)
}

// Count возвращает число пользователей с живой сессией.
func (m *ConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// SessionCount возвращает число открытых сессий, включая вытесненные.
func (m *ConnectionManager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
