package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"finance-tracker/shared/authutils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const wsTestSecret = "ws-test-secret"

type recordingHooks struct {
	mu           sync.Mutex
	subscribed   []string
	unsubscribed []string
}

func (h *recordingHooks) SubscribeUser(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribed = append(h.subscribed, userID)
}

func (h *recordingHooks) UnsubscribeUser(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribed = append(h.unsubscribed, userID)
}

func (h *recordingHooks) unsubscribedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.unsubscribed)
}

type wsFixture struct {
	server  *httptest.Server
	manager *ConnectionManager
	hooks   *recordingHooks
	wsURL   string
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := authutils.NewJWTVerifier(wsTestSecret, nil, nil)
	require.NoError(t, err)

	manager := NewConnectionManager(zap.NewNop())
	hooks := &recordingHooks{}
	h := NewWebSocketHandler(manager, verifier.VerifyToken, hooks, WebSocketConfig{CookieName: "token"}, zap.NewNop())

	router := gin.New()
	router.GET("/ws", h.ServeWS)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &wsFixture{
		server:  server,
		manager: manager,
		hooks:   hooks,
		wsURL:   "ws" + strings.TrimPrefix(server.URL, "http") + "/ws",
	}
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := authutils.GenerateTestJWT(userID, wsTestSecret, time.Minute)
	require.NoError(t, err)
	return tok
}

func (f *wsFixture) dial(t *testing.T, query string, header http.Header) *websocket.Conn {
	t.Helper()
	url := f.wsURL
	if query != "" {
		url += "?" + query
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (f *wsFixture) waitForUser(t *testing.T, userID string) string {
	t.Helper()
	var sid string
	require.Eventually(t, func() bool {
		var ok bool
		sid, ok = f.manager.Lookup(userID)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	return sid
}

func TestServeWS_RejectsWithoutValidToken(t *testing.T) {
	f := newWSFixture(t)

	tests := []struct {
		name   string
		query  string
		header http.Header
	}{
		{"no token", "", nil},
		{"garbage query token", "token=garbage", nil},
		{"wrong secret", "", http.Header{"Authorization": {"Bearer " + func() string {
			tok, _ := authutils.GenerateTestJWT("u1", "other-secret", time.Minute)
			return tok
		}()}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := f.wsURL
			if tt.query != "" {
				url += "?" + tt.query
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, tt.header)
			if conn != nil {
				_ = conn.Close()
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Zero(t, f.manager.SessionCount(), "no registry entry on rejected handshake")
		})
	}
}

func TestServeWS_TokenSources(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		f := newWSFixture(t)
		f.dial(t, "token="+token(t, "u-query"), nil)
		f.waitForUser(t, "u-query")
	})

	t.Run("bearer header", func(t *testing.T) {
		f := newWSFixture(t)
		f.dial(t, "", http.Header{"Authorization": {"Bearer " + token(t, "u-header")}})
		f.waitForUser(t, "u-header")
	})

	t.Run("cookie takes precedence", func(t *testing.T) {
		f := newWSFixture(t)
		header := http.Header{"Cookie": {"token=" + token(t, "u-cookie")}}
		f.dial(t, "token="+token(t, "u-query"), header)
		f.waitForUser(t, "u-cookie")

		_, ok := f.manager.Lookup("u-query")
		assert.False(t, ok)
	})
}

func TestServeWS_PushReachesClient(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "token="+token(t, "u1"), nil)
	sid := f.waitForUser(t, "u1")

	frame := []byte(`{"event":"notification","data":{"_id":"n1"}}`)
	require.NoError(t, f.manager.PushToSession(sid, frame))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	msgType, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, msgType)
	assert.JSONEq(t, string(frame), string(msg))

	f.hooks.mu.Lock()
	assert.Equal(t, []string{"u1"}, f.hooks.subscribed)
	f.hooks.mu.Unlock()
}

func TestServeWS_SecondConnectionReplacesFirst(t *testing.T) {
	f := newWSFixture(t)
	first := f.dial(t, "token="+token(t, "u1"), nil)
	firstSID := f.waitForUser(t, "u1")

	second := f.dial(t, "token="+token(t, "u1"), nil)
	var secondSID string
	require.Eventually(t, func() bool {
		sid, ok := f.manager.Lookup("u1")
		secondSID = sid
		return ok && sid != firstSID
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, f.manager.Count())
	assert.Equal(t, 2, f.manager.SessionCount())

	require.NoError(t, f.manager.SendToUser("u1", []byte(`{"n":1}`)))

	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := second.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(msg))

	require.NoError(t, first.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = first.ReadMessage()
	require.Error(t, err, "the replaced session receives nothing")
	var netErr interface{ Timeout() bool }
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())

	assert.NotEqual(t, firstSID, secondSID)
}

func TestServeWS_DisconnectUnregisters(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "token="+token(t, "u1"), nil)
	f.waitForUser(t, "u1")

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	_ = conn.Close()

	require.Eventually(t, func() bool { return f.manager.SessionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	_, ok := f.manager.Lookup("u1")
	assert.False(t, ok)
	assert.Eventually(t, func() bool { return f.hooks.unsubscribedCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestCheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(NewConnectionManager(zap.NewNop()), nil, nil,
		WebSocketConfig{AllowedOrigins: []string{"http://localhost:3000"}}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, h.checkOrigin(req), "non-browser clients send no Origin")

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, h.checkOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, h.checkOrigin(req))
}
