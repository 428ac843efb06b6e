package handler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnectionManager_RegisterLookupPush(t *testing.T) {
	m := NewConnectionManager(zap.NewNop())
	client := NewClient("u1", "s1", nil, 4)
	m.Register(client)

	sid, ok := m.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "s1", sid)
	assert.Equal(t, 1, m.Count())

	require.NoError(t, m.PushToSession("s1", []byte("hello")))
	assert.Equal(t, []byte("hello"), <-client.send)

	require.NoError(t, m.SendToUser("u1", []byte("again")))
	assert.Equal(t, []byte("again"), <-client.send)
}

func TestConnectionManager_Overwrite(t *testing.T) {
	m := NewConnectionManager(zap.NewNop())
	first := NewClient("u1", "s1", nil, 4)
	second := NewClient("u1", "s2", nil, 4)
	m.Register(first)
	m.Register(second)

	sid, ok := m.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "s2", sid)
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 2, m.SessionCount(), "older session stays open")

	require.NoError(t, m.SendToUser("u1", []byte("x")))
	assert.Len(t, second.send, 1)
	assert.Len(t, first.send, 0)

	// Отключение старой сессии не трогает запись новой.
	m.Unregister("u1", "s1")
	sid, ok = m.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "s2", sid)
	assert.Equal(t, 1, m.SessionCount())

	_, open := <-first.send
	assert.False(t, open, "send queue of the removed session is closed")

	m.Unregister("u1", "s2")
	_, ok = m.Lookup("u1")
	assert.False(t, ok)
	assert.Zero(t, m.Count())
	assert.Zero(t, m.SessionCount())
}

func TestConnectionManager_PushErrors(t *testing.T) {
	m := NewConnectionManager(zap.NewNop())

	assert.ErrorIs(t, m.PushToSession("missing", []byte("x")), ErrSessionNotFound)
	assert.ErrorIs(t, m.SendToUser("nobody", []byte("x")), ErrSessionNotFound)

	m.Register(NewClient("u1", "s1", nil, 1))
	require.NoError(t, m.PushToSession("s1", []byte("1")))
	assert.ErrorIs(t, m.PushToSession("s1", []byte("2")), ErrSendQueueFull)

	m.Unregister("u1", "s1")
	assert.ErrorIs(t, m.PushToSession("s1", []byte("3")), ErrSessionNotFound)

	// Повторное снятие регистрации безопасно.
	m.Unregister("u1", "s1")
}

func TestConnectionManager_ConcurrentAccess(t *testing.T) {
	m := NewConnectionManager(zap.NewNop())
	const workers = 50

	var wg sync.WaitGroup
	wg.Add(workers * 2)
	for i := 0; i < workers; i++ {
		sid := string(rune('a'+i%26)) + string(rune('A'+i/26))
		go func() {
			defer wg.Done()
			m.Register(NewClient("u1", sid, nil, 8))
			_ = m.SendToUser("u1", []byte("x"))
			m.Unregister("u1", sid)
		}()
		go func() {
			defer wg.Done()
			if current, ok := m.Lookup("u1"); ok {
				_ = m.PushToSession(current, []byte("y"))
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, m.SessionCount())
	assert.Zero(t, m.Count())
}
