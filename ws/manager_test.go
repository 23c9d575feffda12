package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id, userID string, buffer int) *Client {
	return &Client{ID: id, UserID: userID, Send: make(chan Message, buffer)}
}

func TestManager_SendToUserReachesEveryTab(t *testing.T) {
	manager := NewWebSocketManager()
	tab1 := newTestClient("c1", "u1", 4)
	tab2 := newTestClient("c2", "u1", 4)
	require.True(t, manager.Register(tab1))
	require.True(t, manager.Register(tab2))

	assert.True(t, manager.SendToUser("u1", "notification:new", map[string]string{"title": "hi"}))
	assert.False(t, manager.SendToUser("u2", "notification:new", nil))

	for _, c := range []*Client{tab1, tab2} {
		msg := <-c.Send
		assert.Equal(t, "notification:new", msg.Event)
	}
	assert.Equal(t, 2, manager.GetClientCount())
	assert.True(t, manager.IsUserConnected("u1"))
}

func TestManager_UnregisterClosesChannel(t *testing.T) {
	manager := NewWebSocketManager()
	client := newTestClient("c1", "u1", 1)
	require.True(t, manager.Register(client))

	manager.Unregister(client)
	manager.Unregister(client)

	_, open := <-client.Send
	assert.False(t, open)
	assert.False(t, manager.IsUserConnected("u1"))
	assert.Zero(t, manager.GetClientCount())
}

func TestManager_SlowClientIsDropped(t *testing.T) {
	manager := NewWebSocketManager()
	slow := newTestClient("c1", "u1", 1)
	require.True(t, manager.Register(slow))

	assert.True(t, manager.SendToUser("u1", "a", nil))
	// буфер полон
	assert.False(t, manager.SendToUser("u1", "b", nil))
	assert.False(t, manager.IsUserConnected("u1"))
}

func TestManager_BroadcastAndStop(t *testing.T) {
	manager := NewWebSocketManager()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		manager.Run(ctx)
		close(stopped)
	}()

	a := newTestClient("c1", "u1", 4)
	b := newTestClient("c2", "u2", 4)
	require.True(t, manager.Register(a))
	require.True(t, manager.Register(b))

	manager.Broadcast(EventStatusChanged, map[string]string{"userId": "u1", "status": "online"})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, EventStatusChanged, msg.Event)
		case <-time.After(2 * time.Second):
			t.Fatal("broadcast was not delivered")
		}
	}

	cancel()
	<-stopped

	_, open := <-a.Send
	assert.False(t, open)
	assert.False(t, manager.Register(newTestClient("c3", "u3", 1)))
}
