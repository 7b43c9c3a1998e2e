package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestClient(hub *Hub, buffer int) *Client {
	client := &Client{
		hub:    hub,
		send:   make(chan []byte, buffer),
		userID: primitive.NewObjectID(),
	}
	hub.clients[client.userID] = map[*Client]bool{client: true}
	return client
}

func TestClientEnqueue(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, 1)

	assert.True(t, client.enqueue([]byte("first")))

	// Буфер повний
	assert.False(t, client.enqueue([]byte("second")))

	client.closeSend()
	assert.False(t, client.enqueue([]byte("after close")))
}

func TestClientCloseSendIdempotent(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, 1)

	assert.NotPanics(t, client.closeSend)
	assert.NotPanics(t, client.closeSend)
}

func TestPushToUserEvictsSlowConsumer(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, 1)
	userID := client.userID

	// Перша доставка заповнює буфер, друга впирається в повільного
	// споживача і відключає його
	hub.PushToUser(userID, "notification", map[string]string{"seq": "1"})
	require.Equal(t, 1, hub.GetConnectionsCount())

	hub.PushToUser(userID, "notification", map[string]string{"seq": "2"})
	assert.Equal(t, 0, hub.GetConnectionsCount())

	// Пінг від уже відключеного клієнта: раніше це був запис у закритий
	// канал і паніка, тепер повідомлення тихо відкидається
	assert.NotPanics(t, func() {
		assert.False(t, client.enqueue([]byte(`{"type": "pong"}`)))
	})
}

func TestPushToUserOfflineUserIsNoop(t *testing.T) {
	hub := NewHub()

	assert.NotPanics(t, func() {
		hub.PushToUser(primitive.NewObjectID(), "notification", map[string]string{"seq": "1"})
	})
	assert.Equal(t, 0, hub.GetConnectionsCount())
}
