package realtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHub() *Hub {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewHub(log)
}

func testConnection(h *Hub, clientID uuid.UUID) *connection {
	return &connection{
		hub:      h,
		send:     make(chan []byte, sendBuffer),
		clientID: clientID,
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	hub := testHub()
	clientID := uuid.New()
	c := testConnection(hub, clientID)

	assert.False(t, hub.IsConnected(clientID))

	hub.register(c)
	assert.True(t, hub.IsConnected(clientID))

	hub.unregister(c)
	assert.False(t, hub.IsConnected(clientID))

	_, open := <-c.send
	assert.False(t, open, "send channel must be closed on unregister")
}

func TestReconnectReplacesConnection(t *testing.T) {
	hub := testHub()
	clientID := uuid.New()
	first := testConnection(hub, clientID)
	second := testConnection(hub, clientID)

	hub.register(first)
	hub.register(second)

	_, open := <-first.send
	assert.False(t, open, "replaced connection's send channel must be closed")
	assert.True(t, hub.IsConnected(clientID))

	// The stale connection's teardown must not evict the replacement.
	hub.unregister(first)
	assert.True(t, hub.IsConnected(clientID))

	hub.unregister(second)
	assert.False(t, hub.IsConnected(clientID))
}

func TestSendToClient(t *testing.T) {
	hub := testHub()
	clientID := uuid.New()
	c := testConnection(hub, clientID)
	hub.register(c)

	payload := map[string]string{"title": "Pago recibido"}
	assert.True(t, hub.SendToClient(clientID, payload))

	msg := <-c.send
	assert.Contains(t, string(msg), "Pago recibido")

	assert.False(t, hub.SendToClient(uuid.New(), payload), "unknown client")
}

func TestSendToClientDropsWhenQueueFull(t *testing.T) {
	hub := testHub()
	clientID := uuid.New()
	c := &connection{hub: hub, send: make(chan []byte, 1), clientID: clientID}
	hub.register(c)

	require.True(t, hub.SendToClient(clientID, "first"))
	assert.False(t, hub.SendToClient(clientID, "second"), "full queue must drop, not block")
}
