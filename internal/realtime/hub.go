// Package realtime is the live notification channel of the portal: one
// websocket per signed-in client, and a registry that routes a message to a
// currently-connected client, if any. Registry entries live exactly as long
// as their connection; connect registers, disconnect unregisters.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The portal frontend is served from a different origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub owns every live connection, keyed by client id. A client reconnecting
// replaces its previous connection.
type Hub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*connection
	log     *logrus.Logger
}

type connection struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	clientID uuid.UUID
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*connection),
		log:     log,
	}
}

// Register adds a connection to the registry, closing any previous
// connection held by the same client.
func (h *Hub) register(c *connection) {
	h.mu.Lock()
	prev, ok := h.clients[c.clientID]
	h.clients[c.clientID] = c
	h.mu.Unlock()

	if ok {
		close(prev.send)
	}
	h.log.WithField("client_id", c.clientID).Debug("websocket connected")
}

// Unregister removes a connection, but only if it is still the one on
// record; a reconnect may already have replaced it.
func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	current, ok := h.clients[c.clientID]
	if ok && current == c {
		delete(h.clients, c.clientID)
		close(c.send)
	}
	h.mu.Unlock()
	h.log.WithField("client_id", c.clientID).Debug("websocket disconnected")
}

// IsConnected reports whether the client currently holds a live connection.
func (h *Hub) IsConnected(clientID uuid.UUID) bool {
	h.mu.Lock()
	_, ok := h.clients[clientID]
	h.mu.Unlock()
	return ok
}

// SendToClient delivers a JSON payload to the client's connection, if any.
// Returns false when the client is not connected or its send queue is full.
func (h *Hub) SendToClient(clientID uuid.UUID, payload interface{}) bool {
	h.mu.Lock()
	c, ok := h.clients[clientID]
	h.mu.Unlock()
	if !ok {
		return false
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).Error("marshaling realtime payload")
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		// Slow consumer; drop rather than block the caller.
		return false
	}
}

// ServeWS upgrades the request and ties the connection's lifecycle to the
// registry. The caller has already authenticated the client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, clientID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Error("websocket upgrade failed")
		return
	}

	c := &connection{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		clientID: clientID,
	}
	h.register(c)

	go c.writePump()
	go c.readPump()
}

// readPump drains the connection. Clients don't send anything meaningful;
// reading is what surfaces the close and keeps pong handling alive.
func (c *connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.WithError(err).Debug("websocket read error")
			}
			return
		}
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
