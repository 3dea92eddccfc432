package viewer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// updateMessage is one selection change sent by a websocket client.
type updateMessage struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Client represents a single websocket connection managed by a Hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub manages the set of websocket clients and broadcasts the recomposed
// chart to all of them after each selection transition.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	log        *slog.Logger
}

// NewHub creates a Hub with initialised channels and client map.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the Hub's main event loop. It should be launched as a goroutine
// and returns when the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast queues a payload for delivery to all connected clients.
func (h *Hub) Broadcast(payload []byte) {
	h.broadcast <- payload
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The HTTP layer already applies permissive CORS for the viewer API.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS returns a handler that upgrades the connection, sends the current
// chart as a snapshot, and then applies incoming selection updates through
// the controller. Updates are applied in arrival order; each one is a full
// transition whose result is broadcast to every client.
func (h *Hub) ServeWS(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", "error", err)
			return
		}

		client := &Client{hub: h, conn: conn, send: make(chan []byte, 16)}
		h.register <- client

		// Snapshot first, so a new client sees the current chart.
		if snapshot, err := json.Marshal(ctrl.Spec()); err == nil {
			client.send <- snapshot
		}

		go client.writePump()
		go client.readPump(r.Context(), ctrl)
	}
}

// readPump applies selection updates from the client until the connection
// closes.
func (c *Client) readPump(ctx context.Context, ctrl *Controller) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		var msg updateMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		if _, err := ctrl.Set(ctx, msg.Field, msg.Value); err != nil {
			c.hub.log.Warn("rejected selection update", "field", msg.Field, "error", err)
		}
	}
}

// writePump forwards broadcast payloads to the connection.
func (c *Client) writePump() {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
