// Package ws implements the real-time broadcast channel: a websocket hub
// that fans each published notification out to all connected clients.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 60 * time.Second
	// sendBuffer bounds the per-client queue. A client that cannot keep
	// up has messages dropped rather than stalling the publisher.
	sendBuffer = 32
)

// Notification is the wire frame sent to observers.
type Notification struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type client struct {
	wc   *websocket.Conn
	send chan []byte
}

// Hub keeps the set of connected observers and broadcasts notifications
// to all of them. Delivery is best-effort: no replay for late
// subscribers, no acknowledgment, no retry.
type Hub struct {
	logger *slog.Logger
	upgr   websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a hub. CheckOrigin accepts all origins, matching the
// open CORS policy of the rest of the API surface.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgr: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Publish encodes {"event": subject, "data": payload} once and enqueues
// it to every connected client. It never blocks: a full client queue
// drops the frame for that client only.
func (h *Hub) Publish(subject string, payload any) {
	frame, err := json.Marshal(Notification{Event: subject, Data: payload})
	if err != nil {
		h.logger.Error("broadcast encode failed", "subject", subject, "err", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.logger.Warn("broadcast dropped for slow client", "subject", subject)
		}
	}
}

// ClientCount returns the number of currently connected observers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection and registers the client until its
// read side fails (disconnect or protocol error).
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wc, err := h.upgr.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	c := &client{wc: wc, send: make(chan []byte, sendBuffer)}
	h.register(c)
	go h.writePump(c)
	h.readPump(c)
	h.unregister(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// readPump discards inbound frames; observers are read-only. It returns
// when the connection errors or closes.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.wc.ReadMessage(); err != nil {
			if cerr, ok := err.(*websocket.CloseError); !ok || cerr.Code != websocket.CloseGoingAway {
				h.logger.Debug("ws read closed", "err", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	defer c.wc.Close()
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
				c.wc.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-t.C:
			c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}
