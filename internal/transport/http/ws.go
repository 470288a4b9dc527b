package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ispconsole/backoffice/internal/pkg/logger"
)

const wsWriteTimeout = 5 * time.Second

// invalidationEvent is pushed to every connected dashboard when an
// entity's cached pages are evicted, so open tables refetch instead of
// showing rows another user already changed.
type invalidationEvent struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
}

// Hub tracks dashboard websocket connections and broadcasts
// invalidation events to them.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The session middleware already authenticated the request.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: map[*websocket.Conn]struct{}{},
	}
}

// Handle upgrades the connection and parks it until the browser goes
// away. Clients never send anything meaningful; the read loop exists
// to notice the close.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.From(r.Context()).Warn("websocket upgrade failed", "err", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast pushes an invalidation event to every connected client.
// Wire it to the query engine with OnInvalidate.
func (h *Hub) Broadcast(entity string) {
	event := invalidationEvent{Type: "invalidate", Entity: entity}

	// Writes happen under the hub lock: gorilla allows one concurrent
	// writer per connection, and invalidations can fire from several
	// goroutines at once.
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.WriteJSON(event); err != nil {
			delete(h.clients, c)
			c.Close()
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, present := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if present {
		conn.Close()
	}
}
