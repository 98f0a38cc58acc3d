package server

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// hub fans a single broadcast payload out to every connected /api/stream
// client — grounded on terow-rist-stunning-train/internal/common/ws.Hub,
// generalized from a keyed per-driver registry to an anonymous
// broadcast set since every stream subscriber wants the same
// telemetry.SimSnapshot frames.
type hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
	log     *logrus.Entry
}

func newHub(log *logrus.Entry) *hub {
	return &hub{clients: make(map[*websocket.Conn]struct{}), log: log}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		_ = conn.Close()
	}
}

// broadcast writes msg as JSON to every connected client, dropping and
// closing any connection that errors (a slow or gone client never
// blocks the others).
func (h *hub) broadcast(msg any) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteJSON(msg); err != nil {
			h.log.WithError(err).Debug("stream client dropped")
			h.remove(c)
		}
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
