package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrNoPeer = errors.New("ws: no connection for session")

// peer serializes writes; gorilla connections allow a single writer.
type peer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

type Hub struct {
	mu           sync.RWMutex
	conns        map[string]*peer
	writeTimeout time.Duration
}

func NewHub() *Hub {
	return &Hub{conns: map[string]*peer{}, writeTimeout: 5 * time.Second}
}

// Add registers c for id, replacing (and closing) an older connection.
func (h *Hub) Add(id string, c *websocket.Conn) {
	h.mu.Lock()
	old := h.conns[id]
	h.conns[id] = &peer{conn: c}
	h.mu.Unlock()
	if old != nil && old.conn != c {
		old.conn.Close()
	}
}

func (h *Hub) Get(id string) (*websocket.Conn, bool) {
	h.mu.RLock()
	p, ok := h.conns[id]
	h.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return p.conn, true
}

// Remove drops id only if it still maps to c.
func (h *Hub) Remove(id string, c *websocket.Conn) {
	h.mu.Lock()
	if p, ok := h.conns[id]; ok && p.conn == c {
		delete(h.conns, id)
	}
	h.mu.Unlock()
}

// Send writes v as JSON to the connection registered for id.
func (h *Hub) Send(id string, v any) error {
	h.mu.RLock()
	p, ok := h.conns[id]
	h.mu.RUnlock()
	if !ok {
		return ErrNoPeer
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	return p.conn.WriteJSON(v)
}
