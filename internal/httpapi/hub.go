package httpapi

import (
	"log"
	"sync"

	"stat-wizard/internal/quiz"
)

// Hub fans session views out to websocket clients subscribed to that
// session. It implements quiz.Notifier.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]struct{}
	closed   bool
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*Client]struct{})}
}

// Register adds a client to its session's subscribers. Registering after
// Close closes the client immediately.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		c.closeSend()
		return
	}
	subscribers, ok := h.sessions[c.SessionID]
	if !ok {
		subscribers = make(map[*Client]struct{})
		h.sessions[c.SessionID] = subscribers
	}
	subscribers[c] = struct{}{}
}

// Unregister removes a client and closes its send channel. It is safe to call
// more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(c)
}

// Publish delivers a view to every client watching that session. Clients
// whose buffer is full are dropped.
func (h *Hub) Publish(view quiz.View) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.sessions[view.ID] {
		if !c.TrySend(view) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Printf("client %s buffer full, disconnecting", c.ID)
		h.Unregister(c)
	}
}

// Send queues a view for one registered client. It reports false when the
// client is not registered, including after Close.
func (h *Hub) Send(c *Client, view quiz.View) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.sessions[c.SessionID][c]; !ok {
		return false
	}
	return c.TrySend(view)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, subscribers := range h.sessions {
		count += len(subscribers)
	}
	return count
}

// Close disconnects every client. Later registrations are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, subscribers := range h.sessions {
		for c := range subscribers {
			h.removeLocked(c)
		}
	}
}

func (h *Hub) removeLocked(c *Client) {
	subscribers, ok := h.sessions[c.SessionID]
	if !ok {
		return
	}
	if _, ok := subscribers[c]; !ok {
		return
	}
	delete(subscribers, c)
	if len(subscribers) == 0 {
		delete(h.sessions, c.SessionID)
	}
	c.closeSend()
}
