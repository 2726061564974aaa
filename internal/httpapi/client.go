package httpapi

import (
	"log"
	"sync"
	"time"

	"stat-wizard/internal/quiz"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// The feed is one-way; peers only send control frames.
	maxMessageSize = 512

	sendBufferSize = 16
)

// Client is one websocket subscriber of a session feed.
type Client struct {
	ID        string
	SessionID string

	conn      *websocket.Conn
	hub       *Hub
	send      chan quiz.View
	closeOnce sync.Once

	// Highest session version written so far. Only WritePump touches it.
	written int64
}

func NewClient(id, sessionID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:        id,
		SessionID: sessionID,
		conn:      conn,
		hub:       hub,
		send:      make(chan quiz.View, sendBufferSize),
	}
}

// TrySend queues a view without blocking. It reports false when the buffer
// is full.
func (c *Client) TrySend(view quiz.View) bool {
	select {
	case c.send <- view:
		return true
	default:
		return false
	}
}

// ReadPump drains the connection so pongs and close frames are processed.
// It unregisters the client when the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("client %s unexpected close: %v", c.ID, err)
			}
			return
		}
	}
}

// WritePump writes queued views and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case view, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			message := sessionMessage{Type: "session", View: view, Timestamp: time.Now().UTC()}
			if err := c.conn.WriteJSON(message); err != nil {
				log.Printf("client %s write error: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// accept reports whether view is at least as new as the last one written.
func (c *Client) accept(view quiz.View) bool {
	if view.Version < c.written {
		return false
	}
	c.written = view.Version
	return true
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}
