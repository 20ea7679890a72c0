// Package live pushes state-change events to connected host consoles over
// websockets. Polling the HTTP endpoints remains the fallback; the hub only
// saves clients a poll interval.
package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cuefm/logger"
	"cuefm/model"
)

// EventType discriminates hub events.
type EventType string

const (
	// EventDocumentChanged reports that a persisted document was rewritten.
	EventDocumentChanged EventType = "document_changed"
	// EventRemoteCommand relays a freshly sent remote command.
	EventRemoteCommand EventType = "remote_command"
)

// Event is the wire message pushed to clients.
type Event struct {
	Type     EventType            `json:"type"`
	Document string               `json:"document,omitempty"`
	Command  *model.RemoteCommand `json:"command,omitempty"`
	TS       int64                `json:"ts"`
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to every connected client.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast sends the event to all connected clients. Clients that cannot
// keep up are dropped.
func (h *Hub) Broadcast(ev Event) {
	if ev.TS == 0 {
		ev.TS = time.Now().UnixMilli()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Error("[Live] Marshal event failed", logger.ErrorField(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve owns the connection: it registers the client, runs the write and
// read pumps, and cleans up when either side goes away.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

// readPump discards inbound messages; the hub is push-only. It exists to
// notice the peer closing the connection.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}
