package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 8
)

// Message is the envelope pushed to clients
type Message struct {
	Type    string               `json:"type"` // "report"
	Payload *contracts.RunReport `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts finished reports to connected websocket clients
// ⭐ SSOT: 웹소켓 브로드캐스트는 여기서만
type Hub struct {
	logger   *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	last    []byte // 새 클라이언트에게 먼저 전송
}

// NewHub creates a new hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Name returns the sink name
func (h *Hub) Name() string {
	return "websocket"
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues the report for every client. Clients whose buffer is full
// are disconnected.
func (h *Hub) Publish(_ context.Context, report *contracts.RunReport) error {
	data, err := json.Marshal(Message{Type: "report", Payload: report})
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Dropping slow websocket client")
			delete(h.clients, c)
			close(c.send)
		}
	}
	return nil
}

// ServeHTTP upgrades the connection and streams reports until the client leaves
// GET /ws/reports
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	h.logger.WithField("remote", r.RemoteAddr).Debug("Websocket client connected")

	go h.writePump(c)
	h.readPump(c)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump discards client messages and keeps the pong deadline fresh
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
