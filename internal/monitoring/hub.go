package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"cambistas-backend/internal/metrics"
	"cambistas-backend/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
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
	// Callers authenticate with a token, not cookies
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans ledger events out to connected websocket clients. Clients only
// learn that something changed and re-query the API for fresh rows.
type Hub struct {
	mu        sync.Mutex
	clients   map[*client]struct{}
	broadcast chan models.LedgerEvent
	logger    *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan models.LedgerEvent, 64),
		logger:    logger.Named("hub"),
	}
}

// Publish queues an event without blocking the ledger writer
func (h *Hub) Publish(event models.LedgerEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("event dropped, broadcast queue full", zap.String("type", string(event.Type)))
	}
}

// Run delivers queued events until ctx is done, then disconnects everyone
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("encode event", zap.Error(err))
				continue
			}
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// Too slow to keep up; it can reconnect and re-query
					h.removeLocked(c)
				}
			}
			h.mu.Unlock()
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.removeLocked(c)
			}
			h.mu.Unlock()
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.WebsocketClients.Set(float64(len(h.clients)))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// ServeWS upgrades the request and registers the connection
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	metrics.WebsocketClients.Set(float64(len(h.clients)))
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// readPump only watches for close frames and pongs
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
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
