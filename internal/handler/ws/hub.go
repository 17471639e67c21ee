// Package ws pushes computed dashboard state to browser clients over
// websockets. The hub owns the client set; handlers only upgrade and
// hand the connection over.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"FinGauge/internal/domain/models"
	domrepo "FinGauge/internal/domain/repository"
	applogger "FinGauge/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 8
)

// The dashboard is same-origin; local tools connect without one.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Frame is one message to a dashboard client.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans overview frames out to every connected client. Slow clients
// are dropped rather than allowed to stall the broadcast.
type Hub struct {
	metrics domrepo.Metrics
	l       *applogger.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	mu      sync.Mutex
	clients map[*client]bool
	last    []byte
	started bool
	stopCh  chan struct{}
}

func NewHub(metrics domrepo.Metrics, l *applogger.Logger) *Hub {
	return &Hub{
		metrics:    metrics,
		l:          l,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 4),
		clients:    make(map[*client]bool),
		stopCh:     make(chan struct{}),
	}
}

// Start launches the hub loop.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()

	go h.run()
}

// Stop disconnects every client and stops the hub loop.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.started {
		h.mu.Unlock()
		return
	}
	h.started = false
	h.mu.Unlock()
	close(h.stopCh)
}

func (h *Hub) run() {
	for {
		select {
		case <-h.stopCh:
			h.mu.Lock()
			for cl := range h.clients {
				close(cl.send)
				delete(h.clients, cl)
			}
			h.mu.Unlock()
			h.metrics.RecordClients(0)
			return

		case cl := <-h.register:
			h.mu.Lock()
			h.clients[cl] = true
			n := len(h.clients)
			// A fresh client sees the current state right away.
			if h.last != nil {
				select {
				case cl.send <- h.last:
				default:
				}
			}
			h.mu.Unlock()
			h.metrics.RecordClients(n)
			if h.l != nil {
				h.l.Debug("ws client connected", applogger.Int("clients", n))
			}

		case cl := <-h.unregister:
			h.mu.Lock()
			n := len(h.clients)
			if h.clients[cl] {
				delete(h.clients, cl)
				close(cl.send)
				n = len(h.clients)
			}
			h.mu.Unlock()
			h.metrics.RecordClients(n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			h.last = msg
			for cl := range h.clients {
				select {
				case cl.send <- msg:
				default:
					delete(h.clients, cl)
					close(cl.send)
					h.metrics.RecordError("ws_slow_client")
				}
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.metrics.RecordClients(n)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues an overview frame for every client. A full hub
// queue returns an error instead of blocking the caller.
func (h *Hub) Broadcast(ctx context.Context, o *models.Overview) error {
	b, err := json.Marshal(Frame{Type: "overview", Data: o})
	if err != nil {
		return fmt.Errorf("marshal overview frame: %w", err)
	}
	select {
	case h.broadcast <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("hub broadcast queue full")
	}
}

// Serve upgrades the request and attaches the connection to the hub.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("ws upgrade: %w", err)
	}
	cl := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case h.register <- cl:
	case <-h.stopCh:
		conn.Close()
		return fmt.Errorf("hub stopped")
	}

	go cl.writePump()
	go cl.readPump()
	return nil
}

// readPump consumes control frames and detects disconnects. Clients
// send nothing the dashboard acts on.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopCh:
		}
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

func (c *client) writePump() {
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
