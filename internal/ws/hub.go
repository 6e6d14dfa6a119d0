package ws

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/windoze95/saltybytes-search/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client represents a single search session over WebSocket.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	SessionID string

	ctx       context.Context
	cancel    context.CancelFunc
	searching atomic.Bool
	limiter   *rate.Limiter
}

// NewClient creates a client whose context ends when the session closes.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan []byte, 64),
		SessionID: sessionID,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Context returns the session context. It is canceled on disconnect.
func (c *Client) Context() context.Context { return c.ctx }

// SetSearchRate limits the session to rps searches per second. A
// non-positive rps removes the limit.
func (c *Client) SetSearchRate(rps int) {
	if rps <= 0 {
		c.limiter = nil
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), rps)
}

func (c *Client) allowSearch() bool {
	return c.limiter == nil || c.limiter.Allow()
}

// Close cancels the session context. Any in-flight search stops.
func (c *Client) Close() { c.cancel() }

// Hub tracks open search sessions.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu       sync.RWMutex
	sessions map[string]*Client
	done     chan struct{}
}

// NewHub creates and returns a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		sessions:   make(map[string]*Client),
		done:       make(chan struct{}),
	}
}

// Run handles register and unregister events until ctx is done. It should be
// launched as a goroutine.
func (h *Hub) Run(ctx context.Context) {
	log := logger.Get()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.sessions {
				client.Close()
				delete(h.sessions, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.sessions[client.SessionID] = client
			h.mu.Unlock()

			log.Info("search session opened", zap.String("session_id", client.SessionID))

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.sessions[client.SessionID]; ok {
				delete(h.sessions, client.SessionID)
				client.Close()
			}
			h.mu.Unlock()

			log.Info("search session closed", zap.String("session_id", client.SessionID))
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Add registers client. It returns false if the hub has stopped.
func (h *Hub) Add(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Remove unregisters client. After the hub has stopped it only closes the
// client.
func (h *Hub) Remove(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
		client.Close()
	}
}

// ActiveSessions returns the number of open sessions.
func (h *Hub) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// ReadPump reads messages from the WebSocket connection. It is intended to be
// run in a per-client goroutine. The provided handler is called for each
// incoming message.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		c.Hub.Remove(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
			) {
				logger.Get().Warn("unexpected websocket close",
					zap.String("session_id", c.SessionID),
					zap.Error(err),
				)
			}
			break
		}
		handler(c, message)
	}
}

// WritePump sends messages from the Send channel to the WebSocket connection
// until the session context ends. It also sends periodic pings to keep the
// connection alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Close()
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}
