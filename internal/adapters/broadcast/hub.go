// Package broadcast fans freshly composed commentary out to WebSocket
// subscribers. Clients subscribe per game; delivery is best-effort and a
// slow reader is dropped rather than allowed to stall the pipeline.
package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/jasper9/nbastats.fun/internal/domain/model"
	"github.com/jasper9/nbastats.fun/pkg/logger"
)

const sendBuffer = 64

// client is a single WebSocket subscriber to one game's feed.
type client struct {
	id     string
	gameID string
	conn   *websocket.Conn
	send   chan []byte
}

// writePump drains the send channel onto the connection until it closes.
func (c *client) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub manages per-game WebSocket subscribers.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[string]*client // gameID -> clientID -> client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[string]*client),
	}
}

// Publish sends messages to every subscriber of gameID. Non-blocking: a
// subscriber whose buffer is full misses the batch.
func (h *Hub) Publish(gameID string, msgs []model.Message) {
	if len(msgs) == 0 {
		return
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		logger.Get().Error(context.Background(), "marshal broadcast batch", logger.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients[gameID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ServeWS upgrades the request and streams gameID's commentary until the
// client disconnects or ctx is cancelled.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID string) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Get().Warn(r.Context(), "websocket accept failed",
			logger.String("game_id", gameID),
			logger.Error(err))
		return
	}

	c := &client{
		id:     uuid.NewString(),
		gameID: gameID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.register(c)
	defer h.unregister(c)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go c.writePump(ctx)

	// Reads are discarded; the socket is one-way. Reading still services
	// control frames and detects the peer going away.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}

// Subscribers reports the current subscriber count for a game.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[gameID])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.clients[c.gameID]
	if !ok {
		g = make(map[string]*client)
		h.clients[c.gameID] = g
	}
	g[c.id] = c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.clients[c.gameID]
	if !ok {
		return
	}
	if _, ok := g[c.id]; ok {
		close(c.send)
		delete(g, c.id)
	}
	if len(g) == 0 {
		delete(h.clients, c.gameID)
	}
}
