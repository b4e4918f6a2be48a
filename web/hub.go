package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var ErrUnknownClient = errors.New("unknown client")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendQueue  = 32
)

// Message is WebSocket payload exchanged with client runtime. Server sends
// "hello" after connect and "rpc" to run client functions, clients send
// "realtime" to run server functions.
type Message struct {
	Type     string          `json:"type"`
	Func     string          `json:"func,omitempty"`
	Args     json.RawMessage `json:"args,omitempty"`
	ClientID string          `json:"client_id,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// enqueue reports false when client send queue is full.
func (c *client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return true
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub tracks connected clients.
type Hub struct {
	app      *App
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

func newHub(a *App) *Hub {
	return &Hub{
		app:      a,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		clients:  make(map[string]*client),
	}
}

// Clients returns ids of connected clients.
func (h *Hub) Clients() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.clients))
	for id := range h.clients {
		out = append(out, id)
	}
	return out
}

func rpcPayload(name string, args []any) ([]byte, error) {
	if args == nil {
		args = []any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("unable to encode arguments for %q: %w", name, err)
	}
	return json.Marshal(Message{Type: "rpc", Func: name, Args: raw})
}

// Broadcast runs client function name with args on every connected client.
// Clients which cannot keep up are disconnected.
func (h *Hub) Broadcast(name string, args ...any) error {
	payload, err := rpcPayload(name, args)
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, payload)
	}
	return nil
}

// Invoke runs client function name with args on single client.
func (h *Hub) Invoke(clientID, name string, args ...any) error {
	payload, err := rpcPayload(name, args)
	if err != nil {
		return err
	}

	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("client %q: %w", clientID, ErrUnknownClient)
	}
	h.deliver(c, payload)
	return nil
}

func (h *Hub) deliver(c *client, payload []byte) {
	if !c.enqueue(payload) {
		h.app.log.Warn("Client send queue is full, disconnecting", zap.String("client", c.id))
		h.unregister(context.Background(), c)
	}
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.unregister(context.Background(), c)
	}
}

func (h *Hub) register(ctx context.Context, c *client) {
	h.mu.Lock()
	old, exists := h.clients[c.id]
	h.clients[c.id] = c
	h.mu.Unlock()

	if exists {
		// same id reconnected, drop stale connection quietly
		old.close()
	}
	h.app.Emit(ctx, EventConnect, c.id)
}

func (h *Hub) unregister(ctx context.Context, c *client) {
	h.mu.Lock()
	cur, ok := h.clients[c.id]
	if ok && cur == c {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()

	c.close()
	if ok && cur == c {
		h.app.Emit(ctx, EventDisconnect, c.id)
	}
}

func (h *Hub) handleSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("client_id")
	if id == "" {
		id = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.app.log.Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{id: id, conn: conn, send: make(chan []byte, sendQueue)}
	ctx := context.WithoutCancel(r.Context())

	hello, _ := json.Marshal(Message{Type: "hello", ClientID: id})
	c.enqueue(hello)

	h.register(ctx, c)
	go h.writePump(c)
	h.readPump(ctx, c)
}

func (h *Hub) readPump(ctx context.Context, c *client) {
	defer func() {
		h.unregister(ctx, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxBodySize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.app.log.Debug("WebSocket closed", zap.String("client", c.id), zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.app.log.Warn("Invalid message from client", zap.String("client", c.id), zap.Error(err))
			continue
		}
		if msg.Type != "realtime" {
			continue
		}
		if err := h.app.callRealtime(ctx, c.id, msg.Func, msg.Args); err != nil {
			h.app.log.Warn("Realtime call failed", zap.String("client", c.id), zap.String("func", msg.Func), zap.Error(err))
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
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
