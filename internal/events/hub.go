// Package events broadcasts store changes to WebSocket clients.
//
// Every successful mutation is published as a Message; connected clients
// receive it as JSON text. Publishing never blocks the caller: when the
// queue or a client falls behind, messages are dropped.
package events

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/mesh-intelligence/todograph/internal/telemetry"
	"github.com/mesh-intelligence/todograph/pkg/types"
)

// MessageType defines the type of change message
type MessageType string

const (
	// MessageTypeHello is sent once to each client after it connects
	MessageTypeHello MessageType = "hello"

	MessageTypeUserChanged    MessageType = "user_changed"
	MessageTypeTodoChanged    MessageType = "todo_changed"
	MessageTypeProjectChanged MessageType = "project_changed"
)

var entityTypes = map[string]MessageType{
	types.EntityUser:    MessageTypeUserChanged,
	types.EntityTodo:    MessageTypeTodoChanged,
	types.EntityProject: MessageTypeProjectChanged,
}

// Message is one broadcast frame
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ChangeData identifies the changed entity
type ChangeData struct {
	ID     string `json:"id"`
	Action string `json:"action"` // created, updated, deleted, toggled, linked, unlinked
}

// Config holds hub configuration
type Config struct {
	// Buffer is the broadcast queue length (default: 100)
	Buffer int

	// WriteTimeout bounds each client write (default: 5s)
	WriteTimeout time.Duration

	// Logger for hub activity (default: log.Default())
	Logger telemetry.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Buffer:       100,
		WriteTimeout: 5 * time.Second,
		Logger:       log.Default(),
	}
}

// Hub manages WebSocket clients and fans out messages to them.
type Hub struct {
	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	broadcast    chan Message
	writeTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	logger telemetry.Logger
}

// NewHub creates a hub and starts its broadcast loop. Call Close to stop it.
func NewHub(config *Config) *Hub {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.Buffer <= 0 {
		config.Buffer = 100
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:      make(map[*websocket.Conn]bool),
		broadcast:    make(chan Message, config.Buffer),
		writeTimeout: config.WriteTimeout,
		ctx:          ctx,
		cancel:       cancel,
		logger:       config.Logger,
	}

	h.wg.Add(1)
	go h.broadcastLoop()
	return h
}

// Publish queues a change message for entity. It satisfies graph.Publisher.
func (h *Hub) Publish(entity, id, action string) {
	msgType, ok := entityTypes[entity]
	if !ok {
		h.logger.Printf("events: unknown entity %q", entity)
		return
	}
	data, err := json.Marshal(ChangeData{ID: id, Action: action})
	if err != nil {
		h.logger.Printf("events: marshal change: %v", err)
		return
	}
	h.Broadcast(Message{Type: msgType, Timestamp: time.Now(), Data: data})
}

// Broadcast queues msg for every connected client without blocking.
func (h *Hub) Broadcast(msg Message) {
	select {
	case <-h.ctx.Done():
		return
	default:
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Printf("events: broadcast queue full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and stops the broadcast loop. Idempotent.
func (h *Hub) Close() {
	h.once.Do(func() {
		h.cancel()

		h.clientsMu.Lock()
		for conn := range h.clients {
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			delete(h.clients, conn)
		}
		h.clientsMu.Unlock()

		h.wg.Wait()
	})
}

func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return
		case msg := <-h.broadcast:
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now()
			}
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Printf("events: marshal message: %v", err)
				continue
			}

			h.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				clients = append(clients, conn)
			}
			h.clientsMu.RUnlock()

			for _, conn := range clients {
				if err := h.write(conn, data); err != nil {
					h.logger.Printf("events: send to client: %v", err)
					h.removeClient(conn)
				}
			}
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(h.ctx, h.writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

// ServeHTTP upgrades the request to a WebSocket and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Printf("events: websocket upgrade failed: %v", err)
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.clientsMu.Unlock()
	h.logger.Printf("events: client connected (total: %d)", count)

	hello, _ := json.Marshal(Message{Type: MessageTypeHello, Timestamp: time.Now()})
	if err := h.write(conn, hello); err != nil {
		h.removeClient(conn)
		return
	}

	// Clients only listen; reading detects disconnects.
	h.readLoop(conn)
}

func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.removeClient(conn)
	for {
		if _, _, err := conn.Read(h.ctx); err != nil {
			return
		}
	}
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, ok := h.clients[conn]; !ok {
		h.clientsMu.Unlock()
		return
	}
	delete(h.clients, conn)
	count := len(h.clients)
	h.clientsMu.Unlock()

	_ = conn.Close(websocket.StatusNormalClosure, "")
	h.logger.Printf("events: client disconnected (total: %d)", count)
}
