// Package session tracks live websocket connections: which player each one
// is bound to and which room code it is joined to. Bindings die with the
// connection; nothing here is durable.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chiptally/chiptally/internal/table"
)

// writeTimeout bounds each outbound websocket write so one stalled client
// cannot hold up a broadcast goroutine indefinitely.
const writeTimeout = 3 * time.Second

// Registry is the in-memory connection registry. It implements
// table.Broadcaster for room-wide fan-out.
type Registry struct {
	log *logrus.Logger

	mu      sync.RWMutex
	conns   map[uuid.UUID]*websocket.Conn
	players map[uuid.UUID]uuid.UUID // connID -> bound playerID
	rooms   map[uuid.UUID]string    // connID -> joined room code
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.New()
	}
	return &Registry{
		log:     logger,
		conns:   make(map[uuid.UUID]*websocket.Conn),
		players: make(map[uuid.UUID]uuid.UUID),
		rooms:   make(map[uuid.UUID]string),
	}
}

// Register adds a freshly accepted connection.
func (r *Registry) Register(connID uuid.UUID, c *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = c
}

// Unregister drops a connection along with its player binding and room
// subscription. Called on disconnect.
func (r *Registry) Unregister(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
	delete(r.players, connID)
	delete(r.rooms, connID)
}

// Bind links a connection to a player identity, replacing any prior binding.
// A connection is bound to at most one player.
func (r *Registry) Bind(connID, playerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[connID] = playerID
}

// Resolve returns the player bound to a connection, if any.
func (r *Registry) Resolve(connID uuid.UUID) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.players[connID]
	return id, ok
}

// JoinRoom subscribes a connection to a room code's broadcasts, replacing
// any previous subscription.
func (r *Registry) JoinRoom(connID uuid.UUID, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[connID] = table.NormalizeCode(code)
}

// InRoom reports whether a connection is subscribed to the room code's
// broadcasts.
func (r *Registry) InRoom(connID uuid.UUID, code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[connID] == table.NormalizeCode(code)
}

// BroadcastToRoom sends the event to every connection joined to the room
// code. Fire-and-forget: writes happen on their own goroutine, at most once
// per connection, and a failed write is logged and skipped.
func (r *Registry) BroadcastToRoom(code string, ev table.Event) {
	code = table.NormalizeCode(code)

	r.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(r.rooms))
	for connID, joined := range r.rooms {
		if joined != code {
			continue
		}
		if c, ok := r.conns[connID]; ok {
			targets = append(targets, c)
		}
	}
	r.mu.RUnlock()

	if len(targets) == 0 {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		r.log.Errorf("Failed to marshal broadcast event (%s) for room %s: %v", ev.Type, code, err)
		return
	}

	go func(conns []*websocket.Conn, payload []byte) {
		for _, c := range conns {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := c.Write(ctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				r.log.Warnf("Failed to write broadcast message to room %s subscriber: %v", code, err)
			}
		}
	}(targets, data)
}

// Send delivers an event to a single connection, synchronously with a write
// timeout. Used for errors and other requester-only responses.
func (r *Registry) Send(connID uuid.UUID, ev table.Event) {
	r.mu.RLock()
	c, ok := r.conns[connID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		r.log.Errorf("Failed to marshal event (%s) for connection %s: %v", ev.Type, connID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		r.log.Warnf("Failed to write message to connection %s: %v", connID, err)
	}
}
