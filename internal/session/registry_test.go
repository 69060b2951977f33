package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/chiptally/chiptally/internal/table"
)

func TestBindResolveUnbind(t *testing.T) {
	r := NewRegistry(nil)
	connID := uuid.New()
	playerID := uuid.New()

	_, ok := r.Resolve(connID)
	assert.False(t, ok, "unbound connection resolves to nothing")

	r.Register(connID, nil)
	r.Bind(connID, playerID)

	got, ok := r.Resolve(connID)
	assert.True(t, ok)
	assert.Equal(t, playerID, got)

	// Rebinding replaces: a connection maps to at most one player.
	other := uuid.New()
	r.Bind(connID, other)
	got, _ = r.Resolve(connID)
	assert.Equal(t, other, got)

	r.Unregister(connID)
	_, ok = r.Resolve(connID)
	assert.False(t, ok, "disconnect clears the binding")
}

func TestJoinRoomNormalizesCode(t *testing.T) {
	r := NewRegistry(nil)
	connID := uuid.New()
	r.Register(connID, nil)
	r.JoinRoom(connID, "ab2c3d")

	r.mu.RLock()
	defer r.mu.RUnlock()
	assert.Equal(t, "AB2C3D", r.rooms[connID])
}

func TestSendToUnknownConnectionIsNoop(t *testing.T) {
	r := NewRegistry(nil)
	// Must not panic or block.
	r.Send(uuid.New(), table.Event{Type: table.EventPong})
}
