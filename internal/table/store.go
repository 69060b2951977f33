package table

import (
	"context"

	"github.com/chiptally/chiptally/internal/models"
)

// Store is the durable keyed storage for room documents. Implementations
// must provide atomic whole-document save semantics; the engine never holds
// an authoritative in-memory copy between operations.
type Store interface {
	// CreateRoom inserts a new room. Returns ErrCodeTaken if the join code
	// is already in use.
	CreateRoom(ctx context.Context, room *models.Room) error

	// LoadRoom fetches a room by join code, case-insensitively. Returns
	// ErrRoomNotFound when no such room exists.
	LoadRoom(ctx context.Context, code string) (*models.Room, error)

	// SaveRoom persists the whole document. Returns ErrVersionConflict when
	// the stored version no longer matches room.Version, ErrRoomNotFound
	// when the room has been deleted.
	SaveRoom(ctx context.Context, room *models.Room) error
}
