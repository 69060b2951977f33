package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chiptally/chiptally/internal/models"
	"github.com/chiptally/chiptally/internal/table"
)

// Rooms are stored as whole jsonb documents next to an optimistic version
// counter. Every save replaces the document and bumps the version; a save
// that misses the expected version lost a concurrent-update race and is
// rejected so the caller can surface it instead of silently overwriting.
const roomsSchema = `
CREATE TABLE IF NOT EXISTS rooms (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	doc JSONB NOT NULL,
	version BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// RoomStore is the postgres-backed table.Store.
type RoomStore struct {
	pool *pgxpool.Pool
}

// NewRoomStore wraps a connected pool.
func NewRoomStore(pool *pgxpool.Pool) *RoomStore {
	return &RoomStore{pool: pool}
}

// EnsureSchema creates the rooms table if it doesn't exist yet.
func (s *RoomStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, roomsSchema); err != nil {
		return fmt.Errorf("failed to ensure rooms schema: %w", err)
	}
	return nil
}

// CreateRoom inserts a new room document at version 1.
func (s *RoomStore) CreateRoom(ctx context.Context, room *models.Room) error {
	doc, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", room.Code, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO rooms (id, code, doc, version) VALUES ($1, $2, $3, 1)`,
		room.ID, room.Code, doc,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return table.ErrCodeTaken
		}
		return fmt.Errorf("failed to insert room %s: %w", room.Code, err)
	}
	room.Version = 1
	return nil
}

// LoadRoom fetches a room by join code, case-insensitively.
func (s *RoomStore) LoadRoom(ctx context.Context, code string) (*models.Room, error) {
	var doc []byte
	var version int64
	err := s.pool.QueryRow(ctx,
		`SELECT doc, version FROM rooms WHERE code = upper($1)`,
		code,
	).Scan(&doc, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, table.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load room %s: %w", code, err)
	}

	var room models.Room
	if err := json.Unmarshal(doc, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room %s: %w", code, err)
	}
	room.Version = version
	return &room, nil
}

// SaveRoom replaces the whole document if nobody saved in between.
func (s *RoomStore) SaveRoom(ctx context.Context, room *models.Room) error {
	doc, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", room.Code, err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE rooms SET doc = $1, version = version + 1, updated_at = now()
		 WHERE id = $2 AND version = $3`,
		doc, room.ID, room.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save room %s: %w", room.Code, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`, room.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check room %s after stale save: %w", room.Code, err)
		}
		if !exists {
			return table.ErrRoomNotFound
		}
		return table.ErrVersionConflict
	}
	room.Version++
	return nil
}
