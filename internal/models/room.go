package models

import (
	"time"

	"github.com/google/uuid"
)

// Stage is one phase of a betting round.
type Stage string

const (
	StagePreflop  Stage = "preflop"
	StageFlop     Stage = "flop"
	StageTurn     Stage = "turn"
	StageRiver    Stage = "river"
	StageShowdown Stage = "showdown"
)

// Room is the whole-document aggregate for one table. It is loaded, mutated
// and saved as a unit on every inbound action.
type Room struct {
	ID uuid.UUID `json:"id"`

	// Code is the short join token. Stored uppercase; lookups are
	// case-insensitive. Immutable after creation.
	Code string `json:"code"`
	Name string `json:"name"`

	// Players in seating order. The order is load-bearing for turn rotation
	// and must never be reordered; seats are only appended (join) or removed
	// (permanent leave).
	Players []*Player `json:"players"`

	// Pot is the sum of all committed bets not yet awarded.
	Pot int `json:"pot"`

	// MaxBet is the highest CurrentBet in the active betting stage.
	MaxBet int `json:"maxBet"`

	// CurrentTurnIndex is the seat whose action is awaited.
	CurrentTurnIndex int `json:"currentTurnIndex"`

	// ActionMarkerIndex is the seat that opened the current betting stage.
	// The stage closes when action returns to this seat with all bets
	// matched. A raise moves the marker to the raiser.
	ActionMarkerIndex int `json:"actionMarkerIndex"`

	Stage Stage `json:"stage"`

	// CommunityCards are opaque tokens; this service never deals or
	// evaluates real cards. Length follows the stage: 0, 3, 4, 5.
	CommunityCards []string `json:"communityCards"`

	// ShowCards gates the client's reveal overlay between round end and the
	// delayed reset.
	ShowCards bool `json:"showCards"`

	// CanSelectWinner is true only at a natural showdown, enabling manual
	// winner selection. Auto-awards leave it false.
	CanSelectWinner bool `json:"canSelectWinner"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Version is the optimistic-concurrency token maintained by the store.
	// Not part of the broadcast snapshot.
	Version int64 `json:"-"`
}

// NewRoom builds an empty room at preflop with the given join code.
func NewRoom(name, code string) *Room {
	now := time.Now().UTC()
	return &Room{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		Players:   []*Player{},
		Stage:     StagePreflop,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PlayerIndex returns the seat index for a player id, or -1 when the player
// is not seated in this room.
func (r *Room) PlayerIndex(id uuid.UUID) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// PlayerByID returns the seated player with the given id, or nil.
func (r *Room) PlayerByID(id uuid.UUID) *Player {
	if i := r.PlayerIndex(id); i >= 0 {
		return r.Players[i]
	}
	return nil
}

// ActiveCount returns the number of players still contending for the pot.
func (r *Room) ActiveCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Active() {
			n++
		}
	}
	return n
}
