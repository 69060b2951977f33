package models

import (
	"github.com/google/uuid"
)

// DefaultBalance is the starting stack used when a join request omits a
// balance or asks for an invalid one.
const DefaultBalance = 1000

// Player is one seat at a table. Seats are ordered; the slice index inside
// Room.Players is the seating order and drives turn rotation.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	// Balance is the player's chip stack. Never negative: every debit is
	// validated (raise) or clamped (call all-in) before it is applied.
	Balance int `json:"balance"`

	// CurrentBet is what the player has committed in the current betting
	// stage only. Cleared on every stage advance and on round reset.
	CurrentBet int `json:"currentBet"`

	// Folded excludes the player from the current round's pot contention
	// without giving up the seat. Cleared on round reset.
	Folded bool `json:"folded"`

	// Inactive marks a temporary leave. Treated like folded for turn and pot
	// purposes, but persists across round resets until an explicit rejoin.
	Inactive bool `json:"inactive"`
}

// Active reports whether the player is still contending for the pot.
func (p *Player) Active() bool {
	return !p.Folded && !p.Inactive
}
