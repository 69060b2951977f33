package table

import (
	"github.com/google/uuid"

	"github.com/chiptally/chiptally/internal/models"
)

// addPlayer appends a new seat at the end of the seating order.
func addPlayer(room *models.Room, name string, balance int) *models.Player {
	p := &models.Player{
		ID:      uuid.New(),
		Name:    name,
		Balance: balance,
	}
	room.Players = append(room.Players, p)
	return p
}

// leaveTemporarily marks the seat inactive and auto-folds it for the current
// round. Seat and balance persist. If it was the leaver's turn, the turn
// pointer moves on so the table doesn't stall waiting for them.
func leaveTemporarily(room *models.Room, idx int) {
	p := room.Players[idx]
	p.Inactive = true
	p.Folded = true
	if idx == room.CurrentTurnIndex {
		room.CurrentTurnIndex = nextTurnIndex(room.Players, room.CurrentTurnIndex)
	}
}

// rejoinSeat restores eligibility after a temporary leave. Turn pointers are
// left alone; the player is simply no longer skipped.
func rejoinSeat(room *models.Room, idx int) {
	p := room.Players[idx]
	p.Inactive = false
	p.Folded = false
}

// removePlayer takes a seat out of the ordering permanently and re-bases the
// turn indices against the shorter list: seats removed before the current
// turn shift it down by one, removing the current turn re-mods it against the
// new length, and the action marker is clamped into range. Removing the last
// seat resets the turn pointer to 0.
func removePlayer(room *models.Room, idx int) {
	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	n := len(room.Players)
	if n == 0 {
		room.CurrentTurnIndex = 0
		room.ActionMarkerIndex = 0
		return
	}
	if idx < room.CurrentTurnIndex {
		room.CurrentTurnIndex--
	}
	room.CurrentTurnIndex %= n
	if room.ActionMarkerIndex >= n {
		room.ActionMarkerIndex = n - 1
	}
}
