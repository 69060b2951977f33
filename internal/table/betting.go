package table

import (
	"fmt"

	"github.com/chiptally/chiptally/internal/models"
)

// Action is a betting move a seated player can make on their turn.
type Action string

const (
	ActionFold  Action = "fold"
	ActionCall  Action = "call"
	ActionRaise Action = "raise"
)

// RoundOutcome describes where the betting round stands after an action has
// been applied and the turn pointer advanced.
type RoundOutcome int

const (
	// RoundOpen: betting continues; only the turn pointer changed.
	RoundOpen RoundOutcome = iota
	// RoundClosed: every obligation is met and action returned to the
	// marker; the stage advances.
	RoundClosed
	// RoundCollapsed: one active player remains; the round ends immediately
	// with an auto-award regardless of bet matching.
	RoundCollapsed
)

// applyAction validates and applies a single fold/call/raise against the
// room, then advances the turn pointer and reports the round outcome.
//
// Validation happens before any mutation, so a rejected action leaves the
// room untouched. Call is the one action that can't be rejected once turn
// ownership is established: a call that exceeds the balance is clamped to an
// all-in of the remaining stack, which may leave CurrentBet below MaxBet.
// Raise is all-or-nothing: the full cost must be covered or the action is
// rejected with ErrInsufficientFunds.
func applyAction(room *models.Room, actingIndex int, action Action, amount int) (RoundOutcome, error) {
	// No betting at showdown or while a reveal window is open, otherwise a
	// collapse could be re-triggered and pay the pot a second time.
	if room.Stage == models.StageShowdown || room.ShowCards {
		return RoundOpen, ErrRoundOver
	}
	if actingIndex != room.CurrentTurnIndex {
		return RoundOpen, ErrNotYourTurn
	}
	player := room.Players[actingIndex]

	switch action {
	case ActionFold:
		player.Folded = true

	case ActionCall:
		cost := room.MaxBet - player.CurrentBet
		if cost > player.Balance {
			cost = player.Balance // all-in
		}
		player.Balance -= cost
		player.CurrentBet += cost
		room.Pot += cost

	case ActionRaise:
		if amount <= room.MaxBet {
			return RoundOpen, ErrInvalidRaise
		}
		cost := amount - player.CurrentBet
		if cost > player.Balance {
			return RoundOpen, ErrInsufficientFunds
		}
		player.Balance -= cost
		player.CurrentBet += cost
		room.Pot += cost
		room.MaxBet = amount
		// The raiser becomes the seat the action must return to before the
		// stage can close.
		room.ActionMarkerIndex = actingIndex

	default:
		return RoundOpen, fmt.Errorf("unknown action %q", action)
	}

	room.CurrentTurnIndex = nextTurnIndex(room.Players, room.CurrentTurnIndex)
	return roundOutcome(room), nil
}

// roundOutcome evaluates closure after the turn pointer has advanced.
func roundOutcome(room *models.Room) RoundOutcome {
	if room.ActiveCount() == 1 {
		return RoundCollapsed
	}
	if room.CurrentTurnIndex != room.ActionMarkerIndex {
		return RoundOpen
	}
	if room.MaxBet == 0 {
		// Everyone checked around to the marker.
		return RoundClosed
	}
	for _, p := range room.Players {
		if p.Active() && p.CurrentBet != room.MaxBet {
			return RoundOpen
		}
	}
	return RoundClosed
}
