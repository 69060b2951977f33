package table

import (
	"github.com/google/uuid"

	"github.com/chiptally/chiptally/internal/models"
)

// awardResult names the sole winner of a collapsed round for the round:ended
// broadcast.
type awardResult struct {
	WinnerID uuid.UUID
	Amount   int
}

// collapseRound pays the entire pot to the last active player and freezes the
// room in a reveal state until the delayed reset fires. The pot itself is
// zeroed by the reset, not here, so clients can display what was won during
// the reveal window. Returns nil in the pathological case of no active seats.
func collapseRound(room *models.Room) *awardResult {
	var winner *models.Player
	for _, p := range room.Players {
		if p.Active() {
			winner = p
			break
		}
	}
	if winner == nil {
		return nil
	}
	amount := room.Pot
	winner.Balance += amount
	room.Stage = models.StageShowdown
	room.ShowCards = true
	room.CanSelectWinner = false
	return &awardResult{WinnerID: winner.ID, Amount: amount}
}

// awardPot splits the pot among the selected winners by integer floor
// division. The remainder goes entirely to the first winner that resolves to
// a seated player, in the order given; this tie-break is deterministic and
// must stay that way. Returns ErrInvalidAward when no winner resolves.
//
// Award and the reveal flag are applied here; the caller schedules the same
// full reset both termination paths share.
func awardPot(room *models.Room, winnerIDs []uuid.UUID) error {
	if !room.CanSelectWinner {
		return ErrInvalidAward
	}
	var winners []*models.Player
	for _, id := range winnerIDs {
		if p := room.PlayerByID(id); p != nil {
			winners = append(winners, p)
		}
	}
	if len(winners) == 0 {
		return ErrInvalidAward
	}

	share := room.Pot / len(winners)
	remainder := room.Pot % len(winners)
	for _, w := range winners {
		w.Balance += share
	}
	winners[0].Balance += remainder

	room.Pot = 0
	room.CanSelectWinner = false
	room.ShowCards = true
	return nil
}

// resetRound returns the room to a fresh preflop hand. Balances and inactive
// flags persist; everything else about the previous round is cleared.
func resetRound(room *models.Room) {
	for _, p := range room.Players {
		p.Folded = false
		p.CurrentBet = 0
	}
	room.Pot = 0
	room.MaxBet = 0
	room.CurrentTurnIndex = 0
	room.ActionMarkerIndex = 0
	room.Stage = models.StagePreflop
	room.CommunityCards = nil
	room.ShowCards = false
	room.CanSelectWinner = false
}
