package table

import (
	"strings"

	"github.com/google/uuid"

	"github.com/chiptally/chiptally/internal/models"
)

// Community card targets per stage. The tokens are opaque placeholders; no
// real cards are dealt or evaluated anywhere in this service.
var communityTarget = map[models.Stage]int{
	models.StageFlop:  3,
	models.StageTurn:  4,
	models.StageRiver: 5,
}

// advanceStage moves the room to the next betting stage after a normal round
// closure. Per-stage transients (bets, max bet) are cleared and the seat
// immediately after the previous stage's marker opens the new stage. Showdown
// is terminal here; progressing past it requires an explicit award.
func advanceStage(room *models.Room) {
	switch room.Stage {
	case models.StagePreflop:
		room.Stage = models.StageFlop
	case models.StageFlop:
		room.Stage = models.StageTurn
	case models.StageTurn:
		room.Stage = models.StageRiver
	case models.StageRiver:
		room.Stage = models.StageShowdown
		room.ShowCards = true
		room.CanSelectWinner = true
	default:
		return
	}

	if target, ok := communityTarget[room.Stage]; ok {
		for len(room.CommunityCards) < target {
			room.CommunityCards = append(room.CommunityCards, newCardToken())
		}
	}

	for _, p := range room.Players {
		p.CurrentBet = 0
	}
	room.MaxBet = 0

	opener := nextTurnIndex(room.Players, room.ActionMarkerIndex)
	room.CurrentTurnIndex = opener
	room.ActionMarkerIndex = opener
}

// newCardToken mints an opaque community-card placeholder.
func newCardToken() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
