package table

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiptally/chiptally/internal/models"
)

func TestCollapseRoundPaysLastActivePlayer(t *testing.T) {
	room := makeRoom(3, 100)
	room.Pot = 45
	room.Players[0].Folded = true
	room.Players[2].Inactive = true

	result := collapseRound(room)
	require.NotNil(t, result)
	assert.Equal(t, room.Players[1].ID, result.WinnerID)
	assert.Equal(t, 45, result.Amount)
	assert.Equal(t, 145, room.Players[1].Balance)
	assert.Equal(t, models.StageShowdown, room.Stage)
	assert.True(t, room.ShowCards)
	assert.False(t, room.CanSelectWinner)
	assert.Equal(t, 45, room.Pot, "pot is cleared by the reset, not the award")
}

func TestCollapseRoundNoActivePlayers(t *testing.T) {
	room := makeRoom(2, 100)
	room.Players[0].Folded = true
	room.Players[1].Inactive = true
	assert.Nil(t, collapseRound(room))
}

func TestAwardPotSplit(t *testing.T) {
	room := makeRoom(3, 0)
	room.Pot = 100
	room.Stage = models.StageShowdown
	room.CanSelectWinner = true

	winners := []uuid.UUID{room.Players[0].ID, room.Players[1].ID, room.Players[2].ID}
	require.NoError(t, awardPot(room, winners))

	assert.Equal(t, 34, room.Players[0].Balance, "remainder goes to the first winner")
	assert.Equal(t, 33, room.Players[1].Balance)
	assert.Equal(t, 33, room.Players[2].Balance)
	assert.Equal(t, 0, room.Pot)
	assert.False(t, room.CanSelectWinner)
	assert.True(t, room.ShowCards)
}

func TestAwardPotRemainderGoesToFirstResolvedWinner(t *testing.T) {
	room := makeRoom(2, 0)
	room.Pot = 101
	room.CanSelectWinner = true

	// The first id doesn't resolve; the remainder follows the first seated
	// winner in the given order.
	winners := []uuid.UUID{uuid.New(), room.Players[1].ID, room.Players[0].ID}
	require.NoError(t, awardPot(room, winners))

	assert.Equal(t, 51, room.Players[1].Balance)
	assert.Equal(t, 50, room.Players[0].Balance)
}

func TestAwardPotRejections(t *testing.T) {
	room := makeRoom(2, 100)
	room.Pot = 60
	room.CanSelectWinner = true

	err := awardPot(room, nil)
	assert.ErrorIs(t, err, ErrInvalidAward, "empty winner set")

	err = awardPot(room, []uuid.UUID{uuid.New(), uuid.New()})
	assert.ErrorIs(t, err, ErrInvalidAward, "no winner resolves to a seat")

	room.CanSelectWinner = false
	err = awardPot(room, []uuid.UUID{room.Players[0].ID})
	assert.ErrorIs(t, err, ErrInvalidAward, "selection closed")

	assert.Equal(t, 60, room.Pot, "rejections leave the pot untouched")
	assert.Equal(t, 100, room.Players[0].Balance)
}

func TestResetRoundClearsRoundStateOnly(t *testing.T) {
	room := makeRoom(3, 100)
	room.Pot = 80
	room.MaxBet = 40
	room.Stage = models.StageShowdown
	room.CommunityCards = []string{"A1B2C3D4", "E5F6A7B8", "C9D0E1F2", "A3B4C5D6", "E7F8A9B0"}
	room.ShowCards = true
	room.CanSelectWinner = true
	room.CurrentTurnIndex = 2
	room.ActionMarkerIndex = 1
	room.Players[0].Folded = true
	room.Players[0].CurrentBet = 40
	room.Players[1].Inactive = true
	room.Players[2].Balance = 260

	resetRound(room)

	assert.Equal(t, 0, room.Pot)
	assert.Equal(t, 0, room.MaxBet)
	assert.Equal(t, models.StagePreflop, room.Stage)
	assert.Empty(t, room.CommunityCards)
	assert.False(t, room.ShowCards)
	assert.False(t, room.CanSelectWinner)
	assert.Equal(t, 0, room.CurrentTurnIndex)
	assert.Equal(t, 0, room.ActionMarkerIndex)
	assert.False(t, room.Players[0].Folded)
	assert.Equal(t, 0, room.Players[0].CurrentBet)
	assert.True(t, room.Players[1].Inactive, "inactive persists until explicit rejoin")
	assert.Equal(t, 260, room.Players[2].Balance, "balances persist")
}
