package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiptally/chiptally/internal/models"
)

// makeRoom builds a preflop room with n seated players holding balance chips.
func makeRoom(n, balance int) *models.Room {
	room := models.NewRoom("test", "TEST01")
	for i := 0; i < n; i++ {
		addPlayer(room, "p"+string(rune('1'+i)), balance)
	}
	return room
}

func TestApplyActionRejectedAfterRoundEnds(t *testing.T) {
	room := makeRoom(2, 100)
	room.Stage = models.StageShowdown
	room.Pot = 10

	_, err := applyAction(room, 0, ActionCall, 0)
	assert.ErrorIs(t, err, ErrRoundOver)
	assert.Equal(t, 100, room.Players[0].Balance, "rejection must not mutate")
	assert.Equal(t, 10, room.Pot)

	// The reveal window after an operator reset is closed too, whatever the
	// stage says.
	room = makeRoom(2, 100)
	room.ShowCards = true
	_, err = applyAction(room, 0, ActionFold, 0)
	assert.ErrorIs(t, err, ErrRoundOver)
	assert.False(t, room.Players[0].Folded)
}

func TestApplyActionTurnOwnership(t *testing.T) {
	room := makeRoom(3, 100)
	_, err := applyAction(room, 1, ActionFold, 0)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.False(t, room.Players[1].Folded, "rejection must not mutate")
	assert.Equal(t, 0, room.CurrentTurnIndex)
}

func TestApplyActionFold(t *testing.T) {
	room := makeRoom(3, 100)
	outcome, err := applyAction(room, 0, ActionFold, 0)
	require.NoError(t, err)
	assert.Equal(t, RoundOpen, outcome)
	assert.True(t, room.Players[0].Folded)
	assert.Equal(t, 0, room.Pot, "fold has no pot effect")
	assert.Equal(t, 1, room.CurrentTurnIndex)
}

func TestApplyActionCall(t *testing.T) {
	room := makeRoom(3, 100)
	room.MaxBet = 30
	room.Players[0].CurrentBet = 10

	outcome, err := applyAction(room, 0, ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, RoundOpen, outcome)
	assert.Equal(t, 80, room.Players[0].Balance)
	assert.Equal(t, 30, room.Players[0].CurrentBet)
	assert.Equal(t, 20, room.Pot)
}

func TestApplyActionCallClampsToAllIn(t *testing.T) {
	room := makeRoom(2, 100)
	room.MaxBet = 500

	outcome, err := applyAction(room, 0, ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, RoundOpen, outcome)
	assert.Equal(t, 0, room.Players[0].Balance, "call never drives the balance negative")
	assert.Equal(t, 100, room.Players[0].CurrentBet, "all-in may stay below maxBet")
	assert.Equal(t, 100, room.Pot)
	assert.Equal(t, 500, room.MaxBet)
}

func TestApplyActionRaise(t *testing.T) {
	room := makeRoom(3, 100)
	room.MaxBet = 10
	room.Players[0].CurrentBet = 10
	room.Pot = 10
	room.ActionMarkerIndex = 2

	outcome, err := applyAction(room, 0, ActionRaise, 40)
	require.NoError(t, err)
	assert.Equal(t, RoundOpen, outcome)
	assert.Equal(t, 70, room.Players[0].Balance)
	assert.Equal(t, 40, room.Players[0].CurrentBet)
	assert.Equal(t, 40, room.Pot)
	assert.Equal(t, 40, room.MaxBet)
	assert.Equal(t, 0, room.ActionMarkerIndex, "raiser becomes the action marker")
}

func TestApplyActionRaiseRejections(t *testing.T) {
	room := makeRoom(2, 100)
	room.MaxBet = 50

	_, err := applyAction(room, 0, ActionRaise, 50)
	assert.ErrorIs(t, err, ErrInvalidRaise, "raise must exceed maxBet")

	_, err = applyAction(room, 0, ActionRaise, 20)
	assert.ErrorIs(t, err, ErrInvalidRaise)

	_, err = applyAction(room, 0, ActionRaise, 150)
	assert.ErrorIs(t, err, ErrInsufficientFunds, "raise is all-or-nothing")

	assert.Equal(t, 100, room.Players[0].Balance, "rejections leave the room untouched")
	assert.Equal(t, 0, room.Pot)
	assert.Equal(t, 0, room.CurrentTurnIndex)
}

func TestCheckAroundClosesOnThirdCheck(t *testing.T) {
	room := makeRoom(3, 100)

	outcome, err := applyAction(room, 0, ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, RoundOpen, outcome)

	outcome, err = applyAction(room, 1, ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, RoundOpen, outcome)

	outcome, err = applyAction(room, 2, ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, RoundClosed, outcome, "round closes exactly when action returns to the marker")
}

func TestRaiseReopensBetting(t *testing.T) {
	room := makeRoom(3, 100)

	_, err := applyAction(room, 0, ActionRaise, 10)
	require.NoError(t, err)
	outcome, err := applyAction(room, 1, ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, RoundOpen, outcome)

	// P3 re-raises; action must come back around to them.
	outcome, err = applyAction(room, 2, ActionRaise, 30)
	require.NoError(t, err)
	assert.Equal(t, RoundOpen, outcome)
	assert.Equal(t, 2, room.ActionMarkerIndex)

	outcome, err = applyAction(room, 0, ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, RoundOpen, outcome)

	outcome, err = applyAction(room, 1, ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, RoundClosed, outcome)
}

func TestFoldsCollapseRound(t *testing.T) {
	room := makeRoom(3, 100)

	outcome, err := applyAction(room, 0, ActionFold, 0)
	require.NoError(t, err)
	assert.Equal(t, RoundOpen, outcome)

	outcome, err = applyAction(room, 1, ActionFold, 0)
	require.NoError(t, err)
	assert.Equal(t, RoundCollapsed, outcome)
}

func TestPotMatchesCommittedBets(t *testing.T) {
	room := makeRoom(3, 200)
	contributed := func() int {
		total := 0
		for _, p := range room.Players {
			total += 200 - p.Balance
		}
		return total
	}

	steps := []struct {
		idx    int
		action Action
		amount int
	}{
		{0, ActionRaise, 20},
		{1, ActionCall, 0},
		{2, ActionRaise, 60},
		{0, ActionCall, 0},
		{1, ActionFold, 0},
	}
	for _, s := range steps {
		_, err := applyAction(room, s.idx, s.action, s.amount)
		require.NoError(t, err)
		assert.Equal(t, contributed(), room.Pot, "pot always equals the sum of committed bets")
	}
}
