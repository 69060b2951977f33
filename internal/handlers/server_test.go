package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chiptally/chiptally/internal/table"
)

func TestErrorEventMapping(t *testing.T) {
	tests := []struct {
		err  error
		want table.EventType
	}{
		{table.ErrRoomNotFound, table.EventErrRoomNotFound},
		{table.ErrNotAuthorized, table.EventErrNotAuthorized},
		{table.ErrNotYourTurn, table.EventErrNotYourTurn},
		{table.ErrInvalidRaise, table.EventErrInvalidRaise},
		{table.ErrInsufficientFunds, table.EventErrInsufficientFunds},
		{table.ErrInvalidAward, table.EventErrInvalidAward},
		{table.ErrRoundOver, table.EventErrRoundOver},
		{table.ErrVersionConflict, table.EventErrServer},
		{errors.New("boom"), table.EventErrServer},
		{fmt.Errorf("wrapped: %w", table.ErrNotYourTurn), table.EventErrNotYourTurn},
	}
	for _, tt := range tests {
		ev := errorEvent(tt.err)
		assert.Equal(t, tt.want, ev.Type)
		assert.NotEmpty(t, ev.Message, "every error event carries a human-readable message")
	}
}
