package table

import (
	"github.com/chiptally/chiptally/internal/models"
)

// nextTurnIndex returns the seat that acts after fromIndex, advancing one
// seat at a time and skipping folded or inactive players. At most len(players)
// probes are made, so when every seat is ineligible the immediate successor
// is returned rather than looping forever. An empty seat list returns 0;
// callers must not act on an empty room.
func nextTurnIndex(players []*models.Player, fromIndex int) int {
	if len(players) == 0 {
		return 0
	}
	next := (fromIndex + 1) % len(players)
	for probes := 0; probes < len(players) && !players[next].Active(); probes++ {
		next = (next + 1) % len(players)
	}
	return next
}
