package table

import (
	"github.com/google/uuid"

	"github.com/chiptally/chiptally/internal/models"
)

// EventType is the wire discriminator for outbound websocket events.
type EventType string

const (
	EventRoomUpdate     EventType = "room:update"
	EventPlayerAssigned EventType = "player:assigned"
	EventRoundEnded     EventType = "round:ended"
	EventPong           EventType = "pong"

	EventErrRoomNotFound      EventType = "error:room_not_found"
	EventErrServer            EventType = "error:server"
	EventErrNotYourTurn       EventType = "error:not_your_turn"
	EventErrInvalidRaise      EventType = "error:invalid_raise"
	EventErrInsufficientFunds EventType = "error:insufficient_funds"
	EventErrNotAuthorized     EventType = "error:not_authorized"
	EventErrInvalidAward      EventType = "error:invalid_award"
	EventErrRoundOver         EventType = "error:round_over"
)

// Event is a single outbound message. Room updates carry the full room
// snapshot; round:ended names the winner and amount; error events carry a
// human-readable message and go only to the requester.
type Event struct {
	Type      EventType      `json:"type"`
	Room      *models.Room   `json:"room,omitempty"`
	Player    *models.Player `json:"player,omitempty"`
	WinnerID  *uuid.UUID     `json:"winnerId,omitempty"`
	AmountWon int            `json:"amountWon,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// Broadcaster fans an event out to every connection currently joined to a
// room code. Delivery is fire-and-forget, at most once per connection.
type Broadcaster interface {
	BroadcastToRoom(code string, ev Event)
}
