package table

import "errors"

// Sentinel errors for everything a client request can be rejected with. The
// websocket layer maps each of these to a typed error event delivered only to
// the requesting connection; anything unrecognized degrades to a generic
// server error.
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrNotAuthorized     = errors.New("connection is not bound to a player in this room")
	ErrNotYourTurn       = errors.New("it is not your turn")
	ErrInvalidRaise      = errors.New("raise must be higher than the current max bet")
	ErrInsufficientFunds = errors.New("not enough balance to raise")
	ErrInvalidAward      = errors.New("winner selection does not match any seated players")
	ErrRoundOver         = errors.New("betting is closed until the next round starts")

	// ErrCodeTaken is returned by the store when a generated join code
	// collides with an existing room; CreateRoom retries with a fresh code.
	ErrCodeTaken = errors.New("room code already in use")

	// ErrVersionConflict is returned by the store when a save loses a
	// concurrent-update race. Room state is left untouched.
	ErrVersionConflict = errors.New("room was modified concurrently")
)
