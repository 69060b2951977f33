package table

import (
	"crypto/rand"
)

// Join-code alphabet: uppercase alphanumerics minus the lookalikes (0/O, 1/I)
// since codes are read aloud at a physical table.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

// newRoomCode generates a short random join code. Uniqueness is enforced by
// the store; CreateRoom retries on a collision.
func newRoomCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("table: crypto/rand unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
