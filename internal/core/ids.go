package core

import (
	"crypto/rand"
	"strings"

	"github.com/redchat-app/redchat/internal/domain"
)

// Room ids must survive being read aloud or typed from a screenshot, so the
// alphabet drops lookalikes (0/o, 1/l/i) and sticks to lower case.
const roomIDAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

const DefaultRoomIDLength = 6

// NewRoomID returns a fresh random room id of n characters. Uniqueness
// among open rooms is the registry's job, not the generator's.
func NewRoomID(n int) domain.RoomID {
	if n <= 0 {
		n = DefaultRoomIDLength
	}
	buf := make([]byte, n)
	// rand.Read never fails on supported platforms since go 1.24.
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = roomIDAlphabet[int(b)%len(roomIDAlphabet)]
	}
	return domain.RoomID(buf)
}

// NormalizeRoomID maps user-typed room ids onto their canonical form.
// Room identifiers are case-insensitive.
func NormalizeRoomID(raw string) domain.RoomID {
	return domain.RoomID(strings.ToLower(strings.TrimSpace(raw)))
}
