package domain

import (
	"fmt"
	"strings"
	"time"
)

const MaxRoomNameLen = 30

type (
	RoomID   string
	RoomName string
)

// Room is the immutable meta of one chat room. Membership and the message
// log live behind the room's serialization point in core, not here.
type Room struct {
	ID        RoomID
	Name      RoomName
	AdminID   UserID
	CreatedAt time.Time
}

// NewRoomName validates a creator-supplied display label.
func NewRoomName(raw string) (RoomName, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: room name is required", ErrValidation)
	}
	if len([]rune(raw)) > MaxRoomNameLen {
		return "", fmt.Errorf("%w: room name exceeds %d characters", ErrValidation, MaxRoomNameLen)
	}
	return RoomName(raw), nil
}
