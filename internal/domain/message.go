package domain

import (
	"fmt"
	"strings"
	"time"
)

const MaxMessageLen = 500

type MessageID int64

// Message is one entry of a room's append-only log. Username is a snapshot
// taken at send time. The text marshals as "message" for client
// compatibility.
type Message struct {
	ID        MessageID `json:"id"`
	UserID    UserID    `json:"userId"`
	Username  string    `json:"username"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessageText trims and bounds-checks a raw message body.
func NewMessageText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("%w: message is empty", ErrValidation)
	}
	if len([]rune(text)) > MaxMessageLen {
		return "", fmt.Errorf("%w: message exceeds %d characters", ErrValidation, MaxMessageLen)
	}
	return text, nil
}
