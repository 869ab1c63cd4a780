// Package archive renders a room's message log as a plain-text transcript.
// It is a pure formatting layer: it works on snapshots and never touches
// live room state.
package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/redchat-app/redchat/internal/domain"
)

// timeLayout mirrors the locale format chat clients show for timestamps.
const timeLayout = "1/2/2006, 3:04:05 PM"

// Render produces the transcript: a header block naming the room, the
// generation time and the message count, then one line per message.
func Render(room *domain.Room, messages []domain.Message, generatedAt time.Time) string {
	label := string(room.Name)
	if label == "" {
		label = string(room.ID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "RedChat Archive - Room: %s\n", label)
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.Format(timeLayout))
	fmt.Fprintf(&b, "Total Messages: %d\n", len(messages))
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	for i, msg := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] %s: %s", msg.Timestamp.Format(timeLayout), msg.Username, msg.Text)
	}
	return b.String()
}

// Filename names the downloaded transcript after the room and the moment
// of export.
func Filename(roomID domain.RoomID, at time.Time) string {
	return fmt.Sprintf("redchat-%s-%d.txt", roomID, at.UnixMilli())
}
