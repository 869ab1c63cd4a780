package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/redchat-app/redchat/internal/app"
	"github.com/redchat-app/redchat/internal/archive"
	"github.com/redchat-app/redchat/internal/core"
)

// archiveHandler serves the room transcript as a text attachment. Only the
// room's administrator, identified through their session binding, may
// export it.
func archiveHandler(orch *app.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := core.SessionID(c.GetString("client_token"))

		room, ok := orch.Rooms.Lookup(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		binding, ok := orch.Sessions.Get(sid)
		if !ok || binding.RoomID != room.Meta().ID || !room.IsAdmin(binding.User.ID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the administrator can export the archive"})
			return
		}

		now := time.Now()
		body := archive.Render(room.Meta(), room.Messages(), now)
		c.Header("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", archive.Filename(room.Meta().ID, now)))
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
	}
}
