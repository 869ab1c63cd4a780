// Package http wires the gin router: session middleware that mints one
// client token per browser, the chat WebSocket endpoint and the archive
// download.
package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/redchat-app/redchat/internal/adapters/signal"
	"github.com/redchat-app/redchat/internal/app"
	"github.com/redchat-app/redchat/internal/config"
)

// ClientTokenMiddleware assigns every client a stable opaque token, stored
// in its cookie session. The token doubles as the session id the binding
// registry is keyed by.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get("ct").(string)
		if token == "" {
			token = uuid.NewString()
			sess.Set("ct", token)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.Controller, orch *app.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("RedChatSessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"open_rooms": orch.Rooms.Count(),
		})
	})

	api := r.Group("/api")
	api.GET("/ws", func(c *gin.Context) {
		ctl.HandleChat(ctx, c)
	})
	api.GET("/rooms/:id/archive", archiveHandler(orch))

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
