// Package signal is the WebSocket adapter: it upgrades connections, pumps
// frames in both directions and translates wire events into orchestrator
// calls. It owns every transport resource; the core only ever sees the
// SignalConnection interface.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/redchat-app/redchat/internal/app"
	"github.com/redchat-app/redchat/internal/config"
	"github.com/redchat-app/redchat/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller handles the chat WebSocket endpoint.
type Controller struct {
	Orch     *app.Orchestrator
	cfg      *config.Config
	validate *validator.Validate
}

func NewController(orch *app.Orchestrator, cfg *config.Config) *Controller {
	return &Controller{
		Orch:     orch,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// ChatConn is a transport endpoint. It implements core.SignalConnection.
type ChatConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newChatConn(ws *websocket.Conn, buffer int) *ChatConn {
	return &ChatConn{conn: ws, send: make(chan core.Frame, buffer)}
}

// TrySend enqueues one frame without blocking. A full buffer is reported
// so the backpressure policy can deal with the slow peer.
func (c *ChatConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *ChatConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleChat upgrades the request and runs the pumps until the peer goes
// away, at which point the disconnect is handled as an implicit leave.
func (ctl *Controller) HandleChat(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new chat connection")

	conn := newChatConn(ws, ctl.cfg.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sid, conn)
		ctl.Orch.Disconnect(sid)
		conn.Close()
	}()
}
