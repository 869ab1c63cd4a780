package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/redchat-app/redchat/internal/core"
	"github.com/redchat-app/redchat/internal/protocol"
)

// writePump drains the send channel to the network, pinging on the
// configured period so dead peers are detected by the read side.
func (ctl *Controller) writePump(ctx context.Context, c *ChatConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump reads inbound frames and dispatches them until the connection
// drops or the context is canceled.
func (ctl *Controller) readPump(ctx context.Context, sid core.SessionID, c *ChatConn) {
	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	readWait := ctl.cfg.PingPeriod + ctl.cfg.WriteTimeout
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump exit")
				return
			}
			ctl.handleFrame(sid, c, data)
		}
	}
}

// handleFrame routes one inbound frame by its envelope type. Any failure
// comes back to the sender as an "error" event; nothing here can take the
// process down.
func (ctl *Controller) handleFrame(sid core.SessionID, c *ChatConn, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json frame")
		ctl.sendError(c, "malformed event")
		return
	}

	switch env.Type {
	case protocol.EventCreateRoom:
		ctl.handleCreateRoom(sid, c, data)
	case protocol.EventJoinRoom:
		ctl.handleJoinRoom(sid, c, data)
	case protocol.EventApproveUser:
		ctl.handleApprove(sid, c, data)
	case protocol.EventRejectUser:
		ctl.handleReject(sid, c, data)
	case protocol.EventKickUser:
		ctl.handleKick(sid, c, data)
	case protocol.EventSendMessage:
		ctl.handleSendMessage(sid, c, data)
	case protocol.EventLeaveRoom:
		ctl.handleLeave(sid, c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
		ctl.sendError(c, "unknown event type")
	}
}

func (ctl *Controller) sendError(c *ChatConn, message string) {
	_ = c.TrySend(protocol.Error(message))
}
