package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/redchat-app/redchat/internal/core"
	"github.com/redchat-app/redchat/internal/domain"
	"github.com/redchat-app/redchat/internal/protocol"
)

// decode unmarshals and validates one inbound payload. Validation here is
// a transport-level sanity gate; the domain enforces its own bounds again.
func (ctl *Controller) decode(c *ChatConn, data []byte, payload any) bool {
	if err := json.Unmarshal(data, payload); err != nil {
		ctl.sendError(c, "malformed event payload")
		return false
	}
	if err := ctl.validate.Struct(payload); err != nil {
		ctl.sendError(c, "missing or invalid event fields")
		return false
	}
	return true
}

// report maps a failed operation onto an "error" event for the sender.
// Domain errors carry human-readable messages by construction.
func (ctl *Controller) report(sid core.SessionID, c *ChatConn, op string, err error) {
	if err == nil {
		return
	}
	evt := log.Warn()
	if !isDomainErr(err) {
		evt = log.Error()
	}
	evt.Err(err).Str("module", "signal").Str("sid", string(sid)).Str("op", op).Msg("operation failed")
	ctl.sendError(c, err.Error())
}

func isDomainErr(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrDuplicateRequest) ||
		errors.Is(err, domain.ErrRoomClosed)
}

func (ctl *Controller) handleCreateRoom(sid core.SessionID, c *ChatConn, data []byte) {
	var p protocol.CreateRoomPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	ctl.report(sid, c, "createRoom", ctl.Orch.CreateRoom(sid, c, p.Username, p.RoomName))
}

func (ctl *Controller) handleJoinRoom(sid core.SessionID, c *ChatConn, data []byte) {
	var p protocol.JoinRoomPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	ctl.report(sid, c, "joinRoom", ctl.Orch.Join(sid, c, p.Username, p.RoomID))
}

func (ctl *Controller) handleApprove(sid core.SessionID, c *ChatConn, data []byte) {
	var p protocol.TargetUserPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	ctl.report(sid, c, "approveUser", ctl.Orch.Approve(sid, p.UserID))
}

func (ctl *Controller) handleReject(sid core.SessionID, c *ChatConn, data []byte) {
	var p protocol.TargetUserPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	ctl.report(sid, c, "rejectUser", ctl.Orch.Reject(sid, p.UserID))
}

func (ctl *Controller) handleKick(sid core.SessionID, c *ChatConn, data []byte) {
	var p protocol.TargetUserPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	ctl.report(sid, c, "kickUser", ctl.Orch.Kick(sid, p.UserID))
}

func (ctl *Controller) handleSendMessage(sid core.SessionID, c *ChatConn, data []byte) {
	var p protocol.SendMessagePayload
	if !ctl.decode(c, data, &p) {
		return
	}
	ctl.report(sid, c, "sendMessage", ctl.Orch.Send(sid, p.Message))
}

func (ctl *Controller) handleLeave(sid core.SessionID, c *ChatConn) {
	ctl.report(sid, c, "leaveRoom", ctl.Orch.Leave(sid))
}
