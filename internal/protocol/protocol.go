// Package protocol defines the wire events exchanged with clients.
//
// Every frame is a flat JSON object tagged by a "type" field. Inbound
// payloads carry validator tags and are checked by the adapter before they
// reach the core.
package protocol

// Inbound event types.
const (
	EventCreateRoom  = "createRoom"
	EventJoinRoom    = "joinRoom"
	EventApproveUser = "approveUser"
	EventRejectUser  = "rejectUser"
	EventKickUser    = "kickUser"
	EventSendMessage = "sendMessage"
	EventLeaveRoom   = "leaveRoom"
)

// Outbound event types.
const (
	EventRoomCreated        = "roomCreated"
	EventWaitingForApproval = "waitingForApproval"
	EventJoinApproved       = "joinApproved"
	EventJoinRejected       = "joinRejected"
	EventJoinRequest        = "joinRequest"
	EventKicked             = "kicked"
	EventRoomClosed         = "roomClosed"
	EventNewMessage         = "newMessage"
	EventMessageHistory     = "messageHistory"
	EventUserList           = "userList"
	EventUserJoined         = "userJoined"
	EventUserLeft           = "userLeft"
	EventError              = "error"
)

// Envelope is the minimal view used to route an inbound frame.
type Envelope struct {
	Type string `json:"type"`
}

type CreateRoomPayload struct {
	Username string `json:"username" validate:"required,max=20"`
	RoomName string `json:"roomName" validate:"required,max=30"`
}

type JoinRoomPayload struct {
	Username string `json:"username" validate:"required,max=20"`
	RoomID   string `json:"roomId" validate:"required"`
}

// TargetUserPayload covers approveUser, rejectUser and kickUser.
type TargetUserPayload struct {
	UserID string `json:"userId" validate:"required"`
}

type SendMessagePayload struct {
	Message string `json:"message" validate:"required,max=500"`
}
