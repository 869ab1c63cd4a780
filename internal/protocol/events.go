package protocol

import (
	"encoding/json"

	"github.com/redchat-app/redchat/internal/domain"
)

type sessionEvent struct {
	Type      string        `json:"type"`
	RoomID    domain.RoomID `json:"roomId"`
	UserID    domain.UserID `json:"userId"`
	Username  string        `json:"username"`
	IsCreator bool          `json:"isCreator"`
}

type noticeEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type presenceEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// marshal cannot fail for the fixed event shapes below.
func marshal(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

func RoomCreated(roomID domain.RoomID, u *domain.User) []byte {
	return marshal(sessionEvent{Type: EventRoomCreated, RoomID: roomID, UserID: u.ID, Username: u.Username, IsCreator: true})
}

func WaitingForApproval(roomID domain.RoomID, u *domain.User) []byte {
	return marshal(sessionEvent{Type: EventWaitingForApproval, RoomID: roomID, UserID: u.ID, Username: u.Username})
}

func JoinApproved(roomID domain.RoomID, u *domain.User) []byte {
	return marshal(sessionEvent{Type: EventJoinApproved, RoomID: roomID, UserID: u.ID, Username: u.Username})
}

func JoinRequest(u *domain.User) []byte {
	return marshal(struct {
		Type     string        `json:"type"`
		UserID   domain.UserID `json:"userId"`
		Username string        `json:"username"`
	}{EventJoinRequest, u.ID, u.Username})
}

func JoinRejected(message string) []byte {
	return marshal(noticeEvent{Type: EventJoinRejected, Message: message})
}

func Kicked(message string) []byte {
	return marshal(noticeEvent{Type: EventKicked, Message: message})
}

func RoomClosed(message string) []byte {
	return marshal(noticeEvent{Type: EventRoomClosed, Message: message})
}

func Error(message string) []byte {
	return marshal(noticeEvent{Type: EventError, Message: message})
}

func NewMessage(m domain.Message) []byte {
	return marshal(struct {
		Type string `json:"type"`
		domain.Message
	}{EventNewMessage, m})
}

func MessageHistory(ms []domain.Message) []byte {
	if ms == nil {
		ms = []domain.Message{}
	}
	return marshal(struct {
		Type     string           `json:"type"`
		Messages []domain.Message `json:"messages"`
	}{EventMessageHistory, ms})
}

func UserList(users []*domain.User) []byte {
	if users == nil {
		users = []*domain.User{}
	}
	return marshal(struct {
		Type  string         `json:"type"`
		Users []*domain.User `json:"users"`
	}{EventUserList, users})
}

func UserJoined(username string) []byte {
	return marshal(presenceEvent{Type: EventUserJoined, Username: username})
}

func UserLeft(username string) []byte {
	return marshal(presenceEvent{Type: EventUserLeft, Username: username})
}
