package domain

import "time"

// Member represents a user's admitted participation in a room.
type Member struct {
	User     *User
	JoinedAt time.Time
}

// JoinRequest is a pending admission decision awaiting approve/reject.
type JoinRequest struct {
	User        *User
	RequestedAt time.Time
}

// NewMember avoids raw literals in the core and keeps construction obvious.
func NewMember(user *User) *Member {
	return &Member{User: user, JoinedAt: time.Now()}
}

func NewJoinRequest(user *User) *JoinRequest {
	return &JoinRequest{User: user, RequestedAt: time.Now()}
}
