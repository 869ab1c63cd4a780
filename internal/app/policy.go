package app

import "github.com/redchat-app/redchat/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	RemoveMember
)

// Policy decides what happens to a member whose send buffer overflowed.
type Policy interface {
	OnBackpressure(room domain.RoomID, user domain.UserID) BackpressureAction
}

// StrictPolicy removes slow members. A member who missed a frame would
// otherwise keep a gapped view of the log, so eviction keeps the ordering
// contract honest for everyone who stays.
type StrictPolicy struct{}

func (StrictPolicy) OnBackpressure(domain.RoomID, domain.UserID) BackpressureAction {
	return RemoveMember
}
