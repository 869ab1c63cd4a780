package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/redchat-app/redchat/internal/core"
	"github.com/redchat-app/redchat/internal/domain"
)

// Orchestrator routes inbound events to the owning room's serialization
// point and keeps the session bindings and the room registry consistent
// with the results. It holds no room state of its own.
type Orchestrator struct {
	Rooms    *core.Registry
	Sessions *SessionRegistry
	Policy   Policy
}

func NewOrchestrator(rooms *core.Registry, sessions *SessionRegistry, policy Policy) *Orchestrator {
	return &Orchestrator{Rooms: rooms, Sessions: sessions, Policy: policy}
}

// CreateRoom makes the caller administrator and sole member of a new room.
func (o *Orchestrator) CreateRoom(sid core.SessionID, conn core.SignalConnection, username, roomName string) error {
	if _, bound := o.Sessions.Get(sid); bound {
		return fmt.Errorf("%w: leave your current room first", domain.ErrDuplicateRequest)
	}
	user, err := domain.NewUser(username)
	if err != nil {
		return err
	}
	name, err := domain.NewRoomName(roomName)
	if err != nil {
		return err
	}
	room, err := o.Rooms.Create(name, user, conn)
	if err != nil {
		return err
	}
	o.Sessions.Bind(sid, &Binding{RoomID: room.Meta().ID, User: user, Conn: conn})
	return nil
}

// Join files a join request; the caller is bound to the room immediately so
// a dropped connection can withdraw the request.
func (o *Orchestrator) Join(sid core.SessionID, conn core.SignalConnection, username, roomID string) error {
	if _, bound := o.Sessions.Get(sid); bound {
		return fmt.Errorf("%w: leave your current room first", domain.ErrDuplicateRequest)
	}
	user, err := domain.NewUser(username)
	if err != nil {
		return err
	}
	room, ok := o.Rooms.Lookup(roomID)
	if !ok {
		return fmt.Errorf("%w: no room with that id", domain.ErrNotFound)
	}
	res, err := room.RequestJoin(user, conn)
	if err != nil {
		return err
	}
	o.Sessions.Bind(sid, &Binding{RoomID: room.Meta().ID, User: user, Conn: conn})
	o.apply(room, res)
	return nil
}

// Approve admits a pending requester. The acting user is whoever the
// calling connection is bound to; the room enforces that it is the admin.
func (o *Orchestrator) Approve(sid core.SessionID, target string) error {
	b, room, err := o.resolve(sid)
	if err != nil {
		return err
	}
	res, err := room.Approve(b.User.ID, domain.UserID(target))
	if err != nil {
		return err
	}
	o.apply(room, res)
	return nil
}

// Reject declines a pending requester.
func (o *Orchestrator) Reject(sid core.SessionID, target string) error {
	b, room, err := o.resolve(sid)
	if err != nil {
		return err
	}
	res, err := room.Reject(b.User.ID, domain.UserID(target))
	if err != nil {
		return err
	}
	o.apply(room, res)
	return nil
}

// Kick removes a current member.
func (o *Orchestrator) Kick(sid core.SessionID, target string) error {
	b, room, err := o.resolve(sid)
	if err != nil {
		return err
	}
	res, err := room.Kick(b.User.ID, domain.UserID(target))
	if err != nil {
		return err
	}
	o.apply(room, res)
	return nil
}

// Send broadcasts a message from the bound user.
func (o *Orchestrator) Send(sid core.SessionID, text string) error {
	b, room, err := o.resolve(sid)
	if err != nil {
		return err
	}
	res, err := room.Send(b.User.ID, text)
	if err != nil {
		return err
	}
	o.apply(room, res)
	return nil
}

// Leave removes the bound user from their room; administrator departure
// closes the room for everyone.
func (o *Orchestrator) Leave(sid core.SessionID) error {
	b, room, err := o.resolve(sid)
	if err != nil {
		return err
	}
	res, err := room.Leave(b.User.ID)
	if err != nil {
		return err
	}
	o.Sessions.Unbind(sid)
	o.apply(room, res)
	return nil
}

// Disconnect handles an abruptly closed connection: members leave
// implicitly, pending requesters are withdrawn silently. Never an error.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	b, ok := o.Sessions.Get(sid)
	if !ok {
		return
	}
	o.Sessions.Unbind(sid)
	room, ok := o.Rooms.Lookup(string(b.RoomID))
	if !ok {
		return
	}
	log.Info().Str("module", "app.orchestrator").
		Str("sid", string(sid)).Str("room", string(b.RoomID)).
		Msg("connection dropped, implicit leave")
	o.apply(room, room.Disconnect(b.User.ID))
}

// resolve maps a session to its binding and room. A stale or absent
// binding is Forbidden: whatever the caller thought they were part of, they
// no longer are.
func (o *Orchestrator) resolve(sid core.SessionID) (*Binding, *core.Room, error) {
	b, ok := o.Sessions.Get(sid)
	if !ok {
		return nil, nil, fmt.Errorf("%w: you are not in a room", domain.ErrForbidden)
	}
	room, ok := o.Rooms.Lookup(string(b.RoomID))
	if !ok {
		o.Sessions.Unbind(sid)
		return nil, nil, fmt.Errorf("%w: this room is no longer open", domain.ErrRoomClosed)
	}
	return b, room, nil
}

// apply settles the side effects of one room operation: evicted users lose
// their bindings, a closed room leaves the registry, and slow members are
// handed to the backpressure policy.
func (o *Orchestrator) apply(room *core.Room, res core.OpResult) {
	if len(res.Removed) > 0 {
		o.Sessions.UnbindUsers(room.Meta().ID, res.Removed...)
	}
	if res.Closed {
		o.Rooms.Destroy(room.Meta().ID)
		return
	}
	if o.Policy == nil {
		return
	}
	for _, uid := range res.Dropped {
		if o.Policy.OnBackpressure(room.Meta().ID, uid) != RemoveMember {
			continue
		}
		log.Warn().Str("module", "app.orchestrator").
			Str("room", string(room.Meta().ID)).Str("user", string(uid)).
			Msg("removing slow member")
		more := room.Disconnect(uid)
		o.apply(room, more)
	}
}
