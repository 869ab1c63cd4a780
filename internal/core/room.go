package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/redchat-app/redchat/internal/domain"
	"github.com/redchat-app/redchat/internal/protocol"
)

// Notices sent alongside terminal membership events.
const (
	kickedNotice   = "You have been removed from the room"
	rejectedNotice = "Your request to join was declined by the administrator"
	closedNotice   = "The room has been closed by the administrator"
)

type memberEntry struct {
	member *domain.Member
	conn   SignalConnection
}

type pendingEntry struct {
	req  *domain.JoinRequest
	conn SignalConnection
}

// Room is the authoritative state machine for one chat room.
//
// A single mutex is the room's serialization point: every operation runs
// start-to-finish under it, and outbound frames are enqueued to member
// connections inside the critical section. Because TrySend never blocks,
// holding the lock across fan-out is safe, and it is what guarantees that
// any one member observes messages in exactly the log order.
type Room struct {
	mu     sync.Mutex
	meta   *domain.Room
	closed bool

	members map[domain.UserID]*memberEntry
	order   []domain.UserID // join order, for userList
	pending map[domain.UserID]*pendingEntry

	messages []domain.Message
	nextSeq  domain.MessageID
}

// NewRoom builds an Open room with the creator as administrator and sole
// member, and acks the creator with roomCreated and the initial roster.
func NewRoom(meta *domain.Room, creator *domain.User, conn SignalConnection) *Room {
	r := &Room{
		meta:    meta,
		members: make(map[domain.UserID]*memberEntry),
		pending: make(map[domain.UserID]*pendingEntry),
		nextSeq: 1,
	}
	r.members[creator.ID] = &memberEntry{member: domain.NewMember(creator), conn: conn}
	r.order = append(r.order, creator.ID)

	_ = conn.TrySend(protocol.RoomCreated(meta.ID, creator))
	_ = conn.TrySend(protocol.UserList([]*domain.User{creator}))

	log.Info().Str("module", "core.room").
		Str("room", string(meta.ID)).Str("admin", string(meta.AdminID)).
		Msg("room created")
	return r
}

func (r *Room) Meta() *domain.Room { return r.meta }

func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Room) IsAdmin(user domain.UserID) bool {
	return user == r.meta.AdminID
}

// Users returns the current roster in join order.
func (r *Room) Users() []*domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usersLocked()
}

// Messages returns a copy of the log, for the archive export.
func (r *Room) Messages() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// RequestJoin places a prospective member into the pending set, acks the
// requester and notifies the administrator. Nobody else learns about the
// request until a decision is made.
func (r *Room) RequestJoin(user *domain.User, conn SignalConnection) (OpResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res OpResult
	if r.closed {
		return res, fmt.Errorf("%w: this room is no longer open", domain.ErrRoomClosed)
	}
	if _, ok := r.members[user.ID]; ok {
		return res, fmt.Errorf("%w: already a member of this room", domain.ErrDuplicateRequest)
	}
	if _, ok := r.pending[user.ID]; ok {
		return res, fmt.Errorf("%w: a join request is already pending", domain.ErrDuplicateRequest)
	}

	r.pending[user.ID] = &pendingEntry{req: domain.NewJoinRequest(user), conn: conn}

	if err := conn.TrySend(protocol.WaitingForApproval(r.meta.ID, user)); err != nil {
		res.Dropped = append(res.Dropped, user.ID)
	}
	r.sendToMember(&res, r.meta.AdminID, protocol.JoinRequest(user))

	log.Info().Str("module", "core.room").
		Str("room", string(r.meta.ID)).Str("user", string(user.ID)).
		Msg("join requested")
	return res, nil
}

// Approve atomically moves a pending requester into the member set. The
// new member receives the roster and the message log exactly as they stand
// at this instant; everything broadcast afterwards follows with no gap or
// duplicate because all of it is enqueued under the same lock.
func (r *Room) Approve(actor, target domain.UserID) (OpResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res OpResult
	if r.closed {
		return res, fmt.Errorf("%w: this room is no longer open", domain.ErrRoomClosed)
	}
	if actor != r.meta.AdminID {
		return res, fmt.Errorf("%w: only the administrator can approve requests", domain.ErrForbidden)
	}
	p, ok := r.pending[target]
	if !ok {
		return res, fmt.Errorf("%w: no pending request for that user", domain.ErrNotFound)
	}

	delete(r.pending, target)
	r.members[target] = &memberEntry{member: domain.NewMember(p.req.User), conn: p.conn}
	r.order = append(r.order, target)

	history := make([]domain.Message, len(r.messages))
	copy(history, r.messages)

	r.sendToMember(&res, target, protocol.JoinApproved(r.meta.ID, p.req.User))
	r.sendToMember(&res, target, protocol.UserList(r.usersLocked()))
	r.sendToMember(&res, target, protocol.MessageHistory(history))

	r.broadcast(&res, protocol.UserJoined(p.req.User.Username), target)
	r.broadcast(&res, protocol.UserList(r.usersLocked()), target)

	log.Info().Str("module", "core.room").
		Str("room", string(r.meta.ID)).Str("user", string(target)).
		Msg("join approved")
	return res, nil
}

// Reject removes a pending request and tells the requester why.
func (r *Room) Reject(actor, target domain.UserID) (OpResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res OpResult
	if r.closed {
		return res, fmt.Errorf("%w: this room is no longer open", domain.ErrRoomClosed)
	}
	if actor != r.meta.AdminID {
		return res, fmt.Errorf("%w: only the administrator can reject requests", domain.ErrForbidden)
	}
	p, ok := r.pending[target]
	if !ok {
		return res, fmt.Errorf("%w: no pending request for that user", domain.ErrNotFound)
	}

	delete(r.pending, target)
	_ = p.conn.TrySend(protocol.JoinRejected(rejectedNotice))
	res.Removed = append(res.Removed, target)

	log.Info().Str("module", "core.room").
		Str("room", string(r.meta.ID)).Str("user", string(target)).
		Msg("join rejected")
	return res, nil
}

// Kick removes a current member. The administrator cannot kick themself;
// leaving is the way out for them and it closes the room.
func (r *Room) Kick(actor, target domain.UserID) (OpResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res OpResult
	if r.closed {
		return res, fmt.Errorf("%w: this room is no longer open", domain.ErrRoomClosed)
	}
	if actor != r.meta.AdminID {
		return res, fmt.Errorf("%w: only the administrator can remove members", domain.ErrForbidden)
	}
	if target == actor {
		return res, fmt.Errorf("%w: the administrator cannot remove themself", domain.ErrForbidden)
	}
	e, ok := r.members[target]
	if !ok {
		return res, fmt.Errorf("%w: that user is not a member of this room", domain.ErrNotFound)
	}

	r.removeMemberLocked(target)
	_ = e.conn.TrySend(protocol.Kicked(kickedNotice))
	res.Removed = append(res.Removed, target)

	r.broadcast(&res, protocol.UserLeft(e.member.User.Username))
	r.broadcast(&res, protocol.UserList(r.usersLocked()))

	log.Info().Str("module", "core.room").
		Str("room", string(r.meta.ID)).Str("user", string(target)).
		Msg("member kicked")
	return res, nil
}

// Leave removes a member. Administrator departure is the closure trigger:
// the room transitions to Closed, every remaining member and every pending
// requester is notified, and the caller must drop the room from the
// registry.
func (r *Room) Leave(user domain.UserID) (OpResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res OpResult
	if r.closed {
		return res, fmt.Errorf("%w: this room is no longer open", domain.ErrRoomClosed)
	}
	e, ok := r.members[user]
	if !ok {
		return res, fmt.Errorf("%w: not a member of this room", domain.ErrNotFound)
	}

	if user == r.meta.AdminID {
		r.closeLocked(&res, user)
		return res, nil
	}

	r.removeMemberLocked(user)
	res.Removed = append(res.Removed, user)
	r.broadcast(&res, protocol.UserLeft(e.member.User.Username))
	r.broadcast(&res, protocol.UserList(r.usersLocked()))

	log.Info().Str("module", "core.room").
		Str("room", string(r.meta.ID)).Str("user", string(user)).
		Msg("member left")
	return res, nil
}

// Disconnect is the implicit counterpart of Leave for a dropped transport:
// members leave as usual (closing the room if the administrator vanished),
// pending requesters are withdrawn silently.
func (r *Room) Disconnect(user domain.UserID) OpResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res OpResult
	if r.closed {
		return res
	}

	if e, ok := r.members[user]; ok {
		if user == r.meta.AdminID {
			r.closeLocked(&res, user)
			return res
		}
		r.removeMemberLocked(user)
		res.Removed = append(res.Removed, user)
		r.broadcast(&res, protocol.UserLeft(e.member.User.Username))
		r.broadcast(&res, protocol.UserList(r.usersLocked()))
		log.Info().Str("module", "core.room").
			Str("room", string(r.meta.ID)).Str("user", string(user)).
			Msg("member disconnected")
		return res
	}

	if _, ok := r.pending[user]; ok {
		delete(r.pending, user)
		res.Removed = append(res.Removed, user)
		log.Info().Str("module", "core.room").
			Str("room", string(r.meta.ID)).Str("user", string(user)).
			Msg("pending requester withdrew")
	}
	return res
}

// Send appends a message to the log and fans it out to every current
// member, the sender included, so everyone shares one ordering.
func (r *Room) Send(user domain.UserID, text string) (OpResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res OpResult
	if r.closed {
		return res, fmt.Errorf("%w: this room is no longer open", domain.ErrRoomClosed)
	}
	e, ok := r.members[user]
	if !ok {
		return res, fmt.Errorf("%w: only members can send messages", domain.ErrForbidden)
	}
	body, err := domain.NewMessageText(text)
	if err != nil {
		return res, err
	}

	msg := domain.Message{
		ID:        r.nextSeq,
		UserID:    user,
		Username:  e.member.User.Username,
		Text:      body,
		Timestamp: time.Now(),
	}
	r.nextSeq++
	r.messages = append(r.messages, msg)

	r.broadcast(&res, protocol.NewMessage(msg))
	return res, nil
}

// closeLocked tears the room down: members and pending requesters are all
// notified and evicted. A dead recipient never blocks closure for the rest.
func (r *Room) closeLocked(res *OpResult, leaver domain.UserID) {
	r.closed = true
	res.Closed = true

	frame := protocol.RoomClosed(closedNotice)
	for uid, e := range r.members {
		if uid != leaver {
			_ = e.conn.TrySend(frame)
		}
		res.Removed = append(res.Removed, uid)
	}
	for uid, p := range r.pending {
		_ = p.conn.TrySend(frame)
		res.Removed = append(res.Removed, uid)
	}
	r.members = make(map[domain.UserID]*memberEntry)
	r.pending = make(map[domain.UserID]*pendingEntry)
	r.order = nil

	log.Info().Str("module", "core.room").
		Str("room", string(r.meta.ID)).
		Msg("room closed")
}

func (r *Room) removeMemberLocked(user domain.UserID) {
	delete(r.members, user)
	for i, uid := range r.order {
		if uid == user {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Room) usersLocked() []*domain.User {
	out := make([]*domain.User, 0, len(r.order))
	for _, uid := range r.order {
		if e, ok := r.members[uid]; ok {
			out = append(out, e.member.User)
		}
	}
	return out
}

// sendToMember enqueues one frame for one member, recording backpressure.
func (r *Room) sendToMember(res *OpResult, user domain.UserID, frame []byte) {
	e, ok := r.members[user]
	if !ok {
		return
	}
	if err := e.conn.TrySend(frame); err != nil {
		res.Dropped = append(res.Dropped, user)
	}
}

// broadcast enqueues one frame for every member except those excluded.
func (r *Room) broadcast(res *OpResult, frame []byte, except ...domain.UserID) {
	for _, uid := range r.order {
		skip := false
		for _, x := range except {
			if uid == x {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		r.sendToMember(res, uid, frame)
	}
}
