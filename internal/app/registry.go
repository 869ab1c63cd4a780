package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/redchat-app/redchat/internal/core"
	"github.com/redchat-app/redchat/internal/domain"
)

// Binding ties one live connection to its (room, user) pair. It exists from
// the moment a create or join resolves the user into a room until the user
// leaves, is kicked, is rejected, or the room closes.
type Binding struct {
	RoomID domain.RoomID
	User   *domain.User
	Conn   core.SignalConnection
}

// SessionRegistry is the process-wide session binding table, keyed by the
// client token the HTTP layer mints per connection.
type SessionRegistry struct {
	mu       sync.RWMutex
	bindings map[core.SessionID]*Binding
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{bindings: make(map[core.SessionID]*Binding)}
}

func (r *SessionRegistry) Bind(sid core.SessionID, b *Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[sid] = b
	log.Info().Str("module", "app.registry").
		Str("sid", string(sid)).Str("room", string(b.RoomID)).Str("user", string(b.User.ID)).
		Msg("bound session")
}

func (r *SessionRegistry) Get(sid core.SessionID) (*Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[sid]
	return b, ok
}

func (r *SessionRegistry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bindings[sid]; !ok {
		return
	}
	delete(r.bindings, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbound session")
}

// UnbindUsers clears the bindings of users whose association with a room
// ended through someone else's action (kick, reject, room closure).
func (r *SessionRegistry) UnbindUsers(roomID domain.RoomID, users ...domain.UserID) {
	if len(users) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for sid, b := range r.bindings {
		if b.RoomID != roomID {
			continue
		}
		for _, uid := range users {
			if b.User.ID == uid {
				delete(r.bindings, sid)
				break
			}
		}
	}
}

// Count reports the number of live bindings.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
