package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/redchat-app/redchat/internal/domain"
)

// collision retries before Create gives up. With a 31-char alphabet and six
// positions a handful of retries is already overkill.
const maxIDAttempts = 8

// Registry is the process-wide mapping from room id to Room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*Room
	idLen int
}

func NewRegistry(idLen int) *Registry {
	if idLen <= 0 {
		idLen = DefaultRoomIDLength
	}
	return &Registry{
		rooms: make(map[domain.RoomID]*Room),
		idLen: idLen,
	}
}

// Create allocates a unique room id, builds the Room with the creator as
// administrator and sole member, and registers it.
func (g *Registry) Create(name domain.RoomName, creator *domain.User, conn SignalConnection) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var id domain.RoomID
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			return nil, fmt.Errorf("room id space exhausted after %d attempts", maxIDAttempts)
		}
		id = NewRoomID(g.idLen)
		if _, taken := g.rooms[id]; !taken {
			break
		}
	}

	meta := &domain.Room{
		ID:        id,
		Name:      name,
		AdminID:   creator.ID,
		CreatedAt: time.Now(),
	}
	room := NewRoom(meta, creator, conn)
	g.rooms[id] = room

	log.Info().Str("module", "core.registry").
		Str("room", string(id)).Str("name", string(name)).
		Int("open_rooms", len(g.rooms)).
		Msg("room registered")
	return room, nil
}

// Lookup resolves a user-supplied room id. Ids are case-insensitive.
func (g *Registry) Lookup(raw string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[NormalizeRoomID(raw)]
	return room, ok
}

// Destroy drops a room from the registry. Destroying an absent id is a
// no-op so concurrent teardown triggers cannot trip over each other.
func (g *Registry) Destroy(id domain.RoomID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rooms[id]; !ok {
		return
	}
	delete(g.rooms, id)
	log.Info().Str("module", "core.registry").
		Str("room", string(id)).Int("open_rooms", len(g.rooms)).
		Msg("room destroyed")
}

// Count reports how many rooms are currently open.
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
