package core

import "github.com/redchat-app/redchat/internal/domain"

// Frame is one marshaled wire event.
type Frame []byte

// SessionID identifies one client connection across the process.
type SessionID string

// SignalConnection abstracts the outbound half of a client transport.
// TrySend must never block; a full buffer is an error, not a stall.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// OpResult reports the side effects of one room operation so the
// orchestrator can keep session bindings and the registry in sync.
type OpResult struct {
	// Closed is set when the operation transitioned the room to Closed.
	Closed bool
	// Removed lists users whose association with the room ended
	// (kicked, rejected, left, or evicted by closure).
	Removed []domain.UserID
	// Dropped lists members whose send buffer was full during fan-out;
	// the backpressure policy decides their fate.
	Dropped []domain.UserID
}
