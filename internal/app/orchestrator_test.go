package app_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redchat-app/redchat/internal/app"
	"github.com/redchat-app/redchat/internal/core"
	"github.com/redchat-app/redchat/internal/domain"
	"github.com/redchat-app/redchat/internal/protocol"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return errors.New("send buffer full")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) lastOfType(t *testing.T, typ string) map[string]any {
	t.Helper()
	var found map[string]any
	for _, m := range f.events(t) {
		if m["type"] == typ {
			found = m
		}
	}
	require.NotNil(t, found, "no %s event captured", typ)
	return found
}

func (f *fakeConn) hasType(t *testing.T, typ string) bool {
	t.Helper()
	for _, m := range f.events(t) {
		if m["type"] == typ {
			return true
		}
	}
	return false
}

func newTestOrchestrator() *app.Orchestrator {
	return app.NewOrchestrator(core.NewRegistry(6), app.NewSessionRegistry(), app.StrictPolicy{})
}

// createAndRequest runs scenario A: alice creates "standup", bob requests
// to join. Returns everything later steps need.
func createAndRequest(t *testing.T, o *app.Orchestrator) (aliceConn, bobConn *fakeConn, roomID, bobID string) {
	t.Helper()
	aliceConn, bobConn = &fakeConn{}, &fakeConn{}

	require.NoError(t, o.CreateRoom("sid-alice", aliceConn, "alice", "standup"))
	created := aliceConn.lastOfType(t, protocol.EventRoomCreated)
	roomID = created["roomId"].(string)
	require.NotEmpty(t, roomID)
	assert.Equal(t, true, created["isCreator"])

	require.NoError(t, o.Join("sid-bob", bobConn, "bob", roomID))
	waiting := bobConn.lastOfType(t, protocol.EventWaitingForApproval)
	assert.Equal(t, roomID, waiting["roomId"])

	req := aliceConn.lastOfType(t, protocol.EventJoinRequest)
	bobID = req["userId"].(string)
	assert.Equal(t, "bob", req["username"])
	return aliceConn, bobConn, roomID, bobID
}

func TestCreateJoinApproveMessage(t *testing.T) {
	o := newTestOrchestrator()
	aliceConn, bobConn, roomID, bobID := createAndRequest(t, o)

	// Scenario B: approval delivers the (empty) history and announces bob.
	require.NoError(t, o.Approve("sid-alice", bobID))
	approved := bobConn.lastOfType(t, protocol.EventJoinApproved)
	assert.Equal(t, roomID, approved["roomId"])
	history := bobConn.lastOfType(t, protocol.EventMessageHistory)["messages"].([]any)
	assert.Empty(t, history)
	assert.Equal(t, "bob", aliceConn.lastOfType(t, protocol.EventUserJoined)["username"])

	// Scenario C: both sides see bob's message attributed to bob.
	require.NoError(t, o.Send("sid-bob", "hi"))
	for _, conn := range []*fakeConn{aliceConn, bobConn} {
		msg := conn.lastOfType(t, protocol.EventNewMessage)
		assert.Equal(t, bobID, msg["userId"])
		assert.Equal(t, "bob", msg["username"])
		assert.Equal(t, "hi", msg["message"])
	}
}

func TestJoinIsCaseInsensitiveOnRoomID(t *testing.T) {
	o := newTestOrchestrator()
	aliceConn := &fakeConn{}
	require.NoError(t, o.CreateRoom("sid-alice", aliceConn, "alice", "standup"))
	roomID := aliceConn.lastOfType(t, protocol.EventRoomCreated)["roomId"].(string)

	bobConn := &fakeConn{}
	upper := make([]byte, len(roomID))
	for i := 0; i < len(roomID); i++ {
		c := roomID[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper[i] = c
	}
	require.NoError(t, o.Join("sid-bob", bobConn, "bob", string(upper)))
	assert.True(t, bobConn.hasType(t, protocol.EventWaitingForApproval))
}

func TestKickClearsBinding(t *testing.T) {
	o := newTestOrchestrator()
	aliceConn, bobConn, _, bobID := createAndRequest(t, o)
	require.NoError(t, o.Approve("sid-alice", bobID))

	// Scenario D.
	require.NoError(t, o.Kick("sid-alice", bobID))
	assert.True(t, bobConn.hasType(t, protocol.EventKicked))
	roster := aliceConn.lastOfType(t, protocol.EventUserList)["users"].([]any)
	require.Len(t, roster, 1)
	assert.Equal(t, "alice", roster[0].(map[string]any)["username"])

	// The stale connection is no longer bound to anything.
	err := o.Send("sid-bob", "still here?")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAdminLeaveDestroysRoom(t *testing.T) {
	o := newTestOrchestrator()
	_, bobConn, roomID, bobID := createAndRequest(t, o)
	require.NoError(t, o.Approve("sid-alice", bobID))

	// Scenario E.
	require.NoError(t, o.Leave("sid-alice"))
	assert.True(t, bobConn.hasType(t, protocol.EventRoomClosed))

	_, ok := o.Rooms.Lookup(roomID)
	assert.False(t, ok, "room id must not resolve after closure")

	// Bob's binding died with the room.
	err := o.Send("sid-bob", "anyone?")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// A fresh join against the dead id reports the room as gone.
	err = o.Join("sid-carol", &fakeConn{}, "carol", roomID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRejectUnbindsRequester(t *testing.T) {
	o := newTestOrchestrator()
	_, bobConn, roomID, bobID := createAndRequest(t, o)

	require.NoError(t, o.Reject("sid-alice", bobID))
	assert.True(t, bobConn.hasType(t, protocol.EventJoinRejected))

	// The requester is free to try again.
	require.NoError(t, o.Join("sid-bob", bobConn, "bob", roomID))
}

func TestOneRoomPerConnection(t *testing.T) {
	o := newTestOrchestrator()
	aliceConn, _, roomID, _ := createAndRequest(t, o)

	err := o.CreateRoom("sid-alice", aliceConn, "alice", "another")
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)

	err = o.Join("sid-bob", &fakeConn{}, "bob", roomID)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest, "bob is already pending")
}

func TestMemberLeaveFreesConnection(t *testing.T) {
	o := newTestOrchestrator()
	_, bobConn, roomID, bobID := createAndRequest(t, o)
	require.NoError(t, o.Approve("sid-alice", bobID))

	require.NoError(t, o.Leave("sid-bob"))
	_, ok := o.Rooms.Lookup(roomID)
	assert.True(t, ok, "member departure does not close the room")

	// The freed connection can start over.
	require.NoError(t, o.CreateRoom("sid-bob", bobConn, "bob", "bobs room"))
}

func TestDisconnectOfPendingRequesterIsSilent(t *testing.T) {
	o := newTestOrchestrator()
	aliceConn, _, _, bobID := createAndRequest(t, o)
	before := len(aliceConn.events(t))

	o.Disconnect("sid-bob")
	assert.Len(t, aliceConn.events(t), before, "withdrawal sends nothing")

	err := o.Approve("sid-alice", bobID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDisconnectUnknownSessionIsNoop(t *testing.T) {
	o := newTestOrchestrator()
	o.Disconnect("sid-ghost")
}

func TestSlowMemberIsRemoved(t *testing.T) {
	o := newTestOrchestrator()
	_, bobConn, roomID, bobID := createAndRequest(t, o)
	require.NoError(t, o.Approve("sid-alice", bobID))

	bobConn.mu.Lock()
	bobConn.full = true
	bobConn.mu.Unlock()

	require.NoError(t, o.Send("sid-alice", "hello"))

	room, ok := o.Rooms.Lookup(roomID)
	require.True(t, ok)
	require.Len(t, room.Users(), 1, "slow member evicted by policy")

	err := o.Send("sid-bob", "lagging")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateRoomValidation(t *testing.T) {
	o := newTestOrchestrator()
	tests := []struct {
		name     string
		username string
		roomName string
	}{
		{"empty username", "", "standup"},
		{"empty room name", "alice", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := o.CreateRoom("sid-x", &fakeConn{}, tt.username, tt.roomName)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Equal(t, 0, o.Rooms.Count())
}
