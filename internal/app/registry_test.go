package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redchat-app/redchat/internal/app"
	"github.com/redchat-app/redchat/internal/domain"
)

func TestSessionRegistryBindGetUnbind(t *testing.T) {
	reg := app.NewSessionRegistry()
	user := &domain.User{ID: "u1", Username: "alice"}

	_, ok := reg.Get("sid-1")
	assert.False(t, ok)

	reg.Bind("sid-1", &app.Binding{RoomID: "abc234", User: user, Conn: &fakeConn{}})
	b, ok := reg.Get("sid-1")
	require.True(t, ok)
	assert.Equal(t, domain.RoomID("abc234"), b.RoomID)
	assert.Equal(t, user, b.User)
	assert.Equal(t, 1, reg.Count())

	reg.Unbind("sid-1")
	_, ok = reg.Get("sid-1")
	assert.False(t, ok)

	// Unbinding twice is harmless.
	reg.Unbind("sid-1")
	assert.Equal(t, 0, reg.Count())
}

func TestSessionRegistryUnbindUsers(t *testing.T) {
	reg := app.NewSessionRegistry()
	alice := &domain.User{ID: "u1", Username: "alice"}
	bob := &domain.User{ID: "u2", Username: "bob"}
	carol := &domain.User{ID: "u3", Username: "carol"}

	reg.Bind("sid-1", &app.Binding{RoomID: "room-a", User: alice, Conn: &fakeConn{}})
	reg.Bind("sid-2", &app.Binding{RoomID: "room-a", User: bob, Conn: &fakeConn{}})
	reg.Bind("sid-3", &app.Binding{RoomID: "room-b", User: carol, Conn: &fakeConn{}})

	// Only the named users of the named room are cleared.
	reg.UnbindUsers("room-a", alice.ID, bob.ID, carol.ID)
	_, ok := reg.Get("sid-1")
	assert.False(t, ok)
	_, ok = reg.Get("sid-2")
	assert.False(t, ok)
	_, ok = reg.Get("sid-3")
	assert.True(t, ok, "carol is bound to a different room")

	reg.UnbindUsers("room-b")
	assert.Equal(t, 1, reg.Count(), "empty user list is a no-op")
}
