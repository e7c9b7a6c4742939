package chathub_test

import (
	"testing"

	"marketchat/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterLookup(t *testing.T) {
	reg := chathub.NewRegistry(chathub.NewRoomDirectory())
	client := newMockClient("alice")

	id, err := reg.Register(client, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	conn, ok := reg.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, id, conn.ID)
	assert.Equal(t, "alice", conn.UserID)
	assert.Same(t, client, conn.Client)
	assert.False(t, conn.ConnectedAt.IsZero())
	assert.Equal(t, 1, reg.Count())
}

func TestRegistry_DuplicateHandle(t *testing.T) {
	reg := chathub.NewRegistry(nil)
	client := newMockClient("alice")

	first, err := reg.Register(client, "alice")
	require.NoError(t, err)

	_, err = reg.Register(client, "alice")
	assert.ErrorIs(t, err, chathub.ErrDuplicateConnection)

	_, ok := reg.Lookup(first)
	assert.True(t, ok)
	assert.Equal(t, 1, reg.Count())
}

func TestRegistry_DistinctHandlesSameUser(t *testing.T) {
	reg := chathub.NewRegistry(nil)

	a, err := reg.Register(newMockClient("alice"), "alice")
	require.NoError(t, err)
	b, err := reg.Register(newMockClient("alice"), "alice")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, reg.ByUser("alice"), 2)
	assert.Empty(t, reg.ByUser("bob"))
}

func TestRegistry_UnregisterCascadesAndIsIdempotent(t *testing.T) {
	rooms := chathub.NewRoomDirectory()
	reg := chathub.NewRegistry(rooms)
	client := newMockClient("alice")
	id, err := reg.Register(client, "alice")
	require.NoError(t, err)
	rooms.Join("alice#bob", id)
	rooms.Join("lobby", id)

	conn, ok := reg.Unregister(id)
	require.True(t, ok)
	assert.True(t, conn.Closed())
	assert.Zero(t, reg.Count())
	assert.Empty(t, reg.ByUser("alice"))
	assert.Empty(t, rooms.RoomsOf(id))
	assert.False(t, rooms.Exists("alice#bob"))
	assert.False(t, rooms.Exists("lobby"))

	_, ok = reg.Unregister(id)
	assert.False(t, ok, "second unregister is a no-op")

	// The handle may be registered again after removal.
	_, err = reg.Register(client, "alice")
	assert.NoError(t, err)
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg := chathub.NewRegistry(nil)
	_, ok := reg.Lookup("missing")
	assert.False(t, ok)
	assert.Empty(t, reg.All())
}
