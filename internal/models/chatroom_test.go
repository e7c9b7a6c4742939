package models_test

import (
	"strings"
	"testing"

	"marketchat/backend/internal/config"
	"marketchat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairRoomID_OrderIndependent(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "alice"},
		{"8f14e45f-ceea-467f-a0e6-7c5d1a1e0d3b", "1c383cd3-0b1b-4b60-9dc4-8d2c2b1e9a01"},
		{"", "x"},
		{"same", "same"},
	}

	for _, p := range pairs {
		assert.Equal(t, models.PairRoomID(p[0], p[1]), models.PairRoomID(p[1], p[0]), "pair %v", p)
	}
}

func TestPairRoomID_Format(t *testing.T) {
	assert.Equal(t, "alice#bob", models.PairRoomID("bob", "alice"))
	assert.Equal(t, "alice#bob", models.PairRoomID("alice", "bob"))
}

func TestNewChatRoom(t *testing.T) {
	// Arrange & Act
	room, err := models.NewChatRoom(" bob ", "alice")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "alice#bob", room.RoomID)
	assert.Equal(t, "alice", room.User1ID)
	assert.Equal(t, "bob", room.User2ID)
	assert.True(t, room.Has("alice"))
	assert.True(t, room.Has("bob"))
	assert.False(t, room.Has("carol"))
}

func TestNewChatRoom_Rejects(t *testing.T) {
	_, err := models.NewChatRoom("alice", "alice")
	assert.ErrorIs(t, err, models.ErrSelfChat)

	_, err = models.NewChatRoom("", "bob")
	assert.ErrorIs(t, err, models.ErrEmptyParticipant)

	_, err = models.NewChatRoom("alice", "   ")
	assert.ErrorIs(t, err, models.ErrEmptyParticipant)
}

func TestNewChatRoom_RejectsSeparatorInIDs(t *testing.T) {
	// (a#b, c) and (a, b#c) would both derive "a#b#c".
	require.Equal(t, models.PairRoomID("a#b", "c"), models.PairRoomID("a", "b#c"))

	_, err := models.NewChatRoom("a#b", "c")
	assert.ErrorIs(t, err, models.ErrInvalidParticipant)

	_, err = models.NewChatRoom("a", "b#c")
	assert.ErrorIs(t, err, models.ErrInvalidParticipant)
}

func TestNewChatRoom_RoomIDLength(t *testing.T) {
	// 63 + 1 + 64 bytes is exactly the limit.
	room, err := models.NewChatRoom(strings.Repeat("a", 63), strings.Repeat("b", 64))
	require.NoError(t, err)
	assert.Len(t, room.RoomID, config.MaxRoomIDLength)

	_, err = models.NewChatRoom(strings.Repeat("a", 64), strings.Repeat("b", 65))
	assert.ErrorIs(t, err, models.ErrRoomIDTooLong)
}
