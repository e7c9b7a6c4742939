package models

import (
	"errors"
	"fmt"
	"strings"

	"marketchat/backend/internal/config"
)

var (
	ErrEmptyParticipant = errors.New("chat participant id is empty")
	ErrSelfChat         = errors.New("cannot open a chat with yourself")
	// ErrInvalidParticipant marks an id containing config.RoomSeparator, which
	// would let two different pairs derive the same room.
	ErrInvalidParticipant = errors.New("chat participant id contains the room separator")
	// ErrRoomIDTooLong marks a pair whose room id would exceed config.MaxRoomIDLength.
	ErrRoomIDTooLong = errors.New("chat room id too long")
)

// ChatRoom is a private two-party conversation. Both participants derive the same
// RoomID independently, so no lookup service is involved in joining it.
type ChatRoom struct {
	// RoomID is the sorted participant pair joined by config.RoomSeparator.
	RoomID string `json:"room"`
	// User1ID is the lexicographically smaller participant id.
	User1ID string `json:"user1_id"`
	// User2ID is the larger participant id.
	User2ID string `json:"user2_id"`
}

// PairRoomID returns the room identifier for a conversation between a and b.
// The result does not depend on argument order. It does not validate; use
// NewChatRoom for ids that come from outside.
func PairRoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + config.RoomSeparator + b
}

// NewChatRoom validates the pair and builds its room.
func NewChatRoom(userID, peerID string) (ChatRoom, error) {
	userID = strings.TrimSpace(userID)
	peerID = strings.TrimSpace(peerID)
	if userID == "" || peerID == "" {
		return ChatRoom{}, ErrEmptyParticipant
	}
	if userID == peerID {
		return ChatRoom{}, ErrSelfChat
	}
	if strings.Contains(userID, config.RoomSeparator) || strings.Contains(peerID, config.RoomSeparator) {
		return ChatRoom{}, ErrInvalidParticipant
	}
	if len(userID)+len(config.RoomSeparator)+len(peerID) > config.MaxRoomIDLength {
		return ChatRoom{}, fmt.Errorf("%w: limit is %d bytes", ErrRoomIDTooLong, config.MaxRoomIDLength)
	}

	first, second := userID, peerID
	if second < first {
		first, second = second, first
	}
	return ChatRoom{
		RoomID:  PairRoomID(first, second),
		User1ID: first,
		User2ID: second,
	}, nil
}

// Has reports whether userID is one of the two participants.
func (r ChatRoom) Has(userID string) bool {
	return r.User1ID == userID || r.User2ID == userID
}
