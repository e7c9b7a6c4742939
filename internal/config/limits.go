package config

import "time"

const (
	// Rooms
	MaxRoomIDLength = 128
	RoomSeparator   = "#"

	// WebSocket defaults
	DefaultSendBufferSize    = 256
	DefaultMaxMessageSize    = 4096
	DefaultWriteWait         = 10 * time.Second
	DefaultPongWait          = 60 * time.Second
	DefaultSlowConsumerLimit = 32

	// Redis keys
	PresenceKey         = "chat:presence"
	PresenceChannel     = "chat:presence:events"
	BanKeyPrefix        = "ban:"
	DefaultSuspendTopic = "account_suspended"
)

// PingPeriod derives the ping interval from the pong deadline. It must stay below pongWait.
func PingPeriod(pongWait time.Duration) time.Duration {
	return (pongWait * 9) / 10
}
