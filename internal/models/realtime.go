package models

import "encoding/json"

// EventKind names an inbound socket event.
type EventKind string

const (
	EventSendMessage EventKind = "send_message"
	EventJoinRoom    EventKind = "join_room"
	EventLeaveRoom   EventKind = "leave_room"
	EventChatMessage EventKind = "chat_message"
)

// Outbound event names.
const (
	OutboundGlobal = "message"
	OutboundRoom   = "chat_message"
)

// Frame is the wire shape of every socket message in both directions.
type Frame struct {
	Event    string          `json:"event"`
	SenderID string          `json:"sender_id,omitempty"`
	Data     json.RawMessage `json:"data"`
}

// Payload holds the client's message fields. The relay does not interpret them
// beyond the "room" field on room chat, so values are kept as raw JSON.
type Payload map[string]json.RawMessage

// Clone returns an independent copy of p.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		cp := make(json.RawMessage, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}
