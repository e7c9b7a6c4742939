package chathub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"marketchat/backend/internal/config"
	"marketchat/backend/internal/models"
)

// Event is one validated inbound event. The set fields depend on Kind:
// Payload for send_message, Room for join_room/leave_room, both for chat_message.
type Event struct {
	ConnID  ConnectionID
	Kind    models.EventKind
	Room    string
	Payload models.Payload
}

// ParseEvent decodes a raw socket frame from connID. Every failure wraps
// ErrMalformedMessage. Errors never quote the payload.
func ParseEvent(connID ConnectionID, raw []byte) (Event, error) {
	var frame models.Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Event{}, fmt.Errorf("%w: frame is not a JSON object", ErrMalformedMessage)
	}

	ev := Event{ConnID: connID, Kind: models.EventKind(frame.Event)}
	switch ev.Kind {
	case models.EventSendMessage:
		payload, err := decodePayload(frame.Data)
		if err != nil {
			return Event{}, err
		}
		ev.Payload = payload

	case models.EventJoinRoom, models.EventLeaveRoom:
		var room string
		if err := json.Unmarshal(frame.Data, &room); err != nil {
			return Event{}, fmt.Errorf("%w: %s expects a room id string", ErrMalformedMessage, ev.Kind)
		}
		ev.Room = strings.TrimSpace(room)

	case models.EventChatMessage:
		payload, err := decodePayload(frame.Data)
		if err != nil {
			return Event{}, err
		}
		rawRoom, ok := payload["room"]
		if !ok {
			return Event{}, fmt.Errorf("%w: chat_message without room", ErrMalformedMessage)
		}
		var room string
		if err := json.Unmarshal(rawRoom, &room); err != nil {
			return Event{}, fmt.Errorf("%w: chat_message room is not a string", ErrMalformedMessage)
		}
		ev.Room = strings.TrimSpace(room)
		ev.Payload = payload

	case "":
		return Event{}, fmt.Errorf("%w: missing event name", ErrMalformedMessage)
	default:
		return Event{}, fmt.Errorf("%w: unknown event %q", ErrMalformedMessage, truncate(frame.Event, 32))
	}

	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Validate checks the required field set for the event's kind.
func (e Event) Validate() error {
	switch e.Kind {
	case models.EventSendMessage:
		if e.Payload == nil {
			return fmt.Errorf("%w: send_message without payload", ErrMalformedMessage)
		}
		return nil
	case models.EventJoinRoom, models.EventLeaveRoom:
		return validateRoomID(e.Kind, e.Room)
	case models.EventChatMessage:
		if e.Payload == nil {
			return fmt.Errorf("%w: chat_message without payload", ErrMalformedMessage)
		}
		return validateRoomID(e.Kind, e.Room)
	default:
		return fmt.Errorf("%w: unknown event %q", ErrMalformedMessage, truncate(string(e.Kind), 32))
	}
}

func validateRoomID(kind models.EventKind, room string) error {
	if room == "" {
		return fmt.Errorf("%w: %s with empty room id", ErrMalformedMessage, kind)
	}
	if len(room) > config.MaxRoomIDLength {
		return fmt.Errorf("%w: %s room id longer than %d bytes", ErrMalformedMessage, kind, config.MaxRoomIDLength)
	}
	return nil
}

func decodePayload(data json.RawMessage) (models.Payload, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return nil, fmt.Errorf("%w: payload must be a JSON object", ErrMalformedMessage)
	}
	var payload models.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: payload must be a JSON object", ErrMalformedMessage)
	}
	return payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
