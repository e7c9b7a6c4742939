package models

import (
	"encoding/json"
	"fmt"
)

// GlobalScope is the scope value of envelopes addressed to every connection.
const GlobalScope = ""

// MessageIDField is the field stamped into every distributed payload.
const MessageIDField = "message_id"

// Envelope is the unit of distribution. Fields are unexported so an envelope
// cannot change after the builder creates it.
type Envelope struct {
	messageID string
	senderID  string
	room      string
	payload   Payload
}

// NewEnvelope copies payload so later changes by the caller are not observed.
func NewEnvelope(messageID, senderID, room string, payload Payload) Envelope {
	return Envelope{
		messageID: messageID,
		senderID:  senderID,
		room:      room,
		payload:   payload.Clone(),
	}
}

func (e Envelope) MessageID() string { return e.messageID }
func (e Envelope) SenderID() string  { return e.senderID }

// Room returns the target room, or GlobalScope.
func (e Envelope) Room() string   { return e.room }
func (e Envelope) IsGlobal() bool { return e.room == GlobalScope }

// Payload returns a copy of the client fields.
func (e Envelope) Payload() Payload { return e.payload.Clone() }

// Frame encodes the envelope as it is written to recipients: client fields verbatim
// plus message_id, under the event name for its scope.
func (e Envelope) Frame() ([]byte, error) {
	data := e.payload.Clone()
	id, err := json.Marshal(e.messageID)
	if err != nil {
		return nil, err
	}
	data[MessageIDField] = id

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode envelope %s: %w", e.messageID, err)
	}

	event := OutboundRoom
	if e.IsGlobal() {
		event = OutboundGlobal
	}
	return json.Marshal(Frame{Event: event, SenderID: e.senderID, Data: raw})
}
