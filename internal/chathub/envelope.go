package chathub

import (
	"marketchat/backend/internal/models"

	"github.com/google/uuid"
)

// EnvelopeBuilder stamps outgoing payloads with a random 128-bit message id.
// Random ids need no shared counter, so builds never contend.
type EnvelopeBuilder struct {
	newID func() string
}

func NewEnvelopeBuilder() *EnvelopeBuilder {
	return &EnvelopeBuilder{newID: uuid.NewString}
}

// Build returns an immutable envelope for payload. room is models.GlobalScope
// for a broadcast to every connection.
func (b *EnvelopeBuilder) Build(senderID string, payload models.Payload, room string) models.Envelope {
	return models.NewEnvelope(b.newID(), senderID, room, payload)
}
