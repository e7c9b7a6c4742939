package chathub

import "errors"

var (
	// ErrMalformedMessage marks an inbound event missing a required field or not decodable.
	ErrMalformedMessage = errors.New("malformed message")
	// ErrStaleConnection marks an event for a connection that is already closed.
	ErrStaleConnection = errors.New("stale connection")
	// ErrDuplicateConnection is returned when the same client handle is registered twice.
	ErrDuplicateConnection = errors.New("duplicate connection")
	// ErrMissingUser is returned when a client carries no user identifier.
	ErrMissingUser = errors.New("connection has no user id")
	// ErrHubClosed is returned by hub calls made after Run has stopped.
	ErrHubClosed = errors.New("chat hub is closed")
)
