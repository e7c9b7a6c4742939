package chathub

// Client is the transport side of one live connection (e.g., a WebSocket).
// Implementations must be comparable, normally a pointer, since the registry
// keys on the handle to detect double registration.
type Client interface {
	// GetUserID returns the user identifier asserted by the session layer.
	GetUserID() string
	// GetSendChannel returns the buffered channel the hub enqueues encoded frames on.
	// The hub never blocks on it; a full buffer drops the frame for this client only.
	GetSendChannel() chan<- []byte
	// Run starts the client's read and write pumps.
	Run()
	// Close stops the write side. The hub calls it exactly once, when the
	// connection is unregistered, and never sends on the channel afterwards.
	Close()
}
