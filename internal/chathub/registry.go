package chathub

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ConnectionID identifies one registered connection for its lifetime.
type ConnectionID string

// Connection is the registry's tracking state for a live socket.
type Connection struct {
	ID          ConnectionID
	UserID      string
	Client      Client
	ConnectedAt time.Time

	closed atomic.Bool
	// drops counts consecutive frames lost to a full send buffer. Hub goroutine only.
	drops int
}

// Closed reports whether the connection has reached its terminal state.
func (c *Connection) Closed() bool {
	return c.closed.Load()
}

// Registry owns every live connection. Unregistering cascades into the room
// directory so no membership outlives its connection.
type Registry struct {
	mu      sync.RWMutex
	conns   map[ConnectionID]*Connection
	handles map[Client]ConnectionID
	byUser  map[string]map[ConnectionID]struct{}
	rooms   *RoomDirectory
}

// NewRegistry creates a registry that cleans up memberships in rooms.
func NewRegistry(rooms *RoomDirectory) *Registry {
	return &Registry{
		conns:   make(map[ConnectionID]*Connection),
		handles: make(map[Client]ConnectionID),
		byUser:  make(map[string]map[ConnectionID]struct{}),
		rooms:   rooms,
	}
}

// Register starts tracking client for userID. Registering the same handle
// twice fails and leaves the first registration in place.
func (r *Registry) Register(client Client, userID string) (ConnectionID, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrMissingUser
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handles[client]; ok {
		return "", ErrDuplicateConnection
	}

	conn := &Connection{
		ID:          ConnectionID(uuid.NewString()),
		UserID:      userID,
		Client:      client,
		ConnectedAt: time.Now(),
	}
	r.conns[conn.ID] = conn
	r.handles[client] = conn.ID

	ids := r.byUser[userID]
	if ids == nil {
		ids = make(map[ConnectionID]struct{})
		r.byUser[userID] = ids
	}
	ids[conn.ID] = struct{}{}

	return conn.ID, nil
}

// Unregister marks the connection closed, forgets it and removes it from every
// room. It returns the removed connection; a second call is a no-op returning false.
func (r *Registry) Unregister(id ConnectionID) (*Connection, bool) {
	r.mu.Lock()
	conn, ok := r.conns[id]
	if !ok {
		r.mu.Unlock()
		return nil, false
	}
	conn.closed.Store(true)
	delete(r.conns, id)
	delete(r.handles, conn.Client)
	if ids := r.byUser[conn.UserID]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byUser, conn.UserID)
		}
	}
	r.mu.Unlock()

	if r.rooms != nil {
		r.rooms.LeaveAll(id)
	}
	return conn, true
}

// Lookup returns the live connection with id.
func (r *Registry) Lookup(id ConnectionID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// ByUser returns every live connection of userID (a user may have several tabs open).
func (r *Registry) ByUser(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUser[userID]
	out := make([]*Connection, 0, len(ids))
	for id := range ids {
		out = append(out, r.conns[id])
	}
	return out
}

// All returns a snapshot of every live connection.
func (r *Registry) All() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		out = append(out, conn)
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
