package chathub

import "sync"

// RoomDirectory maps room identifiers to member connections. Rooms are created
// by the first join and deleted when the last member leaves, so one-shot
// conversations do not accumulate.
type RoomDirectory struct {
	mu          sync.RWMutex
	rooms       map[string]map[ConnectionID]struct{}
	memberships map[ConnectionID]map[string]struct{}
}

func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{
		rooms:       make(map[string]map[ConnectionID]struct{}),
		memberships: make(map[ConnectionID]map[string]struct{}),
	}
}

// Join adds id to roomID, creating the room if needed. It reports whether the
// membership is new; joining twice is not an error.
func (d *RoomDirectory) Join(roomID string, id ConnectionID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	members := d.rooms[roomID]
	if members == nil {
		members = make(map[ConnectionID]struct{})
		d.rooms[roomID] = members
	}
	if _, ok := members[id]; ok {
		return false
	}
	members[id] = struct{}{}

	joined := d.memberships[id]
	if joined == nil {
		joined = make(map[string]struct{})
		d.memberships[id] = joined
	}
	joined[roomID] = struct{}{}
	return true
}

// Leave removes id from roomID and deletes the room once empty.
// Leaving a room that does not exist or was never joined is a no-op.
func (d *RoomDirectory) Leave(roomID string, id ConnectionID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.leaveLocked(roomID, id)
}

// LeaveAll removes id from every room it belongs to and returns those rooms.
func (d *RoomDirectory) LeaveAll(id ConnectionID) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	joined := d.memberships[id]
	left := make([]string, 0, len(joined))
	for roomID := range joined {
		if d.leaveLocked(roomID, id) {
			left = append(left, roomID)
		}
	}
	return left
}

func (d *RoomDirectory) leaveLocked(roomID string, id ConnectionID) bool {
	members, ok := d.rooms[roomID]
	if !ok {
		return false
	}
	if _, ok := members[id]; !ok {
		return false
	}

	delete(members, id)
	if len(members) == 0 {
		delete(d.rooms, roomID)
	}
	if joined := d.memberships[id]; joined != nil {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(d.memberships, id)
		}
	}
	return true
}

// MembersOf returns the current members of roomID; empty if the room does not exist.
func (d *RoomDirectory) MembersOf(roomID string) []ConnectionID {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members := d.rooms[roomID]
	out := make([]ConnectionID, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// RoomsOf returns the rooms id has joined.
func (d *RoomDirectory) RoomsOf(id ConnectionID) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	joined := d.memberships[id]
	out := make([]string, 0, len(joined))
	for roomID := range joined {
		out = append(out, roomID)
	}
	return out
}

func (d *RoomDirectory) Exists(roomID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[roomID]
	return ok
}

func (d *RoomDirectory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
