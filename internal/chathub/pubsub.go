package chathub

import (
	"log"

	"marketchat/backend/internal/config"
)

// PresenceTracker records which users hold at least one live connection.
// storage.Service implements it on Redis.
type PresenceTracker interface {
	MarkOnline(userID string) error
	MarkOffline(userID string) error
}

type presenceUpdate struct {
	userID string
	online bool
}

// presencePublisher moves presence writes off the hub goroutine, which must
// never wait on network I/O. Updates beyond the buffer are dropped.
type presencePublisher struct {
	tracker PresenceTracker
	updates chan presenceUpdate
}

func newPresencePublisher(tracker PresenceTracker, buffer int) *presencePublisher {
	if buffer <= 0 {
		buffer = config.DefaultSendBufferSize
	}
	return &presencePublisher{
		tracker: tracker,
		updates: make(chan presenceUpdate, buffer),
	}
}

// enqueue is called from the hub goroutine only.
func (p *presencePublisher) enqueue(u presenceUpdate) {
	select {
	case p.updates <- u:
	default:
		log.Printf("WARNING: presence buffer full, dropped update for user %s", u.userID)
	}
}

// stop is called from the hub goroutine after the last enqueue.
func (p *presencePublisher) stop() {
	close(p.updates)
}

// run applies updates in order until stop, draining what is already queued.
func (p *presencePublisher) run() {
	for u := range p.updates {
		var err error
		if u.online {
			err = p.tracker.MarkOnline(u.userID)
		} else {
			err = p.tracker.MarkOffline(u.userID)
		}
		if err != nil {
			log.Printf("ERROR: failed to update presence for user %s: %v", u.userID, err)
		}
	}
}
