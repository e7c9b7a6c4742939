package chathub

import (
	"context"
	"fmt"
	"log"
	"sync"

	"marketchat/backend/internal/config"
	"marketchat/backend/internal/models"
)

type registerRequest struct {
	client Client
	reply  chan registerResult
}

type registerResult struct {
	id  ConnectionID
	err error
}

type dispatchRequest struct {
	event Event
	reply chan error
}

// ManagerService is the relay dispatcher. One goroutine (Run) owns every
// mutation of the registry and the room directory and computes every fan-out
// set, so a join racing a disconnect is always applied in a single order.
// Delivery itself is a non-blocking enqueue; the clients' write pumps do the
// socket I/O in parallel.
type ManagerService struct {
	Registry  *Registry
	Rooms     *RoomDirectory
	Envelopes *EnvelopeBuilder

	registerCh   chan registerRequest
	unregisterCh chan ConnectionID
	incomingCh   chan dispatchRequest
	kickCh       chan string

	presence          *presencePublisher
	slowConsumerLimit int

	runOnce sync.Once
	done    chan struct{}
}

// NewManagerService builds a hub. presence may be nil when no presence store is configured.
func NewManagerService(presence PresenceTracker, cfg config.Config) *ManagerService {
	rooms := NewRoomDirectory()
	limit := cfg.SlowConsumerLimit
	if limit <= 0 {
		limit = config.DefaultSlowConsumerLimit
	}

	m := &ManagerService{
		Registry:          NewRegistry(rooms),
		Rooms:             rooms,
		Envelopes:         NewEnvelopeBuilder(),
		registerCh:        make(chan registerRequest),
		unregisterCh:      make(chan ConnectionID, 64),
		incomingCh:        make(chan dispatchRequest),
		kickCh:            make(chan string, 16),
		slowConsumerLimit: limit,
		done:              make(chan struct{}),
	}
	if presence != nil {
		m.presence = newPresencePublisher(presence, cfg.PresenceBuffer)
	}
	return m
}

// Run processes hub events until ctx is cancelled, then closes every
// connection. It must be called once; Done is closed when it returns.
func (m *ManagerService) Run(ctx context.Context) {
	started := false
	m.runOnce.Do(func() { started = true })
	if !started {
		log.Println("WARNING: chat hub Run called twice, ignoring")
		return
	}

	var workers sync.WaitGroup
	if m.presence != nil {
		workers.Add(1)
		go func() {
			defer workers.Done()
			m.presence.run()
		}()
	}
	defer func() {
		if m.presence != nil {
			m.presence.stop()
		}
		workers.Wait()
		close(m.done)
		log.Println("INFO: chat hub stopped")
	}()

	log.Println("INFO: chat hub started")
	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return

		case req := <-m.registerCh:
			id, err := m.register(req.client)
			req.reply <- registerResult{id: id, err: err}

		// Channels are not ordered against each other: an Unregister followed by
		// a Dispatch from the same caller may be handled dispatch first. Either
		// order ends with no membership for the closed connection, since
		// unregister cascades through LeaveAll and later events are stale.
		case id := <-m.unregisterCh:
			m.unregister(id, "disconnect")

		case req := <-m.incomingCh:
			req.reply <- m.handleEvent(req.event)

		case userID := <-m.kickCh:
			m.disconnectUser(userID)
		}
	}
}

// Done is closed once Run has returned and every connection is closed.
func (m *ManagerService) Done() <-chan struct{} {
	return m.done
}

// Register adds client to the hub. The connection is live as soon as this returns.
func (m *ManagerService) Register(ctx context.Context, client Client) (ConnectionID, error) {
	req := registerRequest{client: client, reply: make(chan registerResult, 1)}
	select {
	case m.registerCh <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-m.done:
		return "", ErrHubClosed
	}
	res := <-req.reply
	return res.id, res.err
}

// Unregister closes the connection asynchronously. Unknown or already closed ids are ignored.
func (m *ManagerService) Unregister(id ConnectionID) {
	select {
	case m.unregisterCh <- id:
	case <-m.done:
	}
}

// Dispatch processes one inbound event and returns its outcome
// (ErrMalformedMessage, ErrStaleConnection, or nil). Nothing is sent back to the client.
func (m *ManagerService) Dispatch(ctx context.Context, ev Event) error {
	req := dispatchRequest{event: ev, reply: make(chan error, 1)}
	select {
	case m.incomingCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return ErrHubClosed
	}
	return <-req.reply
}

// DisconnectUser closes every connection held by userID, e.g. after a suspension.
func (m *ManagerService) DisconnectUser(userID string) {
	select {
	case m.kickCh <- userID:
	case <-m.done:
	}
}

func (m *ManagerService) register(client Client) (ConnectionID, error) {
	id, err := m.Registry.Register(client, client.GetUserID())
	if err != nil {
		log.Printf("WARNING: rejected registration for user %q: %v", client.GetUserID(), err)
		return "", err
	}
	conn, _ := m.Registry.Lookup(id)
	if m.presence != nil {
		m.presence.enqueue(presenceUpdate{userID: conn.UserID, online: true})
	}
	log.Printf("INFO: connection %s registered for user %s (%d live)", id, conn.UserID, m.Registry.Count())
	return id, nil
}

func (m *ManagerService) unregister(id ConnectionID, reason string) {
	conn, ok := m.Registry.Unregister(id)
	if !ok {
		return
	}
	conn.Client.Close()
	if m.presence != nil {
		m.presence.enqueue(presenceUpdate{userID: conn.UserID, online: false})
	}
	log.Printf("INFO: connection %s of user %s closed (%s)", id, conn.UserID, reason)
}

func (m *ManagerService) disconnectUser(userID string) {
	conns := m.Registry.ByUser(userID)
	for _, conn := range conns {
		m.unregister(conn.ID, "user disconnected by moderation")
	}
	if len(conns) > 0 {
		log.Printf("INFO: disconnected %d connection(s) of user %s", len(conns), userID)
	}
}

func (m *ManagerService) shutdown() {
	conns := m.Registry.All()
	for _, conn := range conns {
		m.unregister(conn.ID, "shutdown")
	}
	log.Printf("INFO: chat hub closed %d connection(s) on shutdown", len(conns))
}

func (m *ManagerService) handleEvent(ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	conn, ok := m.Registry.Lookup(ev.ConnID)
	if !ok || conn.Closed() {
		return fmt.Errorf("%w: %s", ErrStaleConnection, ev.ConnID)
	}

	switch ev.Kind {
	case models.EventSendMessage:
		env := m.Envelopes.Build(conn.UserID, ev.Payload, models.GlobalScope)
		m.fanOut(env, m.Registry.All())

	case models.EventJoinRoom:
		if m.Rooms.Join(ev.Room, conn.ID) {
			log.Printf("INFO: connection %s joined room %s", conn.ID, ev.Room)
		}

	case models.EventLeaveRoom:
		m.Rooms.Leave(ev.Room, conn.ID)

	case models.EventChatMessage:
		env := m.Envelopes.Build(conn.UserID, ev.Payload, ev.Room)
		members := m.Rooms.MembersOf(ev.Room)
		recipients := make([]*Connection, 0, len(members))
		for _, id := range members {
			if member, ok := m.Registry.Lookup(id); ok {
				recipients = append(recipients, member)
			}
		}
		m.fanOut(env, recipients)
	}
	return nil
}

// fanOut encodes env once and enqueues it for each recipient independently.
func (m *ManagerService) fanOut(env models.Envelope, recipients []*Connection) {
	if len(recipients) == 0 {
		return
	}
	frame, err := env.Frame()
	if err != nil {
		log.Printf("ERROR: failed to encode message %s: %v", env.MessageID(), err)
		return
	}
	for _, conn := range recipients {
		m.deliver(conn, frame, env.MessageID())
	}
}

func (m *ManagerService) deliver(conn *Connection, frame []byte, messageID string) {
	if conn.Closed() {
		return
	}
	if enqueue(conn.Client, frame) {
		conn.drops = 0
		return
	}

	conn.drops++
	log.Printf("WARNING: send buffer full for connection %s, dropped message %s (%d in a row)", conn.ID, messageID, conn.drops)
	if conn.drops >= m.slowConsumerLimit {
		m.unregister(conn.ID, "slow consumer")
	}
}

// enqueue never blocks. A send on a channel closed outside the hub is
// recovered and treated as a failed delivery to that recipient only.
func enqueue(client Client, frame []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	select {
	case client.GetSendChannel() <- frame:
		return true
	default:
		return false
	}
}
