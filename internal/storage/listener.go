package storage

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/lib/pq"
)

// SuspensionListener receives user ids published with pg_notify on a moderation
// channel and hands each one to onSuspend.
type SuspensionListener struct {
	dsn       string
	channel   string
	onSuspend func(userID string)
}

func NewSuspensionListener(dsn, channel string, onSuspend func(userID string)) *SuspensionListener {
	return &SuspensionListener{dsn: dsn, channel: channel, onSuspend: onSuspend}
}

// Run listens until ctx is cancelled. pq reconnects on its own; after a
// reconnect notifications sent while disconnected are lost.
func (l *SuspensionListener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("WARNING: suspension listener: %v", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(l.channel); err != nil {
		return err
	}
	log.Printf("INFO: listening for suspensions on %q", l.channel)

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect
			if n == nil {
				continue
			}
			l.handle(n.Extra)
		case <-ping.C:
			go listener.Ping()
		}
	}
}

func (l *SuspensionListener) handle(payload string) {
	userID := strings.TrimSpace(payload)
	if userID == "" {
		log.Println("WARNING: empty suspension notification ignored")
		return
	}
	log.Printf("INFO: user %s suspended, closing connections", userID)
	l.onSuspend(userID)
}
