package chathub

import (
	"context"
	"errors"
	"log"
	"time"

	"marketchat/backend/internal/config"

	"github.com/gorilla/websocket"
)

// readPump decodes frames from the socket and hands them to the hub.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c.ConnID)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WARNING: read error on connection %s: %v", c.ConnID, err)
			}
			return
		}

		if !c.limiter.Allow() {
			log.Printf("WARNING: connection %s exceeded event rate, frame dropped", c.ConnID)
			continue
		}

		ev, err := ParseEvent(c.ConnID, message)
		if err != nil {
			log.Printf("WARNING: dropped event from connection %s: %v", c.ConnID, err)
			continue
		}

		err = c.Hub.Dispatch(context.Background(), ev)
		switch {
		case err == nil:
		case errors.Is(err, ErrStaleConnection), errors.Is(err, ErrHubClosed):
			return
		default:
			log.Printf("WARNING: event from connection %s rejected: %v", c.ConnID, err)
		}
	}
}

// writePump writes queued frames to the socket, one WebSocket message per frame,
// and keeps the connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod(c.pongWait))
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Printf("WARNING: write failed on connection %s: %v", c.ConnID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
