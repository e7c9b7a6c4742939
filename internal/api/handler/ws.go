package handler

import (
	"log"

	"marketchat/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ServeWebSocket upgrades an authenticated request and hands the socket to the hub.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	user := h.authenticate(c)
	if user == nil {
		return
	}

	// Upgrade writes its own error response.
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WARNING: websocket upgrade failed for user %s: %v", user.ID, err)
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn, user.ID, h.Cfg)
	id, err := h.Hub.Register(c.Request.Context(), client)
	if err != nil {
		log.Printf("ERROR: failed to register connection for user %s: %v", user.ID, err)
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "relay unavailable"))
		conn.Close()
		return
	}
	client.ConnID = id
	client.Run()
}
