package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPresence lists users with at least one live connection.
func (h *Handler) GetPresence(c *gin.Context) {
	if h.authenticate(c) == nil {
		return
	}
	online, err := h.Storage.OnlineUsers()
	if err != nil {
		log.Printf("ERROR: failed to read presence: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Presence unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": online})
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": h.Hub.Registry.Count(),
		"rooms":       h.Hub.Rooms.RoomCount(),
	})
}
