package handler

import (
	"errors"
	"net/http"

	"marketchat/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type peerView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type pairRoomResponse struct {
	Room string   `json:"room"`
	Peer peerView `json:"peer"`
}

// GetPairRoom returns the room identifier the caller and peer_id share, for the
// chat page to pass to join_room.
func (h *Handler) GetPairRoom(c *gin.Context) {
	me := h.authenticate(c)
	if me == nil {
		return
	}

	room, err := models.NewChatRoom(me.ID, c.Param("peer_id"))
	switch {
	case errors.Is(err, models.ErrSelfChat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot chat with yourself"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid peer"})
		return
	}

	peerID := room.User1ID
	if peerID == me.ID {
		peerID = room.User2ID
	}
	peer, err := h.Storage.GetUserByID(peerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load peer"})
		return
	}
	if !peer.CanChat() {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, pairRoomResponse{
		Room: room.RoomID,
		Peer: peerView{ID: peer.ID, Username: peer.Username},
	})
}
