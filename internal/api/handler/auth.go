package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"marketchat/backend/internal/models"
	"marketchat/backend/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionCookie = "session"

// sessionToken finds the session assertion: Authorization header first, then
// the token query parameter (browsers cannot set headers on a WebSocket
// handshake), then the session cookie.
func sessionToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	if token := c.Query("token"); token != "" {
		return token
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie
	}
	return ""
}

// authenticate resolves the caller to an account allowed to chat. On failure it
// has already written the response and returns nil.
func (h *Handler) authenticate(c *gin.Context) *models.User {
	userID, err := session.VerifyToken(h.Cfg.SessionSecret, h.Cfg.SessionIssuer, sessionToken(c))
	if err != nil {
		msg := "Invalid token or expired"
		if errors.Is(err, session.ErrMissingToken) {
			msg = "Authorization token missing"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		return nil
	}

	user, err := h.Storage.GetUserByID(userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return nil
	}
	if !user.CanChat() {
		log.Printf("WARNING: refused chat session for inactive or unknown user %s", userID)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is not allowed to chat"})
		return nil
	}

	banned, err := h.Storage.IsUserBanned(userID)
	if err != nil {
		log.Printf("ERROR: ban check failed for user %s: %v", userID, err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Ban check unavailable"})
		return nil
	}
	if banned {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is banned"})
		return nil
	}
	return user
}
