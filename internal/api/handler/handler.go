package handler

import (
	"net/http"

	"marketchat/backend/internal/api/middleware"
	"marketchat/backend/internal/chathub"
	"marketchat/backend/internal/config"
	"marketchat/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handler serves the relay's HTTP surface: the socket upgrade and the small
// JSON endpoints the marketplace pages call.
type Handler struct {
	Hub     *chathub.ManagerService
	Storage storage.Storage
	Cfg     config.Config

	upgrader websocket.Upgrader
}

func NewHandler(hub *chathub.ManagerService, s storage.Storage, cfg config.Config) *Handler {
	h := &Handler{Hub: hub, Storage: s, Cfg: cfg}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return cfg.OriginAllowed(r.Header.Get("Origin"))
		},
	}
	return h
}

// Register mounts the routes. upgrades may be nil to disable the per-IP upgrade limit.
func (h *Handler) Register(r gin.IRouter, upgrades *middleware.IPRateLimiter) {
	if upgrades != nil {
		r.GET("/ws", middleware.RateLimit(upgrades), h.ServeWebSocket)
	} else {
		r.GET("/ws", h.ServeWebSocket)
	}
	r.GET("/chat/:peer_id/room", h.GetPairRoom)
	r.GET("/chat/presence", h.GetPresence)
	r.GET("/healthz", h.Healthz)
}
