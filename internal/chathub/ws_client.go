package chathub

import (
	"sync"
	"time"

	"marketchat/backend/internal/config"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// WebSocketClient implements Client on a gorilla/websocket connection.
type WebSocketClient struct {
	UserID string
	// ConnID is assigned by the hub; set it before calling Run.
	ConnID ConnectionID
	Conn   *websocket.Conn
	Hub    *ManagerService
	Send   chan []byte

	limiter        *rate.Limiter
	maxMessageSize int64
	writeWait      time.Duration
	pongWait       time.Duration
	closeOnce      sync.Once
}

// NewWebSocketClient wraps an upgraded connection for userID.
func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, userID string, cfg config.Config) *WebSocketClient {
	bufferSize := cfg.SendBufferSize
	if bufferSize <= 0 {
		bufferSize = config.DefaultSendBufferSize
	}
	limit := rate.Inf
	if cfg.EventRate > 0 {
		limit = rate.Limit(cfg.EventRate)
	}
	burst := cfg.EventBurst
	if burst <= 0 {
		burst = 1
	}

	return &WebSocketClient{
		UserID:         userID,
		Conn:           conn,
		Hub:            hub,
		Send:           make(chan []byte, bufferSize),
		limiter:        rate.NewLimiter(limit, burst),
		maxMessageSize: orDefault(cfg.MaxMessageSize, config.DefaultMaxMessageSize),
		writeWait:      orDefault(cfg.WriteWait, config.DefaultWriteWait),
		pongWait:       orDefault(cfg.PongWait, config.DefaultPongWait),
	}
}

func orDefault[T int64 | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

func (c *WebSocketClient) GetUserID() string             { return c.UserID }
func (c *WebSocketClient) GetSendChannel() chan<- []byte { return c.Send }

// Run starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes Send, which makes writePump send a close frame and drop the socket.
// readPump then fails its next read and exits on its own.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}
