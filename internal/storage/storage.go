package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"marketchat/backend/internal/config"
	"marketchat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Storage interface {
	GetUserByID(userID string) (*models.User, error)
	SaveUser(user *models.User) error
	NotifySuspension(channel, userID string) error

	IsUserBanned(userID string) (bool, error)
	BanUser(userID string) error
	UnbanUser(userID string) error

	MarkOnline(userID string) error
	MarkOffline(userID string) error
	OnlineUsers() ([]string, error)
	ResetPresence() error
}

// PresenceEvent is published on config.PresenceChannel when a user's first
// connection opens or last connection closes.
type PresenceEvent struct {
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}

// Service reads the marketplace database and keeps presence in Redis.
// Redis may be nil, in which case ban checks pass and presence is not recorded.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// IsUserBanned checks the ban flag set by moderation in Redis.
func (s *Service) IsUserBanned(userID string) (bool, error) {
	if s.Redis == nil {
		return false, nil
	}
	status, err := s.Redis.Get(s.Ctx, config.BanKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}

func (s *Service) BanUser(userID string) error {
	if s.Redis == nil {
		return errors.New("redis is not configured")
	}
	return s.Redis.Set(s.Ctx, config.BanKeyPrefix+userID, "banned", 0).Err()
}

func (s *Service) UnbanUser(userID string) error {
	if s.Redis == nil {
		return errors.New("redis is not configured")
	}
	return s.Redis.Del(s.Ctx, config.BanKeyPrefix+userID).Err()
}

// MarkOnline counts one more live connection for userID.
func (s *Service) MarkOnline(userID string) error {
	if s.Redis == nil {
		return nil
	}
	n, err := s.Redis.HIncrBy(s.Ctx, config.PresenceKey, userID, 1).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		return s.publishPresence(PresenceEvent{UserID: userID, Online: true})
	}
	return nil
}

// MarkOffline counts one less live connection and removes the user at zero.
func (s *Service) MarkOffline(userID string) error {
	if s.Redis == nil {
		return nil
	}
	n, err := s.Redis.HIncrBy(s.Ctx, config.PresenceKey, userID, -1).Result()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if err := s.Redis.HDel(s.Ctx, config.PresenceKey, userID).Err(); err != nil {
		return err
	}
	return s.publishPresence(PresenceEvent{UserID: userID, Online: false})
}

// OnlineUsers lists users with at least one live connection.
func (s *Service) OnlineUsers() ([]string, error) {
	if s.Redis == nil {
		return []string{}, nil
	}
	return s.Redis.HKeys(s.Ctx, config.PresenceKey).Result()
}

// ResetPresence clears counters left behind by a previous process.
func (s *Service) ResetPresence() error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(s.Ctx, config.PresenceKey).Err()
}

func (s *Service) publishPresence(ev PresenceEvent) error {
	msgBytes, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(s.Ctx, config.PresenceChannel, string(msgBytes)).Err(); err != nil {
		log.Printf("WARNING: failed to publish presence for user %s: %v", ev.UserID, err)
		return err
	}
	return nil
}
