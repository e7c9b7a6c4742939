package storage

import (
	"errors"
	"fmt"
	"log"

	"marketchat/backend/internal/config"
	"marketchat/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenDatabase connects to the marketplace database named by cfg.
func OpenDatabase(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	if cfg.DBAutoMigrate {
		if err := db.AutoMigrate(&models.User{}); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Println("INFO: database migrations complete")
	}
	return db, nil
}

// GetUserByID returns nil without an error when the user does not exist.
func (s *Service) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to get user %s: %v", userID, err)
		return nil, err
	}
	return &user, nil
}

// SaveUser is used by tooling and tests; the web layer owns account writes.
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// NotifySuspension announces a suspension on the moderation channel (SUSPENSION_CHANNEL)
// so every relay process drops the user's connections. Postgres only.
func (s *Service) NotifySuspension(channel, userID string) error {
	if s.DB.Dialector.Name() != "postgres" {
		return fmt.Errorf("suspension notifications need postgres, have %s", s.DB.Dialector.Name())
	}
	return s.DB.Exec("SELECT pg_notify(?, ?)", channel, userID).Error
}
