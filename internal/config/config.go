package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the relay process reads from the environment.
type Config struct {
	// Server
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Marketplace database (owned by the web layer, read here)
	DBDriver      string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseDSN   string `env:"DATABASE_DSN" envDefault:"market.db"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`

	// Redis is optional; presence and ban checks are skipped without it.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Session assertion from the web layer
	SessionSecret string `env:"SESSION_SECRET"`
	SessionIssuer string `env:"SESSION_ISSUER" envDefault:"market-web"`

	// WebSocket
	SendBufferSize    int           `env:"SEND_BUFFER_SIZE" envDefault:"256"`
	MaxMessageSize    int64         `env:"MAX_MESSAGE_SIZE" envDefault:"4096"`
	WriteWait         time.Duration `env:"WRITE_WAIT" envDefault:"10s"`
	PongWait          time.Duration `env:"PONG_WAIT" envDefault:"60s"`
	SlowConsumerLimit int           `env:"SLOW_CONSUMER_LIMIT" envDefault:"32"`

	// Rate limiting, in events per second. 0 disables a limit.
	EventRate    float64 `env:"EVENT_RATE" envDefault:"10"`
	EventBurst   int     `env:"EVENT_BURST" envDefault:"20"`
	UpgradeRate  float64 `env:"UPGRADE_RATE" envDefault:"5"`
	UpgradeBurst int     `env:"UPGRADE_BURST" envDefault:"10"`

	// Moderation feed
	SuspensionChannel string `env:"SUSPENSION_CHANNEL" envDefault:"account_suspended"`

	PresenceBuffer int `env:"PRESENCE_BUFFER" envDefault:"1024"`
}

// Default returns the configuration used when nothing is set in the environment.
// SessionSecret stays empty and must be supplied by the caller.
func Default() Config {
	return Config{
		Port:              "8080",
		ShutdownTimeout:   15 * time.Second,
		DBDriver:          "sqlite",
		DatabaseDSN:       "market.db",
		SessionIssuer:     "market-web",
		SendBufferSize:    DefaultSendBufferSize,
		MaxMessageSize:    DefaultMaxMessageSize,
		WriteWait:         DefaultWriteWait,
		PongWait:          DefaultPongWait,
		SlowConsumerLimit: DefaultSlowConsumerLimit,
		EventRate:         10,
		EventBurst:        20,
		UpgradeRate:       5,
		UpgradeBurst:      10,
		SuspensionChannel: DefaultSuspendTopic,
		PresenceBuffer:    1024,
	}
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: no .env file loaded, using process environment")
	}
	return Parse()
}

// Parse parses the current process environment without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the relay cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	if c.SendBufferSize <= 0 {
		errs = append(errs, errors.New("SEND_BUFFER_SIZE must be positive"))
	}
	if c.MaxMessageSize <= 0 {
		errs = append(errs, errors.New("MAX_MESSAGE_SIZE must be positive"))
	}
	if c.PongWait <= 0 || c.WriteWait <= 0 {
		errs = append(errs, errors.New("PONG_WAIT and WRITE_WAIT must be positive"))
	}
	if c.EventRate < 0 || c.UpgradeRate < 0 {
		errs = append(errs, errors.New("EVENT_RATE and UPGRADE_RATE must not be negative"))
	}
	if c.SlowConsumerLimit <= 0 {
		errs = append(errs, errors.New("SLOW_CONSUMER_LIMIT must be positive"))
	}
	return errors.Join(errs...)
}

// OriginAllowed reports whether a browser origin may open a socket.
// An empty allowlist or a "*" entry admits every origin; an empty Origin header is same-origin.
func (c Config) OriginAllowed(origin string) bool {
	if origin == "" || len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
