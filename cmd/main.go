package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"marketchat/backend/internal/api/handler"
	"marketchat/backend/internal/api/middleware"
	"marketchat/backend/internal/chathub"
	"marketchat/backend/internal/config"
	"marketchat/backend/internal/storage"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := storage.OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	if cfg.RedisAddr == "" {
		log.Println("WARNING: REDIS_ADDR not set, presence and ban checks disabled")
		return db, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	log.Println("Database and Redis connections established.")
	return db, rdb
}

func main() {
	log.Println("Starting marketplace chat relay...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	// This process is the only relay, so counters from a previous run are stale.
	if err := s.ResetPresence(); err != nil {
		log.Printf("WARNING: failed to reset presence: %v", err)
	}

	var presence chathub.PresenceTracker
	if rdb != nil {
		presence = s
	}
	hub := chathub.NewManagerService(presence, cfg)

	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	if cfg.DBDriver == "postgres" && cfg.SuspensionChannel != "" {
		listener := storage.NewSuspensionListener(cfg.DatabaseDSN, cfg.SuspensionChannel, hub.DisconnectUser)
		go func() {
			if err := listener.Run(hubCtx); err != nil {
				log.Printf("ERROR: suspension listener stopped: %v", err)
			}
		}()
	}

	upgrades := middleware.NewIPRateLimiter(rate.Limit(cfg.UpgradeRate), cfg.UpgradeBurst)
	go upgrades.Run(hubCtx)

	r := gin.Default()
	handler.NewHandler(hub, s, cfg).Register(r, upgrades)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	go func() {
		log.Printf("INFO: listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Operations run concurrently, so the ordered teardown lives in one of them:
	// stop accepting upgrades, close every socket, then release the stores.
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"relay": func(ctx context.Context) error {
				var errs []error
				if err := server.Shutdown(ctx); err != nil {
					errs = append(errs, err)
				}

				stopHub()
				select {
				case <-hub.Done():
				case <-ctx.Done():
					errs = append(errs, ctx.Err())
				}

				if rdb != nil {
					if err := s.ResetPresence(); err != nil {
						errs = append(errs, err)
					}
					if err := rdb.Close(); err != nil {
						errs = append(errs, err)
					}
				}
				if sqlDB, err := db.DB(); err == nil {
					if err := sqlDB.Close(); err != nil {
						errs = append(errs, err)
					}
				}
				return errors.Join(errs...)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Relay exited with code: %d", exitCode)
	os.Exit(exitCode)
}
