package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"marketchat/backend/internal/config"
	"marketchat/backend/internal/models"
	"marketchat/backend/internal/session"
	"marketchat/backend/internal/storage"

	"github.com/redis/go-redis/v9"
)

const usage = `Usage: admin <command> [args]

Commands:
  token <user_id> [ttl]   print a session token for local testing (default ttl 24h)
  room <user_a> <user_b>  print the pair room id two users share
  kick <user_id>          disconnect a user from every relay (postgres only)
  ban <user_id>           refuse new connections for a user and kick them
  unban <user_id>         lift a ban`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "token":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin token <user_id> [ttl]")
			os.Exit(1)
		}
		ttl := 24 * time.Hour
		if len(os.Args) > 3 {
			ttl, err = time.ParseDuration(os.Args[3])
			if err != nil {
				fmt.Println("Invalid ttl. Use a duration such as 2h or 30m.")
				os.Exit(1)
			}
		}
		token, err := session.IssueToken(cfg.SessionSecret, cfg.SessionIssuer, os.Args[2], ttl)
		if err != nil {
			log.Fatalf("Error issuing token: %v", err)
		}
		fmt.Println(token)
	case "room":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin room <user_a> <user_b>")
			os.Exit(1)
		}
		room, err := models.NewChatRoom(os.Args[2], os.Args[3])
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		fmt.Println(room.RoomID)
	case "kick":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin kick <user_id>")
			os.Exit(1)
		}
		storageSvc := openStorage(cfg)
		if err := storageSvc.NotifySuspension(cfg.SuspensionChannel, os.Args[2]); err != nil {
			log.Fatalf("Error kicking user: %v", err)
		}
		fmt.Printf("User %s has been disconnected.\n", os.Args[2])
	case "ban", "unban":
		if len(os.Args) != 3 {
			fmt.Printf("Usage: admin %s <user_id>\n", command)
			os.Exit(1)
		}
		storageSvc := openStorage(cfg)
		userID := os.Args[2]
		if command == "unban" {
			if err := storageSvc.UnbanUser(userID); err != nil {
				log.Fatalf("Error unbanning user: %v", err)
			}
			fmt.Printf("User %s has been unbanned.\n", userID)
			return
		}
		if err := storageSvc.BanUser(userID); err != nil {
			log.Fatalf("Error banning user: %v", err)
		}
		if cfg.DBDriver == "postgres" {
			if err := storageSvc.NotifySuspension(cfg.SuspensionChannel, userID); err != nil {
				log.Printf("WARNING: user banned but live connections were not kicked: %v", err)
			}
		}
		fmt.Printf("User %s has been banned.\n", userID)
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

// openStorage connects to the database, and to Redis when REDIS_ADDR is set.
func openStorage(cfg config.Config) *storage.Service {
	db, err := storage.OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return storage.NewStorageService(db, rdb)
}
