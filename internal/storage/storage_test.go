package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"marketchat/backend/internal/config"
	"marketchat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteService(t *testing.T) *Service {
	t.Helper()
	cfg := config.Default()
	cfg.DatabaseDSN = filepath.Join(t.TempDir(), "market.db")
	cfg.DBAutoMigrate = true

	db, err := OpenDatabase(cfg)
	require.NoError(t, err)
	return NewStorageService(db, nil)
}

// newRedisService needs a disposable Redis at TEST_REDIS_ADDR; the database is flushed.
func newRedisService(t *testing.T) *Service {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	require.NoError(t, rdb.FlushDB(context.Background()).Err())
	t.Cleanup(func() { rdb.Close() })

	s := newSQLiteService(t)
	s.Redis = rdb
	return s
}

func TestOpenDatabase_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.DBDriver = "mysql"
	_, err := OpenDatabase(cfg)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestGetUserByID(t *testing.T) {
	s := newSQLiteService(t)
	require.NoError(t, s.SaveUser(&models.User{ID: "u1", Username: "alice", IsActive: true}))

	user, err := s.GetUserByID("u1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.CanChat())

	missing, err := s.GetUserByID("nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetUserByID_Suspended(t *testing.T) {
	s := newSQLiteService(t)
	user := &models.User{ID: "u2", Username: "mallory", IsActive: true}
	require.NoError(t, s.SaveUser(user))
	user.IsActive = false
	require.NoError(t, s.SaveUser(user))

	got, err := s.GetUserByID("u2")
	require.NoError(t, err)
	assert.False(t, got.CanChat())
}

func TestNotifySuspension_RequiresPostgres(t *testing.T) {
	s := newSQLiteService(t)
	assert.ErrorContains(t, s.NotifySuspension(config.DefaultSuspendTopic, "u1"), "postgres")
}

func TestWithoutRedis(t *testing.T) {
	s := newSQLiteService(t)

	banned, err := s.IsUserBanned("u1")
	assert.NoError(t, err)
	assert.False(t, banned)

	assert.NoError(t, s.MarkOnline("u1"))
	assert.NoError(t, s.MarkOffline("u1"))
	assert.NoError(t, s.ResetPresence())

	online, err := s.OnlineUsers()
	assert.NoError(t, err)
	assert.Empty(t, online)

	assert.Error(t, s.BanUser("u1"))
}

func TestSuspensionListener_Handle(t *testing.T) {
	var got []string
	l := NewSuspensionListener("", config.DefaultSuspendTopic, func(userID string) {
		got = append(got, userID)
	})

	l.handle(" u1\n")
	l.handle("   ")
	l.handle("u2")

	assert.Equal(t, []string{"u1", "u2"}, got)
}

func TestBanFlag(t *testing.T) {
	s := newRedisService(t)

	require.NoError(t, s.BanUser("u1"))
	banned, err := s.IsUserBanned("u1")
	require.NoError(t, err)
	assert.True(t, banned)

	require.NoError(t, s.UnbanUser("u1"))
	banned, err = s.IsUserBanned("u1")
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestPresence_CountsConnections(t *testing.T) {
	s := newRedisService(t)
	sub := s.Redis.Subscribe(s.Ctx, config.PresenceChannel)
	defer sub.Close()
	_, err := sub.Receive(s.Ctx)
	require.NoError(t, err)

	require.NoError(t, s.MarkOnline("alice"))
	require.NoError(t, s.MarkOnline("alice"))
	require.NoError(t, s.MarkOffline("alice"))

	online, err := s.OnlineUsers()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, online)

	require.NoError(t, s.MarkOffline("alice"))
	online, err = s.OnlineUsers()
	require.NoError(t, err)
	assert.Empty(t, online)

	// Only the first open and the last close are announced.
	var events []PresenceEvent
	for range 2 {
		select {
		case msg := <-sub.Channel():
			var ev PresenceEvent
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
			events = append(events, ev)
		case <-time.After(2 * time.Second):
			t.Fatal("presence event not published")
		}
	}
	assert.Equal(t, []PresenceEvent{{UserID: "alice", Online: true}, {UserID: "alice", Online: false}}, events)
}

func TestResetPresence(t *testing.T) {
	s := newRedisService(t)
	require.NoError(t, s.MarkOnline("bob"))
	require.NoError(t, s.ResetPresence())

	online, err := s.OnlineUsers()
	require.NoError(t, err)
	assert.Empty(t, online)
}

// Needs a disposable Postgres at TEST_POSTGRES_DSN.
func TestNotifySuspension_UsesConfiguredChannel(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	cfg := config.Default()
	cfg.DBDriver = "postgres"
	cfg.DatabaseDSN = dsn
	db, err := OpenDatabase(cfg)
	require.NoError(t, err)
	s := NewStorageService(db, nil)

	const channel = "relay_test_suspensions"
	got := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewSuspensionListener(dsn, channel, func(userID string) { got <- userID }).Run(ctx)

	// LISTEN is asynchronous; keep notifying until the listener is subscribed.
	require.Eventually(t, func() bool {
		require.NoError(t, s.NotifySuspension(channel, "mallory"))
		select {
		case userID := <-got:
			return userID == "mallory"
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)
}
