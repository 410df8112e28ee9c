package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"inspeksi-backend/shared/config"
)

// ErrNotFound is returned when no live session exists for a session id.
// A cryptographically valid token whose session is gone is a revoked token.
var ErrNotFound = errors.New("session not found")

// Session mirrors the token claims into the cache. It is the source of truth
// for whether a token is still live; deleting the entry revokes the token.
type Session struct {
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	OrganizationID string    `json:"organization_id,omitempty"`
	RoleID         string    `json:"role_id,omitempty"`
	RoleLevel      int       `json:"role_level"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Store is the session cache contract. The Redis implementation backs
// production; the memory implementation backs tests.
type Store interface {
	Set(ctx context.Context, sess *Session, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps sessions under session:<id> with a TTL.
type RedisStore struct {
	client *redis.Client
}

var globalStore Store

// InitSessionStore connects the global store to Redis
func InitSessionStore() error {
	cfg := config.GetConfig()

	redisDB, err := strconv.Atoi(cfg.RedisDB)
	if err != nil {
		log.Printf("❌ Invalid Redis DB number: %s, using default 0", cfg.RedisDB)
		redisDB = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       redisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	globalStore = &RedisStore{client: client}

	log.Printf("✅ Session store initialized - %s:%s DB:%d", cfg.RedisHost, cfg.RedisPort, redisDB)
	return nil
}

// GetStore returns the global session store
func GetStore() Store {
	if globalStore == nil {
		if err := InitSessionStore(); err != nil {
			log.Printf("❌ Failed to initialize session store: %v", err)
			return nil
		}
	}
	return globalStore
}

// SetStore swaps the global store (used by tests)
func SetStore(s Store) {
	globalStore = s
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func (s *RedisStore) Set(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(sess.SessionID), data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	result, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(result), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

// Close closes the underlying Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
