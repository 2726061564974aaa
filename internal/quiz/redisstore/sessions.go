package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stat-wizard/internal/quiz"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "session:"
	// DefaultSessionTTL bounds how long an idle session survives.
	DefaultSessionTTL = quiz.DefaultSessionTTL
)

// Config holds configuration for the Redis-backed stores
type Config struct {
	// Redis client
	RedisClient *redis.Client
	// TTL applied on every write. Zero means DefaultSessionTTL for sessions
	// and disables caching for the pool cache.
	TTL time.Duration
}

// SessionStore implements quiz.SessionRepository using Redis. Each session is
// a JSON blob whose TTL is refreshed on every write.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a new Redis-backed session repository
func NewSessionStore(cfg *Config) (*SessionStore, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{client: cfg.RedisClient, ttl: ttl}, nil
}

// SaveSession persists a session
func (s *SessionStore) SaveSession(ctx context.Context, session quiz.Session) error {
	if session.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKey(session.ID)
	if session.Version == 0 {
		if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	}

	// Only store over the version this one was derived from.
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if stored != session.Version-1 {
			return quiz.ErrSessionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}, key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, quiz.ErrSessionConflict), errors.Is(err, redis.TxFailedErr):
		return quiz.ErrSessionConflict
	default:
		return fmt.Errorf("failed to save session: %w", err)
	}
}

func storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, error) {
	payload, err := tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read session: %w", err)
	}

	var stored struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(payload, &stored); err != nil {
		return 0, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return stored.Version, nil
}

// GetSession retrieves a session by ID
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (quiz.Session, error) {
	if sessionID == "" {
		return quiz.Session{}, quiz.ErrSessionNotFound
	}

	payload, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return quiz.Session{}, quiz.ErrSessionNotFound
		}
		return quiz.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	var session quiz.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return quiz.Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return session, nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func checkConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}
