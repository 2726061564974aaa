package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"stat-wizard/internal/quiz"

	"github.com/redis/go-redis/v9"
)

const (
	poolKey           = "pool:latest"
	poolFetchedAtKey  = "pool:latest:fetched_at"
	teamLogosPrefix   = "team_logos:"
	DefaultLogoTTL    = 24 * time.Hour
	fetchedTimeLayout = time.RFC3339Nano
)

// PoolCache wraps a player pool source and keeps the last pool in Redis for
// TTL. Redis failures are logged and fall through to the source.
type PoolCache struct {
	client *redis.Client
	source quiz.PoolSource
	ttl    time.Duration
}

// NewPoolCache creates a pool cache in front of source. A zero TTL returns a
// cache that always goes to the source.
func NewPoolCache(cfg *Config, source quiz.PoolSource) (*PoolCache, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errors.New("pool source cannot be nil")
	}
	return &PoolCache{client: cfg.RedisClient, source: source, ttl: cfg.TTL}, nil
}

// FetchPool returns the cached pool when present, otherwise fetches and stores it
func (c *PoolCache) FetchPool(ctx context.Context) (quiz.Pool, error) {
	if c.ttl <= 0 {
		return c.source.FetchPool(ctx)
	}

	payload, err := c.client.Get(ctx, poolKey).Bytes()
	switch {
	case err == nil:
		var pool quiz.Pool
		if err := json.Unmarshal(payload, &pool); err == nil && len(pool) > 0 {
			return withIDs(pool), nil
		}
		log.Printf("discarding unreadable cached player pool")
	case !errors.Is(err, redis.Nil):
		log.Printf("read cached player pool: %v", err)
	}

	pool, err := c.source.FetchPool(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.store(ctx, pool); err != nil {
		log.Printf("cache player pool: %v", err)
	}
	return pool, nil
}

// FetchedAt reports when the cached pool was stored. ok is false when
// nothing is cached.
func (c *PoolCache) FetchedAt(ctx context.Context) (time.Time, bool, error) {
	raw, err := c.client.Get(ctx, poolFetchedAtKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	fetchedAt, err := time.Parse(fetchedTimeLayout, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse pool fetch time: %w", err)
	}
	return fetchedAt, true, nil
}

func (c *PoolCache) store(ctx context.Context, pool quiz.Pool) error {
	if len(pool) == 0 {
		return nil
	}
	payload, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("failed to marshal pool: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, poolKey, payload, c.ttl)
	pipe.Set(ctx, poolFetchedAtKey, time.Now().UTC().Format(fetchedTimeLayout), c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// LogoCache wraps a team logo source and caches results per game. Logos of a
// finished game do not change, so entries live for a day.
type LogoCache struct {
	client *redis.Client
	source quiz.LogoSource
	ttl    time.Duration
}

// NewLogoCache creates a logo cache in front of source
func NewLogoCache(cfg *Config, source quiz.LogoSource) (*LogoCache, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errors.New("logo source cannot be nil")
	}
	return &LogoCache{client: cfg.RedisClient, source: source, ttl: DefaultLogoTTL}, nil
}

func (c *LogoCache) FetchTeamLogos(ctx context.Context, gameID string) (quiz.TeamLogos, error) {
	key := teamLogosPrefix + strings.TrimSpace(gameID)

	fields, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		log.Printf("read cached team logos for game %s: %v", gameID, err)
	} else if len(fields) > 0 {
		return quiz.TeamLogos{Home: fields["home"], Away: fields["away"]}, nil
	}

	logos, err := c.source.FetchTeamLogos(ctx, gameID)
	if err != nil {
		return quiz.TeamLogos{}, err
	}
	if logos.IsZero() {
		return logos, nil
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, "home", logos.Home, "away", logos.Away)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("cache team logos for game %s: %v", gameID, err)
	}
	return logos, nil
}

func withIDs(pool quiz.Pool) quiz.Pool {
	for id, record := range pool {
		record.ID = id
		pool[id] = record
	}
	return pool
}
