package config

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds settings shared by the CLI and the session service. Values
// come from the environment; each main lets flags override them.
type Config struct {
	StatsBaseURL  string        `env:"STATS_BASE_URL"  envDefault:"http://localhost:5000"`
	StatsTimeout  time.Duration `env:"STATS_TIMEOUT"   envDefault:"10s"`
	StatsMaxTries uint          `env:"STATS_MAX_TRIES" envDefault:"3"`

	Addr        string   `env:"ADDR"         envDefault:":8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	SessionStore  string        `env:"SESSION_STORE"  envDefault:"memory"`
	RedisAddr     string        `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	SessionTTL    time.Duration `env:"SESSION_TTL"    envDefault:"2h"`
	PoolCacheTTL  time.Duration `env:"POOL_CACHE_TTL" envDefault:"0s"`

	ResultsDB  string `env:"RESULTS_DB"`
	RandomSeed int64  `env:"RANDOM_SEED" envDefault:"0"`
}

// Load reads an optional .env file from the working directory and then parses
// the process environment. Variables already set win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.normalize(), nil
}

// LoadFrom parses configuration from the given variables instead of the
// process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.normalize(), nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.StatsBaseURL) == "" {
		return errors.New("STATS_BASE_URL must not be empty")
	}
	if c.StatsTimeout <= 0 {
		return errors.New("STATS_TIMEOUT must be positive")
	}
	if c.StatsMaxTries == 0 {
		return errors.New("STATS_MAX_TRIES must be at least 1")
	}
	switch c.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return errors.New("REDIS_ADDR is required when SESSION_STORE=redis")
		}
		if c.SessionTTL <= 0 {
			return errors.New("SESSION_TTL must be positive when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q (want %s or %s)", c.SessionStore, StoreMemory, StoreRedis)
	}
	if c.PoolCacheTTL < 0 {
		return errors.New("POOL_CACHE_TTL must not be negative")
	}
	return nil
}

// NewRand returns the random source for player selection. A zero seed draws
// one from crypto/rand.
func (c Config) NewRand() *rand.Rand {
	seed := c.RandomSeed
	if seed == 0 {
		var buf [8]byte
		if _, err := crand.Read(buf[:]); err == nil {
			seed = int64(binary.LittleEndian.Uint64(buf[:]))
		} else {
			seed = time.Now().UnixNano()
		}
	}
	return rand.New(rand.NewSource(seed))
}

func (c Config) normalize() Config {
	c.StatsBaseURL = strings.TrimRight(strings.TrimSpace(c.StatsBaseURL), "/")
	c.SessionStore = strings.ToLower(strings.TrimSpace(c.SessionStore))
	origins := make([]string, 0, len(c.CORSOrigins))
	for _, origin := range c.CORSOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	c.CORSOrigins = origins
	return c
}
