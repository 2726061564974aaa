package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if cfg.StatsBaseURL != "http://localhost:5000" {
		t.Fatalf("StatsBaseURL = %q", cfg.StatsBaseURL)
	}
	if cfg.StatsTimeout != 10*time.Second || cfg.StatsMaxTries != 3 {
		t.Fatalf("stats timeout/tries = %s/%d", cfg.StatsTimeout, cfg.StatsMaxTries)
	}
	if cfg.Addr != ":8080" || cfg.SessionStore != StoreMemory {
		t.Fatalf("addr/store = %q/%q", cfg.Addr, cfg.SessionStore)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.SessionTTL != 2*time.Hour || cfg.PoolCacheTTL != 0 {
		t.Fatalf("ttl = %s pool ttl = %s", cfg.SessionTTL, cfg.PoolCacheTTL)
	}
	if cfg.ResultsDB != "" || cfg.RandomSeed != 0 {
		t.Fatalf("unexpected results db %q seed %d", cfg.ResultsDB, cfg.RandomSeed)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"STATS_BASE_URL":  " http://stats.internal:5000/ ",
		"STATS_MAX_TRIES": "5",
		"CORS_ORIGINS":    "http://localhost:3000, https://statwizard.app",
		"SESSION_STORE":   "Redis",
		"REDIS_ADDR":      "redis:6379",
		"SESSION_TTL":     "30m",
		"POOL_CACHE_TTL":  "1m",
		"RESULTS_DB":      "results.db",
		"RANDOM_SEED":     "99",
	})
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if cfg.StatsBaseURL != "http://stats.internal:5000" {
		t.Fatalf("StatsBaseURL = %q", cfg.StatsBaseURL)
	}
	if cfg.StatsMaxTries != 5 || cfg.SessionStore != StoreRedis || cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if strings.Join(cfg.CORSOrigins, "|") != "http://localhost:3000|https://statwizard.app" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.PoolCacheTTL != time.Minute || cfg.ResultsDB != "results.db" || cfg.RandomSeed != 99 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config should validate: %v", err)
	}
}

func TestLoadFromRejectsMalformedValues(t *testing.T) {
	if _, err := LoadFrom(map[string]string{"STATS_TIMEOUT": "soon"}); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}

func TestValidate(t *testing.T) {
	base, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.StatsBaseURL = "" }},
		{"zero timeout", func(c *Config) { c.StatsTimeout = 0 }},
		{"zero tries", func(c *Config) { c.StatsMaxTries = 0 }},
		{"unknown store", func(c *Config) { c.SessionStore = "etcd" }},
		{"redis without addr", func(c *Config) { c.SessionStore = StoreRedis; c.RedisAddr = "" }},
		{"negative pool ttl", func(c *Config) { c.PoolCacheTTL = -time.Second }},
	}

	for _, tc := range cases {
		cfg := base
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestNewRandSeeded(t *testing.T) {
	cfg := Config{RandomSeed: 7}
	a := cfg.NewRand().Int63()
	b := cfg.NewRand().Int63()
	if a != b {
		t.Fatalf("seeded sources diverged: %d vs %d", a, b)
	}

	if (Config{}).NewRand() == nil {
		t.Fatalf("expected random source for zero seed")
	}
}
