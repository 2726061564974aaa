package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stat-wizard/internal/config"
	"stat-wizard/internal/httpapi"
	"stat-wizard/internal/quiz"
	"stat-wizard/internal/quiz/redisstore"
	"stat-wizard/internal/quiz/sqlite"
	"stat-wizard/internal/statsapi"

	"github.com/dustin/go-humanize"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&cfg.StatsBaseURL, "stats-url", cfg.StatsBaseURL, "player pool backend base URL")
	flag.StringVar(&cfg.SessionStore, "store", cfg.SessionStore, "session store: memory or redis")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for the redis session store")
	flag.StringVar(&cfg.ResultsDB, "results-db", cfg.ResultsDB, "SQLite file for result history (empty disables history)")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("stat-wizard-service: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	stats := statsapi.NewClient(cfg.StatsBaseURL, &http.Client{Timeout: cfg.StatsTimeout},
		statsapi.WithMaxTries(cfg.StatsMaxTries))

	var (
		pool     quiz.PoolSource        = stats
		logos    quiz.LogoSource        = stats
		sessions quiz.SessionRepository = quiz.NewMemoryStoreWithTTL(cfg.SessionTTL)
	)

	if cfg.SessionStore == config.StoreRedis {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()

		sessionStore, err := redisstore.NewSessionStore(&redisstore.Config{RedisClient: client, TTL: cfg.SessionTTL})
		if err != nil {
			return err
		}
		poolCache, err := redisstore.NewPoolCache(&redisstore.Config{RedisClient: client, TTL: cfg.PoolCacheTTL}, stats)
		if err != nil {
			return err
		}
		logoCache, err := redisstore.NewLogoCache(&redisstore.Config{RedisClient: client}, stats)
		if err != nil {
			return err
		}
		sessions, pool, logos = sessionStore, poolCache, logoCache

		if fetchedAt, ok, err := poolCache.FetchedAt(ctx); err != nil {
			log.Printf("read player pool cache: %v", err)
		} else if ok {
			log.Printf("cached player pool from %s", humanize.Time(fetchedAt))
		}
		log.Printf("sessions stored in redis at %s (ttl %s)", cfg.RedisAddr, cfg.SessionTTL)
	}

	var (
		history  quiz.ResultReader
		recorder quiz.ResultRecorder
	)
	if cfg.ResultsDB != "" {
		store, err := sqlite.NewSQLiteStore(cfg.ResultsDB)
		if err != nil {
			return err
		}
		defer store.Close()
		history, recorder = store, store
		log.Printf("result history in %s", cfg.ResultsDB)
	}

	hub := httpapi.NewHub()
	defer hub.Close()

	service := quiz.NewService(quiz.Config{
		Pool:     pool,
		Logos:    logos,
		Sessions: sessions,
		Results:  recorder,
		Notifier: hub,
		Rand:     cfg.NewRand(),
	})
	defer service.Close()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(httpapi.NewAPI(service, history, hub), httpapi.RouterConfig{CORSOrigins: cfg.CORSOrigins}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("stat-wizard-service listening on %s (players from %s)", cfg.Addr, cfg.StatsBaseURL)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
