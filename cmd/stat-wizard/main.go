package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"stat-wizard/internal/cli"
	"stat-wizard/internal/config"
	"stat-wizard/internal/quiz"
	"stat-wizard/internal/quiz/sqlite"
	"stat-wizard/internal/sessionclient"
	"stat-wizard/internal/statsapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	nickname := flag.String("nickname", "", "name recorded with finished sessions")
	server := flag.String("server", "", "stat-wizard-service base URL (empty plays locally)")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP timeout for the session service")
	limit := flag.Int("limit", 10, "rows shown by history and leaderboard")
	flag.StringVar(&cfg.StatsBaseURL, "stats-url", cfg.StatsBaseURL, "player pool backend base URL (local mode)")
	flag.StringVar(&cfg.ResultsDB, "results-db", cfg.ResultsDB, "SQLite file for result history (local mode)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [play|history|leaderboard]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "play"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	if err := run(context.Background(), command, cfg, *nickname, *server, *timeout, *limit); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, cfg config.Config, nickname, server string, timeout time.Duration, limit int) error {
	var (
		controller cli.Controller
		history    quiz.ResultReader
	)

	if server != "" {
		client := sessionclient.NewHTTPClient(server, &http.Client{Timeout: timeout})
		controller, history = client, client
	} else {
		if err := cfg.Validate(); err != nil {
			return err
		}

		var recorder quiz.ResultRecorder
		if cfg.ResultsDB != "" {
			store, err := sqlite.NewSQLiteStore(cfg.ResultsDB)
			if err != nil {
				return err
			}
			defer store.Close()
			history, recorder = store, store
		}

		stats := statsapi.NewClient(cfg.StatsBaseURL, &http.Client{Timeout: cfg.StatsTimeout},
			statsapi.WithMaxTries(cfg.StatsMaxTries))
		service := quiz.NewService(quiz.Config{
			Pool:    stats,
			Logos:   stats,
			Results: recorder,
			Rand:    cfg.NewRand(),
		})
		defer service.Close()
		controller = service
	}

	switch command {
	case "play":
		return cli.Run(ctx, os.Stdin, os.Stdout, controller, cli.Config{Nickname: nickname})
	case "history":
		if history == nil {
			return quiz.ErrHistoryDisabled
		}
		sessions, err := history.ListRecent(ctx, limit)
		if err != nil {
			return err
		}
		cli.PrintHistory(os.Stdout, sessions, time.Now())
		return nil
	case "leaderboard":
		if history == nil {
			return quiz.ErrHistoryDisabled
		}
		entries, err := history.GetLeaderboard(ctx, limit)
		if err != nil {
			return err
		}
		cli.PrintLeaderboard(os.Stdout, entries, time.Now())
		return nil
	default:
		return fmt.Errorf("unknown command %q (want play, history or leaderboard)", command)
	}
}
