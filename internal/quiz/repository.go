package quiz

//go:generate mockgen -package=mocks -destination=mocks/mock_sources.go stat-wizard/internal/quiz PoolSource,LogoSource,ResultRecorder

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrEmptyPool           = errors.New("player pool is empty")
	ErrInsufficientPlayers = errors.New("player pool has fewer than 5 players")
	ErrPoolUnavailable     = errors.New("player pool unavailable")
	ErrMissingPlayerData   = errors.New("round has no player data")
	ErrUnknownStat         = errors.New("stat is not part of this round")
	ErrInputLocked         = errors.New("round is already graded")
	ErrNotGraded           = errors.New("round has not been graded")
	ErrIntroActive         = errors.New("intro has not been dismissed")
	ErrSessionDone         = errors.New("session is finished")
	ErrHistoryDisabled     = errors.New("result history is not configured")
	ErrSessionConflict     = errors.New("session was changed by another request")
)

type SessionSummary struct {
	SessionID  string        `json:"session_id"`
	Nickname   string        `json:"nickname"`
	Score      int           `json:"score"`
	MaxScore   int           `json:"max_score"`
	FinishedAt time.Time     `json:"finished_at"`
	Results    []RoundResult `json:"results,omitempty"`
}

type LeaderboardEntry struct {
	Nickname     string    `json:"nickname"`
	BestScore    int       `json:"best_score"`
	SessionCount int       `json:"session_count"`
	LastPlayedAt time.Time `json:"last_played_at"`
}

type PoolSource interface {
	FetchPool(ctx context.Context) (Pool, error)
}

type LogoSource interface {
	FetchTeamLogos(ctx context.Context, gameID string) (TeamLogos, error)
}

// SessionRepository stores sessions. SaveSession is a compare-and-set: a
// session with Version n is only stored when the stored copy has Version
// n-1 (or is absent and n is 1), otherwise it fails with ErrSessionConflict.
// Version 0 is stored unconditionally.
type SessionRepository interface {
	SaveSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, sessionID string) (Session, error)
}

type ResultRecorder interface {
	RecordSession(ctx context.Context, session Session) error
}

type ResultReader interface {
	ListRecent(ctx context.Context, limit int) ([]SessionSummary, error)
	GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// Notifier receives every session view produced by a transition.
type Notifier interface {
	Publish(view View)
}
