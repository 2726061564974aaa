package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"stat-wizard/internal/quiz"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// RecordSession stores a finished session. Each session id is written at most
// once; recording the same session again leaves the first row unchanged.
func (s *SQLiteStore) RecordSession(ctx context.Context, session quiz.Session) error {
	if strings.TrimSpace(session.ID) == "" {
		return errors.New("session id is required")
	}
	if !session.IsDone() {
		return quiz.ErrNotGraded
	}

	roundsJSON, err := json.Marshal(session.Results)
	if err != nil {
		return err
	}

	finishedAt := session.UpdatedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO results (session_id, nickname, nickname_norm, score, max_score, rounds_json, finished_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		strings.TrimSpace(session.Nickname),
		normalizeNickname(session.Nickname),
		session.Score,
		session.MaxScore(),
		string(roundsJSON),
		finishedAt.UTC().UnixNano(),
	)
	return err
}

// ListRecent returns finished sessions, newest first.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]quiz.SessionSummary, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT session_id, nickname, score, max_score, rounds_json, finished_at_unix
		 FROM results
		 ORDER BY finished_at_unix DESC, session_id ASC
		 LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]quiz.SessionSummary, 0)
	for rows.Next() {
		var (
			summary    quiz.SessionSummary
			roundsJSON string
			finishedNs int64
		)
		if err := rows.Scan(&summary.SessionID, &summary.Nickname, &summary.Score, &summary.MaxScore, &roundsJSON, &finishedNs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(roundsJSON), &summary.Results); err != nil {
			return nil, err
		}
		summary.FinishedAt = time.Unix(0, finishedNs).UTC()
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}

// GetLeaderboard ranks nicknames by their best session score. Ties go to
// whoever reached that score first, then to the nickname. Anonymous sessions
// are not ranked.
func (s *SQLiteStore) GetLeaderboard(ctx context.Context, limit int) ([]quiz.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`WITH best AS (
			SELECT nickname_norm,
			       MAX(score) AS best_score,
			       COUNT(*) AS session_count,
			       MAX(finished_at_unix) AS last_played
			FROM results
			WHERE nickname_norm <> ''
			GROUP BY nickname_norm
		 )
		 SELECT
			(SELECT r.nickname FROM results r
			 WHERE r.nickname_norm = b.nickname_norm
			 ORDER BY r.finished_at_unix DESC LIMIT 1) AS display_name,
			b.best_score,
			b.session_count,
			b.last_played,
			(SELECT MIN(r.finished_at_unix) FROM results r
			 WHERE r.nickname_norm = b.nickname_norm AND r.score = b.best_score) AS best_at
		 FROM best b
		 ORDER BY b.best_score DESC, best_at ASC, b.nickname_norm ASC
		 LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leaderboard := make([]quiz.LeaderboardEntry, 0)
	for rows.Next() {
		var (
			entry        quiz.LeaderboardEntry
			lastPlayedNs int64
			bestAtNs     int64
		)
		if err := rows.Scan(&entry.Nickname, &entry.BestScore, &entry.SessionCount, &lastPlayedNs, &bestAtNs); err != nil {
			return nil, err
		}
		entry.LastPlayedAt = time.Unix(0, lastPlayedNs).UTC()
		leaderboard = append(leaderboard, entry)
	}

	return leaderboard, rows.Err()
}

func normalizeNickname(nickname string) string {
	return strings.ToLower(strings.TrimSpace(nickname))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
