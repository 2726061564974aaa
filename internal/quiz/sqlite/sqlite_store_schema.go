package sqlite

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS results (
			session_id TEXT PRIMARY KEY,
			nickname TEXT NOT NULL,
			nickname_norm TEXT NOT NULL,
			score INTEGER NOT NULL,
			max_score INTEGER NOT NULL,
			rounds_json TEXT NOT NULL,
			finished_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_finished_at ON results(finished_at_unix DESC);`,
		// Leaderboard groups by nickname and ranks on the best score.
		`CREATE INDEX IF NOT EXISTS idx_results_nickname_score ON results(nickname_norm, score DESC);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
