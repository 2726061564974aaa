package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const (
	DefaultPath = "stat-wizard.db"

	// schemaVersion is stored in PRAGMA user_version.
	schemaVersion = 1
)

var ErrNewerSchema = errors.New("results database was written by a newer stat-wizard")

// SQLiteStore keeps the history of finished sessions. The CLI and the
// service may share one file, so it runs in WAL mode where readers of the
// leaderboard do not block a session being recorded.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := applyPragmas(ctx, db, path); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, path string) error {
	pragmas := []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA synchronous = NORMAL;`,
	}
	// In-memory databases have no journal file to share.
	if path != ":memory:" && !strings.Contains(path, "mode=memory") {
		pragmas = append(pragmas, `PRAGMA journal_mode = WAL;`)
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("sqlite %s: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}
	return nil
}

// migrate creates the results schema and stamps its version. Files from a
// newer build are refused rather than read with the wrong layout.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&version); err != nil {
		return err
	}
	if version > schemaVersion {
		return fmt.Errorf("%w: schema %d, supported %d", ErrNewerSchema, version, schemaVersion)
	}

	if err := s.initSchema(ctx); err != nil {
		return err
	}
	if version < schemaVersion {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
