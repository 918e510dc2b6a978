// Package store is the local cache: credentials, the last fetched profile
// and the completed-lesson set live in a single-user SQLite database so
// the client can render a dashboard and skill tree before the first
// network round trip, and keep the session across restarts.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite handle and tags everything written during this
// process run with one launch ID.
type Store struct {
	db       *sql.DB
	launchID string
}

// Open connects to the SQLite database at dsn, applies the recommended
// pragmas and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, launchID: uuid.NewString()}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// LaunchID identifies this process run in the activity log.
func (s *Store) LaunchID() string {
	return s.launchID
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tokens returns the credential repository.
func (s *Store) Tokens() TokenRepo {
	return &tokenRepo{db: s.db}
}

// Profile returns the cached-profile repository.
func (s *Store) Profile() ProfileRepo {
	return &profileRepo{db: s.db}
}

// Progress returns the completed-lesson repository.
func (s *Store) Progress() ProgressRepo {
	return &progressRepo{db: s.db}
}

// Activity returns the activity log repository.
func (s *Store) Activity() ActivityRepo {
	return &activityRepo{db: s.db, launchID: s.launchID}
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS credentials (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS profile (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			payload TEXT NOT NULL,
			fetched_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS completed_lessons (
			lesson_id INTEGER PRIMARY KEY,
			completed_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS activity_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			launch_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. BILIMGO_DB environment variable
// 2. $XDG_DATA_HOME/bilimgo/bilimgo.db
// 3. ~/.local/share/bilimgo/bilimgo.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("BILIMGO_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "bilimgo", "bilimgo.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
