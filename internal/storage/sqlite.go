// Package storage provides device-local persistence: a SQLite key/value
// store with an in-memory fallback, and the local leaderboard cache kept on
// top of either. Uses the pure-Go modernc.org/sqlite driver to avoid CGO.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Backend is a key/value store the rest of the app can use best-effort.
type Backend interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Close() error
}

// Store is the SQLite-backed key/value store.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := ExpandPath(dbPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, logger: log.Default()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// OpenOrMemory opens the SQLite store and falls back to memory when the
// database is unavailable. The returned backend is always usable.
func OpenOrMemory(dbPath string, logger *log.Logger) Backend {
	if logger == nil {
		logger = log.Default()
	}
	store, err := Open(dbPath)
	if err != nil {
		logger.Warn("local storage unavailable, keeping data in memory", "path", dbPath, "error", err)
		return NewMemory()
	}
	store.logger = logger
	return store
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns the value stored under key. ok is false when the key is absent.
func (s *Store) Load(key string) (value string, ok bool, err error) {
	err = s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot load %q: %w", key, err)
	}
	return value, true, nil
}

// Save stores value under key, replacing any previous value.
func (s *Store) Save(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save %q: %w", key, err)
	}
	return nil
}

// Get implements core.KV. Read failures are logged and reported as absent.
func (s *Store) Get(key string) (string, bool) {
	v, ok, err := s.Load(key)
	if err != nil {
		s.logger.Warn("local read failed", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

// Set implements core.KV. Write failures are logged and dropped.
func (s *Store) Set(key, value string) {
	if err := s.Save(key, value); err != nil {
		s.logger.Warn("local write failed", "key", key, "error", err)
	}
}
