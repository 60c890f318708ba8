// Package sqlitestore implements remote.Store on top of a SQLite database.
// It backs the api server in single-host deployments and the test suites.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vovakirdan/retroplay/internal/remote"
)

//go:embed schema.sql
var schema string

// Store is a SQLite-backed remote.Store.
type Store struct {
	db *sql.DB
}

var _ remote.Store = (*Store)(nil)

// Open opens (or creates) the database at path and applies the schema.
// Pass ":memory:" for a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertUser inserts the user or refreshes its display name, and returns
// the numeric id.
func (s *Store) UpsertUser(ctx context.Context, stableID, displayName string) (int64, error) {
	if err := remote.ValidateStableID(stableID); err != nil {
		return 0, err
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (stable_id, display_name) VALUES (?, ?)
		ON CONFLICT(stable_id) DO UPDATE SET
			display_name = CASE WHEN excluded.display_name <> '' THEN excluded.display_name ELSE users.display_name END,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id`, stableID, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert user: %w", err)
	}
	return id, nil
}

// EnsureProfile creates a zeroed profile row for userID if it is missing.
func (s *Store) EnsureProfile(ctx context.Context, userID int64) error {
	if err := remote.ValidateUserID(userID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id) VALUES (?) ON CONFLICT(user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	return nil
}

// GetProfile returns remote.ErrNotFound when userID has no profile.
func (s *Store) GetProfile(ctx context.Context, userID int64) (remote.Profile, error) {
	p := remote.Profile{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT xp, total_games, total_score FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.XP, &p.TotalGames, &p.TotalScore)
	if errors.Is(err, sql.ErrNoRows) {
		return remote.Profile{}, remote.ErrNotFound
	}
	if err != nil {
		return remote.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// GetGameScore returns nil, nil when the user has not played gameKey.
func (s *Store) GetGameScore(ctx context.Context, userID int64, gameKey string) (*remote.GameScore, error) {
	gs := remote.GameScore{UserID: userID, GameKey: gameKey}
	err := s.db.QueryRowContext(ctx,
		`SELECT last_score, best_score FROM game_scores WHERE user_id = ? AND game_key = ?`, userID, gameKey).
		Scan(&gs.LastScore, &gs.BestScore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game score: %w", err)
	}
	return &gs, nil
}

// UpsertGameScore stores lastScore and keeps the larger of the stored and
// given best scores.
func (s *Store) UpsertGameScore(ctx context.Context, userID int64, gameKey string, lastScore, bestScore int64) error {
	if err := remote.ValidateUserID(userID); err != nil {
		return err
	}
	if err := remote.ValidateScores(lastScore, bestScore); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO game_scores (user_id, game_key, last_score, best_score) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, game_key) DO UPDATE SET
			last_score = excluded.last_score,
			best_score = MAX(game_scores.best_score, excluded.best_score),
			updated_at = CURRENT_TIMESTAMP`,
		userID, gameKey, lastScore, bestScore)
	if err != nil {
		return fmt.Errorf("upsert game score: %w", err)
	}
	return nil
}

// IncrementProfileStats applies one finished session to the profile. The
// submission row and the increment share a transaction, so a replayed
// submissionID leaves the profile untouched.
func (s *Store) IncrementProfileStats(ctx context.Context, userID int64, submissionID string, xpDelta, scoreDelta int64) error {
	if err := remote.ValidateUserID(userID); err != nil {
		return err
	}
	if err := remote.ValidateIncrement(submissionID, xpDelta, scoreDelta); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin increment: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO submissions (id, user_id) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		submissionID, userID)
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	if n == 0 {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, xp, total_games, total_score) VALUES (?, ?, 1, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			xp = profiles.xp + excluded.xp,
			total_games = profiles.total_games + 1,
			total_score = profiles.total_score + excluded.total_score,
			updated_at = CURRENT_TIMESTAMP`,
		userID, xpDelta, scoreDelta)
	if err != nil {
		return fmt.Errorf("increment profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit increment: %w", err)
	}
	return nil
}

// ListTopProfilesByXP returns the highest XP profiles, oldest first on ties.
func (s *Store) ListTopProfilesByXP(ctx context.Context, limit int) ([]remote.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.user_id, COALESCE(u.stable_id, ''), COALESCE(u.display_name, ''), p.xp
		FROM profiles p LEFT JOIN users u ON u.id = p.user_id
		ORDER BY p.xp DESC, p.user_id ASC
		LIMIT ?`, remote.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list top profiles: %w", err)
	}
	return scanEntries(rows)
}

// ListTopScoresForGame returns the best scores recorded for gameKey.
func (s *Store) ListTopScoresForGame(ctx context.Context, gameKey string, limit int) ([]remote.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.user_id, COALESCE(u.stable_id, ''), COALESCE(u.display_name, ''), g.best_score
		FROM game_scores g LEFT JOIN users u ON u.id = g.user_id
		WHERE g.game_key = ?
		ORDER BY g.best_score DESC, g.id ASC
		LIMIT ?`, gameKey, remote.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list top scores: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]remote.Entry, error) {
	defer rows.Close()
	entries := []remote.Entry{}
	for rows.Next() {
		var e remote.Entry
		if err := rows.Scan(&e.UserID, &e.StableID, &e.Name, &e.Score); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Name = remote.DisplayName(e.Name)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
