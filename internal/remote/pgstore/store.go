// Package pgstore implements remote.Store on PostgreSQL through a pgx pool.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vovakirdan/retroplay/internal/remote"
)

//go:embed schema.sql
var schema string

// Store is a PostgreSQL-backed remote.Store.
type Store struct {
	db *pgxpool.Pool
}

var _ remote.Store = (*Store)(nil)

// Open connects to dsn, verifies the connection and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool. The caller is responsible for the schema.
func New(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin migrate: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, schema); err != nil {
		// Two processes racing on CREATE TABLE IF NOT EXISTS can collide on
		// the catalog; the loser finds the tables in place.
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("migrate: %w", err)
	}
	return tx.Commit(ctx)
}

// Close closes the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// UpsertUser inserts the user or refreshes its display name, and returns
// the numeric id.
func (s *Store) UpsertUser(ctx context.Context, stableID, displayName string) (int64, error) {
	if err := remote.ValidateStableID(stableID); err != nil {
		return 0, err
	}
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (stable_id, display_name) VALUES ($1, $2)
		ON CONFLICT (stable_id) DO UPDATE SET
			display_name = CASE WHEN EXCLUDED.display_name <> '' THEN EXCLUDED.display_name ELSE users.display_name END,
			updated_at = NOW()
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
	_, err := s.db.Exec(ctx,
		`INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	return nil
}

// GetProfile returns remote.ErrNotFound when userID has no profile.
func (s *Store) GetProfile(ctx context.Context, userID int64) (remote.Profile, error) {
	p := remote.Profile{UserID: userID}
	err := s.db.QueryRow(ctx,
		`SELECT xp, total_games, total_score FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.XP, &p.TotalGames, &p.TotalScore)
	if errors.Is(err, pgx.ErrNoRows) {
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
	err := s.db.QueryRow(ctx,
		`SELECT last_score, best_score FROM game_scores WHERE user_id = $1 AND game_key = $2`, userID, gameKey).
		Scan(&gs.LastScore, &gs.BestScore)
	if errors.Is(err, pgx.ErrNoRows) {
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
	_, err := s.db.Exec(ctx, `
		INSERT INTO game_scores (user_id, game_key, last_score, best_score) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, game_key) DO UPDATE SET
			last_score = EXCLUDED.last_score,
			best_score = GREATEST(game_scores.best_score, EXCLUDED.best_score),
			updated_at = NOW()`,
		userID, gameKey, lastScore, bestScore)
	if err != nil {
		return fmt.Errorf("upsert game score: %w", err)
	}
	return nil
}

// IncrementProfileStats applies one finished session to the profile. The
// increment only runs when the submission row is new, in the same
// statement, so a replayed submissionID leaves the profile untouched.
func (s *Store) IncrementProfileStats(ctx context.Context, userID int64, submissionID string, xpDelta, scoreDelta int64) error {
	if err := remote.ValidateUserID(userID); err != nil {
		return err
	}
	if err := remote.ValidateIncrement(submissionID, xpDelta, scoreDelta); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		WITH claimed AS (
			INSERT INTO submissions (id, user_id) VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
			RETURNING user_id
		)
		INSERT INTO profiles (user_id, xp, total_games, total_score)
		SELECT user_id, $3::bigint, 1, $4::bigint FROM claimed
		ON CONFLICT (user_id) DO UPDATE SET
			xp = profiles.xp + EXCLUDED.xp,
			total_games = profiles.total_games + 1,
			total_score = profiles.total_score + EXCLUDED.total_score,
			updated_at = NOW()`,
		submissionID, userID, xpDelta, scoreDelta)
	if err != nil {
		return fmt.Errorf("increment profile: %w", err)
	}
	return nil
}

// ListTopProfilesByXP returns the highest XP profiles, oldest first on ties.
func (s *Store) ListTopProfilesByXP(ctx context.Context, limit int) ([]remote.Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.user_id, COALESCE(u.stable_id, ''), COALESCE(u.display_name, ''), p.xp
		FROM profiles p LEFT JOIN users u ON u.id = p.user_id
		ORDER BY p.xp DESC, p.user_id ASC
		LIMIT $1`, remote.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list top profiles: %w", err)
	}
	return scanEntries(rows)
}

// ListTopScoresForGame returns the best scores recorded for gameKey.
func (s *Store) ListTopScoresForGame(ctx context.Context, gameKey string, limit int) ([]remote.Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT g.user_id, COALESCE(u.stable_id, ''), COALESCE(u.display_name, ''), g.best_score
		FROM game_scores g LEFT JOIN users u ON u.id = g.user_id
		WHERE g.game_key = $1
		ORDER BY g.best_score DESC, g.id ASC
		LIMIT $2`, gameKey, remote.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list top scores: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]remote.Entry, error) {
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
