// Package remote defines the contract of the shared profile store: users,
// XP profiles, per-game scores and leaderboards. Implementations live in
// the sqlitestore, pgstore and httpstore subpackages.
package remote

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("remote: not found")
	// ErrInvalidUser is returned for malformed stable ids or user ids.
	ErrInvalidUser = errors.New("remote: invalid user")
	// ErrInvalidSubmission is returned for negative scores or deltas and for
	// malformed submission ids.
	ErrInvalidSubmission = errors.New("remote: invalid submission")
	// ErrClosed is returned by a Lazy store after Close.
	ErrClosed = errors.New("remote: store closed")
)

// UnknownName is shown for leaderboard rows whose user row is missing.
const UnknownName = "Unknown"

// Profile is the authoritative XP record of a user.
type Profile struct {
	UserID     int64 `json:"user_id"`
	XP         int64 `json:"xp"`
	TotalGames int64 `json:"total_games"`
	TotalScore int64 `json:"total_score"`
}

// GameScore is the per-game score record of a user.
type GameScore struct {
	UserID    int64  `json:"user_id"`
	GameKey   string `json:"game_key"`
	LastScore int64  `json:"last_score"`
	BestScore int64  `json:"best_score"`
}

// Entry is one leaderboard row. Score is XP or best score depending on the
// board.
type Entry struct {
	UserID   int64  `json:"user_id"`
	StableID string `json:"stable_id"`
	Name     string `json:"name"`
	Score    int64  `json:"score"`
}

// Store is the remote profile store.
//
// UpsertGameScore must keep the larger best score when two writers race, and
// IncrementProfileStats must apply its deltas atomically on the store side:
// concurrent increments of +a and +b always sum to +(a+b). Increments are
// keyed by a submission id and a repeated id is a no-op, so a session that
// two clients replay from a shared outbox is counted once.
type Store interface {
	// UpsertUser creates or updates the user with the given stable id and
	// returns its numeric id. An empty display name keeps the stored one.
	UpsertUser(ctx context.Context, stableID, displayName string) (int64, error)
	// EnsureProfile creates a zeroed profile if none exists.
	EnsureProfile(ctx context.Context, userID int64) error
	// GetProfile returns ErrNotFound when the profile is missing.
	GetProfile(ctx context.Context, userID int64) (Profile, error)
	// GetGameScore returns nil without error when no score exists yet.
	GetGameScore(ctx context.Context, userID int64, gameKey string) (*GameScore, error)
	// UpsertGameScore records lastScore and raises the best score. Negative
	// scores fail with ErrInvalidSubmission.
	UpsertGameScore(ctx context.Context, userID int64, gameKey string, lastScore, bestScore int64) error
	// IncrementProfileStats adds xpDelta to XP, scoreDelta to the total
	// score and one to the games played, once per submissionID. Negative
	// deltas fail with ErrInvalidSubmission.
	IncrementProfileStats(ctx context.Context, userID int64, submissionID string, xpDelta, scoreDelta int64) error
	ListTopProfilesByXP(ctx context.Context, limit int) ([]Entry, error)
	ListTopScoresForGame(ctx context.Context, gameKey string, limit int) ([]Entry, error)
	Close() error
}

// DefaultLimit is the leaderboard size used when a caller passes none.
const DefaultLimit = 10

// MaxLimit bounds leaderboard queries.
const MaxLimit = 100

var (
	stableIDPattern     = regexp.MustCompile(`^[A-Za-z0-9._:@-]{1,128}$`)
	submissionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)
)

// ValidateStableID checks that id is usable as a stable identity.
func ValidateStableID(id string) error {
	if !stableIDPattern.MatchString(id) {
		return fmt.Errorf("%w: stable id %q", ErrInvalidUser, id)
	}
	return nil
}

// ValidateUserID checks that a numeric user id is positive.
func ValidateUserID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: user id %d", ErrInvalidUser, id)
	}
	return nil
}

// ValidateIncrement checks the submission id and deltas of an increment.
func ValidateIncrement(submissionID string, xpDelta, scoreDelta int64) error {
	if !submissionIDPattern.MatchString(submissionID) {
		return fmt.Errorf("%w: submission id %q", ErrInvalidSubmission, submissionID)
	}
	if xpDelta < 0 || scoreDelta < 0 {
		return fmt.Errorf("%w: negative delta xp=%d score=%d", ErrInvalidSubmission, xpDelta, scoreDelta)
	}
	return nil
}

// ValidateScores rejects negative game scores.
func ValidateScores(lastScore, bestScore int64) error {
	if lastScore < 0 || bestScore < 0 {
		return fmt.Errorf("%w: negative score last=%d best=%d", ErrInvalidSubmission, lastScore, bestScore)
	}
	return nil
}

// NormalizeLimit clamps a leaderboard limit into [1, MaxLimit].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// DisplayName returns name, or UnknownName when it is empty.
func DisplayName(name string) string {
	if name == "" {
		return UnknownName
	}
	return name
}
