// Package profile reconciles locally earned score and XP with the remote
// profile store. Local state is updated first and is the visible truth until
// the store answers; the store's values win once they arrive.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/vovakirdan/retroplay/internal/remote"
)

// Stage identifies the remote step a submission failed at.
type Stage int

const (
	StageScore Stage = iota + 1
	StageIncrement
	StageRefresh
)

func (s Stage) String() string {
	switch s {
	case StageScore:
		return "score"
	case StageIncrement:
		return "increment"
	case StageRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// SubmitError reports the stage a submission stopped at.
type SubmitError struct {
	Stage Stage
	Err   error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("profile: submit failed at %s: %v", e.Stage, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Applied reports whether the XP increment reached the store before the
// failure. Applied submissions need no retry; a retry is ignored by the
// store.
func (e *SubmitError) Applied() bool { return e.Stage == StageRefresh }

// SyncIdentity upserts the user and its profile and returns the user id
// with the current authoritative profile.
func SyncIdentity(ctx context.Context, store remote.Store, stableID, displayName string) (int64, remote.Profile, error) {
	userID, err := store.UpsertUser(ctx, stableID, displayName)
	if err != nil {
		return 0, remote.Profile{}, fmt.Errorf("profile: sync identity: %w", err)
	}
	if err := store.EnsureProfile(ctx, userID); err != nil {
		return 0, remote.Profile{}, fmt.Errorf("profile: ensure profile: %w", err)
	}
	p, err := store.GetProfile(ctx, userID)
	if errors.Is(err, remote.ErrNotFound) {
		// A concurrent session may still be creating the row.
		return userID, remote.Profile{UserID: userID}, nil
	}
	if err != nil {
		return 0, remote.Profile{}, fmt.Errorf("profile: read profile: %w", err)
	}
	return userID, p, nil
}

// Submit records a finished session remotely: the game score (max-wins on
// best), then the XP and totals increment keyed by submissionID, then a
// profile read. Errors are *SubmitError.
func Submit(ctx context.Context, store remote.Store, userID int64, submissionID, gameKey string, score, xpDelta int64) (remote.Profile, error) {
	existing, err := store.GetGameScore(ctx, userID, gameKey)
	if err != nil {
		return remote.Profile{}, &SubmitError{Stage: StageScore, Err: err}
	}
	best := score
	if existing != nil && existing.BestScore > best {
		best = existing.BestScore
	}
	if err := store.UpsertGameScore(ctx, userID, gameKey, score, best); err != nil {
		return remote.Profile{}, &SubmitError{Stage: StageScore, Err: err}
	}
	if err := store.IncrementProfileStats(ctx, userID, submissionID, xpDelta, score); err != nil {
		return remote.Profile{}, &SubmitError{Stage: StageIncrement, Err: err}
	}
	p, err := store.GetProfile(ctx, userID)
	if err != nil {
		return remote.Profile{}, &SubmitError{Stage: StageRefresh, Err: err}
	}
	return p, nil
}

// RefreshLeaderboard reads the global board: XP when gameKey is empty,
// otherwise best scores for that game.
func RefreshLeaderboard(ctx context.Context, store remote.Store, gameKey string, limit int) ([]remote.Entry, error) {
	var (
		entries []remote.Entry
		err     error
	)
	if gameKey == "" {
		entries, err = store.ListTopProfilesByXP(ctx, limit)
	} else {
		entries, err = store.ListTopScoresForGame(ctx, gameKey, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("profile: refresh leaderboard: %w", err)
	}
	return entries, nil
}
