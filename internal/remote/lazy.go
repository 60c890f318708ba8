package remote

import (
	"context"
	"fmt"
	"sync"
)

// Opener connects to a backing store.
type Opener func(ctx context.Context) (Store, error)

// Lazy is a Store that opens its backing store on first use. A failed open
// is retried by the next call, so a database that is down at launch is
// picked up once it comes back.
type Lazy struct {
	open Opener

	mu     sync.Mutex
	store  Store
	closed bool
}

var _ Store = (*Lazy)(nil)

// NewLazy returns a Lazy store backed by open.
func NewLazy(open Opener) *Lazy {
	return &Lazy{open: open}
}

func (l *Lazy) get(ctx context.Context) (Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	if l.store != nil {
		return l.store, nil
	}
	s, err := l.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("remote: open: %w", err)
	}
	l.store = s
	return s, nil
}

func (l *Lazy) UpsertUser(ctx context.Context, stableID, displayName string) (int64, error) {
	s, err := l.get(ctx)
	if err != nil {
		return 0, err
	}
	return s.UpsertUser(ctx, stableID, displayName)
}

func (l *Lazy) EnsureProfile(ctx context.Context, userID int64) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}
	return s.EnsureProfile(ctx, userID)
}

func (l *Lazy) GetProfile(ctx context.Context, userID int64) (Profile, error) {
	s, err := l.get(ctx)
	if err != nil {
		return Profile{}, err
	}
	return s.GetProfile(ctx, userID)
}

func (l *Lazy) GetGameScore(ctx context.Context, userID int64, gameKey string) (*GameScore, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetGameScore(ctx, userID, gameKey)
}

func (l *Lazy) UpsertGameScore(ctx context.Context, userID int64, gameKey string, lastScore, bestScore int64) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}
	return s.UpsertGameScore(ctx, userID, gameKey, lastScore, bestScore)
}

func (l *Lazy) IncrementProfileStats(ctx context.Context, userID int64, submissionID string, xpDelta, scoreDelta int64) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}
	return s.IncrementProfileStats(ctx, userID, submissionID, xpDelta, scoreDelta)
}

func (l *Lazy) ListTopProfilesByXP(ctx context.Context, limit int) ([]Entry, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListTopProfilesByXP(ctx, limit)
}

func (l *Lazy) ListTopScoresForGame(ctx context.Context, gameKey string, limit int) ([]Entry, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListTopScoresForGame(ctx, gameKey, limit)
}

// Close closes the backing store if it was opened. Later calls fail with
// ErrClosed.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}
