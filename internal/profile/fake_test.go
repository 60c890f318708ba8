package profile

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/retroplay/internal/config"
	"github.com/vovakirdan/retroplay/internal/remote"
	"github.com/vovakirdan/retroplay/internal/remote/sqlitestore"
)

var errOffline = errors.New("network unreachable")

// flakyStore wraps a real store and fails or blocks selected operations.
type flakyStore struct {
	remote.Store

	mu   sync.Mutex
	fail map[string]bool
	// entered and release, when set, make the next IncrementProfileStats
	// signal entered and wait for release. Later calls pass through.
	entered chan struct{}
	release chan struct{}
}

func newFlakyStore(t *testing.T) *flakyStore {
	t.Helper()
	backing, err := sqlitestore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backing.Close() })
	return &flakyStore{Store: backing, fail: make(map[string]bool)}
}

func (f *flakyStore) setFail(on bool, ops ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, op := range ops {
		f.fail[op] = on
	}
}

func (f *flakyStore) goOffline() { f.setFail(true, allOps...) }
func (f *flakyStore) goOnline()  { f.setFail(false, allOps...) }

var allOps = []string{"user", "ensure", "profile", "score", "upsert", "increment", "top_xp", "top_game"}

func (f *flakyStore) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[op] {
		return errOffline
	}
	return nil
}

func (f *flakyStore) UpsertUser(ctx context.Context, stableID, name string) (int64, error) {
	if err := f.check("user"); err != nil {
		return 0, err
	}
	return f.Store.UpsertUser(ctx, stableID, name)
}

func (f *flakyStore) EnsureProfile(ctx context.Context, userID int64) error {
	if err := f.check("ensure"); err != nil {
		return err
	}
	return f.Store.EnsureProfile(ctx, userID)
}

func (f *flakyStore) GetProfile(ctx context.Context, userID int64) (remote.Profile, error) {
	if err := f.check("profile"); err != nil {
		return remote.Profile{}, err
	}
	return f.Store.GetProfile(ctx, userID)
}

func (f *flakyStore) GetGameScore(ctx context.Context, userID int64, gameKey string) (*remote.GameScore, error) {
	if err := f.check("score"); err != nil {
		return nil, err
	}
	return f.Store.GetGameScore(ctx, userID, gameKey)
}

func (f *flakyStore) UpsertGameScore(ctx context.Context, userID int64, gameKey string, last, best int64) error {
	if err := f.check("upsert"); err != nil {
		return err
	}
	return f.Store.UpsertGameScore(ctx, userID, gameKey, last, best)
}

func (f *flakyStore) IncrementProfileStats(ctx context.Context, userID int64, submissionID string, xp, score int64) error {
	if err := f.check("increment"); err != nil {
		return err
	}
	f.mu.Lock()
	entered, release := f.entered, f.release
	f.entered, f.release = nil, nil
	f.mu.Unlock()
	if entered != nil {
		close(entered)
		<-release
	}
	return f.Store.IncrementProfileStats(ctx, userID, submissionID, xp, score)
}

func (f *flakyStore) blockNextIncrement() (entered, release chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entered = make(chan struct{})
	f.release = make(chan struct{})
	return f.entered, f.release
}

func (f *flakyStore) ListTopProfilesByXP(ctx context.Context, limit int) ([]remote.Entry, error) {
	if err := f.check("top_xp"); err != nil {
		return nil, err
	}
	return f.Store.ListTopProfilesByXP(ctx, limit)
}

func (f *flakyStore) ListTopScoresForGame(ctx context.Context, gameKey string, limit int) ([]remote.Entry, error) {
	if err := f.check("top_game"); err != nil {
		return nil, err
	}
	return f.Store.ListTopScoresForGame(ctx, gameKey, limit)
}

func testConfig() config.SyncConfig {
	return config.SyncConfig{
		Timeout:          time.Second,
		XPMultipliers:    map[string]int{"flappy_coin": 10, "merge_2048": 1},
		LeaderboardLimit: 10,
		CacheCap:         20,
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}
