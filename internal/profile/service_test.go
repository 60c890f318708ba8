package profile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/retroplay/internal/identity"
	"github.com/vovakirdan/retroplay/internal/remote"
	"github.com/vovakirdan/retroplay/internal/storage"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

var alice = identity.Identity{ID: "user:alice", DisplayName: "Alice"}

func newService(t *testing.T, store remote.Store, kv *storage.Memory) *Service {
	t.Helper()
	if kv == nil {
		kv = storage.NewMemory()
	}
	s := New(Options{
		Store:    store,
		KV:       kv,
		Identity: alice,
		Config:   testConfig(),
		Logger:   quietLogger(),
	})
	t.Cleanup(s.Close)
	return s
}

func settled(s *Service) func() bool {
	return func() bool {
		snap := s.Snapshot()
		return snap.Synced && snap.Pending == 0
	}
}

func remoteProfile(t *testing.T, store remote.Store, stableID string) remote.Profile {
	t.Helper()
	ctx := context.Background()
	userID, err := store.UpsertUser(ctx, stableID, "")
	require.NoError(t, err)
	p, err := store.GetProfile(ctx, userID)
	require.NoError(t, err)
	return p
}

func TestFirstSessionConvergesWithoutDoubleCount(t *testing.T) {
	store := newFlakyStore(t)
	s := newService(t, store, nil)
	s.Start(context.Background())

	xp := s.RecordSession("flappy_coin", 12)
	assert.Equal(t, int64(120), xp)
	assert.Equal(t, int64(120), s.Snapshot().XP)

	require.Eventually(t, settled(s), waitFor, tick)
	assert.Equal(t, int64(120), s.Snapshot().XP)

	p := remoteProfile(t, store, alice.ID)
	assert.Equal(t, int64(120), p.XP)
	assert.Equal(t, int64(1), p.TotalGames)
	assert.Equal(t, int64(12), p.TotalScore)
}

func TestOfflineXPIsReplayedOnForeground(t *testing.T) {
	store := newFlakyStore(t)
	store.goOffline()
	s := newService(t, store, nil)
	s.Start(context.Background())

	s.RecordSession("flappy_coin", 5)
	s.RecordSession("merge_2048", 64)

	require.Eventually(t, func() bool {
		return s.Snapshot().Pending == 2
	}, waitFor, tick)
	snap := s.Snapshot()
	assert.Equal(t, int64(114), snap.XP)
	assert.False(t, snap.Synced)

	store.goOnline()
	s.Foreground()

	require.Eventually(t, settled(s), waitFor, tick)
	assert.Equal(t, int64(114), s.Snapshot().XP)
	p := remoteProfile(t, store, alice.ID)
	assert.Equal(t, int64(114), p.XP)
	assert.Equal(t, int64(2), p.TotalGames)
}

func TestPendingXPSurvivesRestart(t *testing.T) {
	store := newFlakyStore(t)
	store.goOffline()
	kv := storage.NewMemory()

	first := newService(t, store, kv)
	first.RecordSession("flappy_coin", 3)
	require.Eventually(t, func() bool {
		return first.Snapshot().Pending == 1
	}, waitFor, tick)
	first.Close()

	store.goOnline()
	second := newService(t, store, kv)
	assert.Equal(t, int64(30), second.Snapshot().XP)
	second.Start(context.Background())

	require.Eventually(t, settled(second), waitFor, tick)
	assert.Equal(t, int64(30), second.Snapshot().XP)
	assert.Equal(t, int64(30), remoteProfile(t, store, alice.ID).XP)
}

func TestAuthoritativeXPWins(t *testing.T) {
	store := newFlakyStore(t)
	ctx := context.Background()
	userID, _, err := SyncIdentity(ctx, store, alice.ID, alice.DisplayName)
	require.NoError(t, err)
	// Another device already earned XP.
	require.NoError(t, store.IncrementProfileStats(ctx, userID, "other-device-1", 500, 50))

	s := newService(t, store, nil)
	s.Start(ctx)
	require.Eventually(t, settled(s), waitFor, tick)
	assert.Equal(t, int64(500), s.Snapshot().XP)

	s.RecordSession("flappy_coin", 1)
	require.Eventually(t, func() bool {
		return settled(s)() && s.Snapshot().XP == 510
	}, waitFor, tick)
}

func TestRefreshFailureDoesNotResubmit(t *testing.T) {
	store := newFlakyStore(t)
	s := newService(t, store, nil)
	s.Start(context.Background())
	require.Eventually(t, settled(s), waitFor, tick)

	store.setFail(true, "profile")
	s.RecordSession("flappy_coin", 2)
	require.Eventually(t, func() bool {
		return s.Snapshot().Pending == 0
	}, waitFor, tick)

	store.setFail(false, "profile")
	s.Foreground()
	require.Eventually(t, func() bool {
		return settled(s)() && s.Snapshot().XP == 20
	}, waitFor, tick)
	assert.Equal(t, int64(1), remoteProfile(t, store, alice.ID).TotalGames)
}

func TestOfflineService(t *testing.T) {
	s := newService(t, nil, nil)
	s.Start(context.Background())

	s.RecordSession("flappy_coin", 7)
	s.RecordSession("flappy_coin", 4)

	snap := s.Snapshot()
	assert.Equal(t, int64(110), snap.XP)
	assert.False(t, snap.Synced)

	board := s.Leaderboard(context.Background(), "flappy_coin")
	assert.False(t, board.Remote)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, int64(7), board.Entries[0].Score)
	assert.Equal(t, "Alice", board.Entries[0].Name)

	xp := s.Leaderboard(context.Background(), "")
	require.Len(t, xp.Entries, 1)
	assert.Equal(t, int64(110), xp.Entries[0].Score)
}

func TestLeaderboardFallsBackToLocalCache(t *testing.T) {
	store := newFlakyStore(t)
	s := newService(t, store, nil)
	s.Start(context.Background())
	s.RecordSession("flappy_coin", 9)
	require.Eventually(t, settled(s), waitFor, tick)

	board := s.Leaderboard(context.Background(), "flappy_coin")
	assert.True(t, board.Remote)
	require.Len(t, board.Entries, 1)

	store.setFail(true, "top_game")
	board = s.Leaderboard(context.Background(), "flappy_coin")
	assert.False(t, board.Remote)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, int64(9), board.Entries[0].Score)
}

func TestLeaderboardEventsFollowSubmission(t *testing.T) {
	store := newFlakyStore(t)
	s := newService(t, store, nil)
	s.Start(context.Background())
	s.RecordSession("flappy_coin", 6)

	seen := map[string]bool{}
	timeout := time.After(waitFor)
	for !(seen["flappy_coin"] && seen[""]) {
		select {
		case ev := <-s.Events():
			if ev.Kind == EventLeaderboard {
				seen[ev.Board.GameKey] = true
			}
		case <-timeout:
			t.Fatalf("leaderboard events not received: %v", seen)
		}
	}
}

func TestCloseDiscardsLateResults(t *testing.T) {
	store := newFlakyStore(t)
	entered, release := store.blockNextIncrement()
	s := newService(t, store, nil)

	s.RecordSession("flappy_coin", 3)
	waitEntered(t, entered)

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	s.Close()

	snap := s.Snapshot()
	assert.False(t, snap.Synced)
	assert.Equal(t, int64(30), snap.XP)
	for ev := range s.Events() {
		assert.NotEqual(t, EventLeaderboard, ev.Kind)
		assert.NotEqual(t, EventSynced, ev.Kind)
	}
	assert.Equal(t, int64(0), s.RecordSession("flappy_coin", 5))
}

func TestNegativeScoreIsClamped(t *testing.T) {
	s := newService(t, nil, nil)
	assert.Equal(t, int64(0), s.RecordSession("flappy_coin", -4))
	assert.Equal(t, int64(0), s.Snapshot().XP)
}

func waitEntered(t *testing.T, entered <-chan struct{}) {
	t.Helper()
	select {
	case <-entered:
	case <-time.After(waitFor):
		t.Fatal("submission never reached the store")
	}
}

func TestSharedOutboxSubmitsOnce(t *testing.T) {
	store := newFlakyStore(t)
	kv := storage.NewMemory()
	outbox := NewOutbox(kv)
	newShared := func() *Service {
		s := New(Options{
			Store:    store,
			KV:       kv,
			Identity: alice,
			Config:   testConfig(),
			Logger:   quietLogger(),
			Outbox:   outbox,
		})
		t.Cleanup(s.Close)
		return s
	}
	a, b := newShared(), newShared()

	entered, release := store.blockNextIncrement()
	b.RecordSession("flappy_coin", 5)
	waitEntered(t, entered)

	a.Foreground()
	require.Eventually(t, func() bool { return a.Snapshot().Synced }, waitFor, tick)
	close(release)

	require.Eventually(t, settled(b), waitFor, tick)
	p := remoteProfile(t, store, alice.ID)
	assert.Equal(t, int64(50), p.XP)
	assert.Equal(t, int64(1), p.TotalGames)
}

func TestReplayFromAnotherProcessCountsOnce(t *testing.T) {
	store := newFlakyStore(t)
	kv := storage.NewMemory()
	// Separate outboxes on one KV stand in for two processes sharing a
	// database file, so claims do not help and the store must dedupe.
	b := New(Options{Store: store, KV: kv, Identity: alice, Config: testConfig(), Logger: quietLogger()})
	t.Cleanup(b.Close)
	a := New(Options{Store: store, KV: kv, Identity: alice, Config: testConfig(), Logger: quietLogger()})
	t.Cleanup(a.Close)

	entered, release := store.blockNextIncrement()
	b.RecordSession("flappy_coin", 5)
	waitEntered(t, entered)

	a.Foreground()
	require.Eventually(t, settled(a), waitFor, tick)
	assert.Equal(t, int64(50), remoteProfile(t, store, alice.ID).XP)
	close(release)

	require.Eventually(t, settled(b), waitFor, tick)
	p := remoteProfile(t, store, alice.ID)
	assert.Equal(t, int64(50), p.XP)
	assert.Equal(t, int64(1), p.TotalGames)
	assert.Equal(t, int64(50), b.Snapshot().XP)
}

func TestStoreOpenIsRetriedOnForeground(t *testing.T) {
	backing := newFlakyStore(t)
	var mu sync.Mutex
	attempts := 0
	store := remote.NewLazy(func(context.Context) (remote.Store, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return nil, errOffline
		}
		return backing, nil
	})

	s := newService(t, store, nil)
	s.Start(context.Background())
	select {
	case ev := <-s.Events():
		require.Equal(t, EventSyncFailed, ev.Kind)
		assert.ErrorIs(t, ev.Err, errOffline)
	case <-time.After(waitFor):
		t.Fatal("first sync did not fail")
	}
	assert.False(t, s.Snapshot().Synced)

	s.Foreground()
	require.Eventually(t, settled(s), waitFor, tick)

	s.RecordSession("flappy_coin", 4)
	require.Eventually(t, func() bool {
		return settled(s)() && s.Snapshot().XP == 40
	}, waitFor, tick)
	assert.Equal(t, int64(40), remoteProfile(t, store, alice.ID).XP)
	mu.Lock()
	assert.Equal(t, 2, attempts)
	mu.Unlock()
}
