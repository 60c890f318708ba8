// Package remotetest holds the behavioural checks every remote.Store
// implementation must pass.
package remotetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/retroplay/internal/remote"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) remote.Store

// Run executes the store suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	cases := []struct {
		name string
		fn   func(t *testing.T, s remote.Store)
	}{
		{"UpsertUserIsStable", testUpsertUserIsStable},
		{"UpsertUserKeepsNameOnEmpty", testUpsertUserKeepsNameOnEmpty},
		{"InvalidStableID", testInvalidStableID},
		{"EnsureProfileIdempotent", testEnsureProfileIdempotent},
		{"MissingProfile", testMissingProfile},
		{"IncrementProfileStats", testIncrementProfileStats},
		{"ConcurrentIncrements", testConcurrentIncrements},
		{"ReplayedSubmissionCountsOnce", testReplayedSubmissionCountsOnce},
		{"ConcurrentReplayCountsOnce", testConcurrentReplayCountsOnce},
		{"RejectsNegativeIncrement", testRejectsNegativeIncrement},
		{"RejectsNegativeScore", testRejectsNegativeScore},
		{"GameScoreMaxWins", testGameScoreMaxWins},
		{"MissingGameScore", testMissingGameScore},
		{"TopProfilesByXP", testTopProfilesByXP},
		{"TopScoresForGame", testTopScoresForGame},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tc.fn(t, s)
		})
	}
}

func mustUser(t *testing.T, s remote.Store, stableID, name string) int64 {
	t.Helper()
	id, err := s.UpsertUser(context.Background(), stableID, name)
	require.NoError(t, err)
	require.NoError(t, s.EnsureProfile(context.Background(), id))
	return id
}

func testUpsertUserIsStable(t *testing.T, s remote.Store) {
	ctx := context.Background()
	a, err := s.UpsertUser(ctx, "alice", "Alice")
	require.NoError(t, err)
	b, err := s.UpsertUser(ctx, "alice", "Alice B")
	require.NoError(t, err)
	c, err := s.UpsertUser(ctx, "bob", "Bob")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func testUpsertUserKeepsNameOnEmpty(t *testing.T, s remote.Store) {
	ctx := context.Background()
	id := mustUser(t, s, "carol", "Carol")
	_, err := s.UpsertUser(ctx, "carol", "")
	require.NoError(t, err)
	require.NoError(t, s.IncrementProfileStats(ctx, id, "carol-1", 5, 5))

	top, err := s.ListTopProfilesByXP(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Carol", top[0].Name)
	assert.Equal(t, "carol", top[0].StableID)
}

func testInvalidStableID(t *testing.T, s remote.Store) {
	_, err := s.UpsertUser(context.Background(), "bad id", "x")
	assert.ErrorIs(t, err, remote.ErrInvalidUser)
}

func testEnsureProfileIdempotent(t *testing.T, s remote.Store) {
	ctx := context.Background()
	id := mustUser(t, s, "dave", "Dave")
	require.NoError(t, s.IncrementProfileStats(ctx, id, "dave-1", 7, 3))
	require.NoError(t, s.EnsureProfile(ctx, id))

	p, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, remote.Profile{UserID: id, XP: 7, TotalGames: 1, TotalScore: 3}, p)
}

func testMissingProfile(t *testing.T, s remote.Store) {
	_, err := s.GetProfile(context.Background(), 424242)
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func testIncrementProfileStats(t *testing.T, s remote.Store) {
	ctx := context.Background()
	id := mustUser(t, s, "erin", "Erin")
	require.NoError(t, s.IncrementProfileStats(ctx, id, "erin-1", 120, 12))
	require.NoError(t, s.IncrementProfileStats(ctx, id, "erin-2", 0, 0))

	p, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(120), p.XP)
	assert.Equal(t, int64(2), p.TotalGames)
	assert.Equal(t, int64(12), p.TotalScore)
}

func testConcurrentIncrements(t *testing.T, s remote.Store) {
	ctx := context.Background()
	id := mustUser(t, s, "frank", "Frank")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, delta := range []int64{5, 3} {
		wg.Add(1)
		go func(d int64) {
			defer wg.Done()
			errs <- s.IncrementProfileStats(ctx, id, fmt.Sprintf("frank-%d", d), d, d)
		}(delta)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	p, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(8), p.XP)
	assert.Equal(t, int64(2), p.TotalGames)
}

func testReplayedSubmissionCountsOnce(t *testing.T, s remote.Store) {
	ctx := context.Background()
	id := mustUser(t, s, "otto", "Otto")
	require.NoError(t, s.IncrementProfileStats(ctx, id, "sess-1", 50, 5))
	require.NoError(t, s.IncrementProfileStats(ctx, id, "sess-1", 50, 5))
	require.NoError(t, s.IncrementProfileStats(ctx, id, "sess-2", 10, 1))

	p, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, remote.Profile{UserID: id, XP: 60, TotalGames: 2, TotalScore: 6}, p)
}

func testConcurrentReplayCountsOnce(t *testing.T, s remote.Store) {
	ctx := context.Background()
	id := mustUser(t, s, "pia", "Pia")

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.IncrementProfileStats(ctx, id, "shared-sess", 50, 5)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	p, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(50), p.XP)
	assert.Equal(t, int64(1), p.TotalGames)
}

func testRejectsNegativeIncrement(t *testing.T, s remote.Store) {
	ctx := context.Background()
	id := mustUser(t, s, "quinn", "Quinn")
	assert.ErrorIs(t, s.IncrementProfileStats(ctx, id, "q-1", -100, 0), remote.ErrInvalidSubmission)
	assert.ErrorIs(t, s.IncrementProfileStats(ctx, id, "q-2", 10, -1), remote.ErrInvalidSubmission)
	assert.ErrorIs(t, s.IncrementProfileStats(ctx, id, "", 10, 1), remote.ErrInvalidSubmission)

	p, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, remote.Profile{UserID: id}, p)
}

func testRejectsNegativeScore(t *testing.T, s remote.Store) {
	ctx := context.Background()
	id := mustUser(t, s, "rosa", "Rosa")
	assert.ErrorIs(t, s.UpsertGameScore(ctx, id, "jump_coin", -5, 3), remote.ErrInvalidSubmission)
	assert.ErrorIs(t, s.UpsertGameScore(ctx, id, "jump_coin", 3, -5), remote.ErrInvalidSubmission)

	gs, err := s.GetGameScore(ctx, id, "jump_coin")
	require.NoError(t, err)
	assert.Nil(t, gs)
}

func testGameScoreMaxWins(t *testing.T, s remote.Store) {
	ctx := context.Background()
	id := mustUser(t, s, "gina", "Gina")
	require.NoError(t, s.UpsertGameScore(ctx, id, "flappy_coin", 10, 10))
	require.NoError(t, s.UpsertGameScore(ctx, id, "flappy_coin", 7, 7))

	gs, err := s.GetGameScore(ctx, id, "flappy_coin")
	require.NoError(t, err)
	require.NotNil(t, gs)
	assert.Equal(t, int64(10), gs.BestScore)
	assert.Equal(t, int64(7), gs.LastScore)

	require.NoError(t, s.UpsertGameScore(ctx, id, "flappy_coin", 15, 15))
	gs, err = s.GetGameScore(ctx, id, "flappy_coin")
	require.NoError(t, err)
	assert.Equal(t, int64(15), gs.BestScore)
	assert.Equal(t, int64(15), gs.LastScore)
}

func testMissingGameScore(t *testing.T, s remote.Store) {
	id := mustUser(t, s, "hank", "Hank")
	gs, err := s.GetGameScore(context.Background(), id, "jump_coin")
	require.NoError(t, err)
	assert.Nil(t, gs)
}

func testTopProfilesByXP(t *testing.T, s remote.Store) {
	ctx := context.Background()
	a := mustUser(t, s, "ivy", "Ivy")
	b := mustUser(t, s, "jack", "Jack")
	c := mustUser(t, s, "kate", "Kate")
	require.NoError(t, s.IncrementProfileStats(ctx, a, "ivy-1", 50, 5))
	require.NoError(t, s.IncrementProfileStats(ctx, b, "jack-1", 90, 9))
	require.NoError(t, s.IncrementProfileStats(ctx, c, "kate-1", 50, 5))

	top, err := s.ListTopProfilesByXP(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Jack", top[0].Name)
	assert.Equal(t, int64(90), top[0].Score)
	// Ties keep insertion order.
	assert.Equal(t, "Ivy", top[1].Name)

	all, err := s.ListTopProfilesByXP(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func testTopScoresForGame(t *testing.T, s remote.Store) {
	ctx := context.Background()
	a := mustUser(t, s, "liam", "Liam")
	b := mustUser(t, s, "mia", "Mia")
	require.NoError(t, s.UpsertGameScore(ctx, a, "merge_2048", 2048, 2048))
	require.NoError(t, s.UpsertGameScore(ctx, b, "merge_2048", 4096, 4096))
	require.NoError(t, s.UpsertGameScore(ctx, a, "jump_coin", 3, 3))

	top, err := s.ListTopScoresForGame(ctx, "merge_2048", 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Mia", top[0].Name)
	assert.Equal(t, int64(4096), top[0].Score)
	assert.Equal(t, "Liam", top[1].Name)

	none, err := s.ListTopScoresForGame(ctx, "flappy_coin", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
