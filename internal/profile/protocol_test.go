package profile

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncIdentity(t *testing.T) {
	store := newFlakyStore(t)
	ctx := context.Background()

	id1, p1, err := SyncIdentity(ctx, store, "user:alice", "Alice")
	require.NoError(t, err)
	id2, p2, err := SyncIdentity(ctx, store, "user:alice", "Alice")
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, int64(0), p1.XP)
	assert.Equal(t, p1, p2)
}

func TestSyncIdentityOffline(t *testing.T) {
	store := newFlakyStore(t)
	store.goOffline()

	_, _, err := SyncIdentity(context.Background(), store, "user:alice", "Alice")
	assert.ErrorIs(t, err, errOffline)
}

func TestSubmitBestScoreIsOrderIndependent(t *testing.T) {
	for _, order := range [][]int64{{10, 7}, {7, 10}} {
		store := newFlakyStore(t)
		ctx := context.Background()
		userID, _, err := SyncIdentity(ctx, store, "user:bob", "Bob")
		require.NoError(t, err)

		for _, score := range order {
			_, err := Submit(ctx, store, userID, fmt.Sprintf("bob-%d", score), "flappy_coin", score, score*10)
			require.NoError(t, err)
		}

		gs, err := store.GetGameScore(ctx, userID, "flappy_coin")
		require.NoError(t, err)
		require.NotNil(t, gs)
		assert.Equal(t, int64(10), gs.BestScore, "order %v", order)
		assert.Equal(t, order[1], gs.LastScore, "order %v", order)
	}
}

func TestSubmitReturnsAuthoritativeProfile(t *testing.T) {
	store := newFlakyStore(t)
	ctx := context.Background()
	userID, _, err := SyncIdentity(ctx, store, "user:carol", "Carol")
	require.NoError(t, err)

	p, err := Submit(ctx, store, userID, "carol-1", "flappy_coin", 12, 120)
	require.NoError(t, err)
	assert.Equal(t, int64(120), p.XP)
	assert.Equal(t, int64(1), p.TotalGames)
	assert.Equal(t, int64(12), p.TotalScore)
}

func TestSubmitRetryAfterLostAckCountsOnce(t *testing.T) {
	store := newFlakyStore(t)
	ctx := context.Background()
	userID, _, err := SyncIdentity(ctx, store, "user:erin", "Erin")
	require.NoError(t, err)

	store.setFail(true, "profile")
	_, err = Submit(ctx, store, userID, "erin-1", "flappy_coin", 5, 50)
	require.Error(t, err)

	store.setFail(false, "profile")
	p, err := Submit(ctx, store, userID, "erin-1", "flappy_coin", 5, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), p.XP)
	assert.Equal(t, int64(1), p.TotalGames)
}

func TestSubmitErrorStages(t *testing.T) {
	tests := []struct {
		name    string
		failOp  string
		stage   Stage
		applied bool
	}{
		{"score read", "score", StageScore, false},
		{"score write", "upsert", StageScore, false},
		{"increment", "increment", StageIncrement, false},
		{"refresh", "profile", StageRefresh, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFlakyStore(t)
			ctx := context.Background()
			userID, _, err := SyncIdentity(ctx, store, "user:dave", "Dave")
			require.NoError(t, err)

			store.setFail(true, tt.failOp)
			_, err = Submit(ctx, store, userID, "dave-1", "jump_coin", 4, 40)

			var serr *SubmitError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.stage, serr.Stage)
			assert.Equal(t, tt.applied, serr.Applied())
			assert.ErrorIs(t, err, errOffline)
		})
	}
}

func TestRefreshLeaderboard(t *testing.T) {
	store := newFlakyStore(t)
	ctx := context.Background()
	a, _, err := SyncIdentity(ctx, store, "user:a", "A")
	require.NoError(t, err)
	b, _, err := SyncIdentity(ctx, store, "user:b", "B")
	require.NoError(t, err)
	_, err = Submit(ctx, store, a, "a-1", "merge_2048", 300, 300)
	require.NoError(t, err)
	_, err = Submit(ctx, store, b, "b-1", "merge_2048", 500, 500)
	require.NoError(t, err)

	byGame, err := RefreshLeaderboard(ctx, store, "merge_2048", 10)
	require.NoError(t, err)
	require.Len(t, byGame, 2)
	assert.Equal(t, "B", byGame[0].Name)

	byXP, err := RefreshLeaderboard(ctx, store, "", 1)
	require.NoError(t, err)
	require.Len(t, byXP, 1)
	assert.Equal(t, int64(500), byXP[0].Score)
}
