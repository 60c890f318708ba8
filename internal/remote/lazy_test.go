package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore answers GetProfile and records Close.
type countingStore struct {
	Store
	closed int
}

func (c *countingStore) GetProfile(_ context.Context, userID int64) (Profile, error) {
	return Profile{UserID: userID, XP: 7}, nil
}

func (c *countingStore) Close() error {
	c.closed++
	return nil
}

func TestLazyRetriesFailedOpen(t *testing.T) {
	errDown := errors.New("connection refused")
	backing := &countingStore{}
	calls := 0
	l := NewLazy(func(context.Context) (Store, error) {
		calls++
		if calls == 1 {
			return nil, errDown
		}
		return backing, nil
	})
	ctx := context.Background()

	_, err := l.GetProfile(ctx, 1)
	assert.ErrorIs(t, err, errDown)

	p, err := l.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.XP)

	_, err = l.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "an open store is reused")

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	assert.Equal(t, 1, backing.closed)
	_, err = l.GetProfile(ctx, 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLazyCloseWithoutOpen(t *testing.T) {
	l := NewLazy(func(context.Context) (Store, error) {
		t.Fatal("open called")
		return nil, nil
	})
	require.NoError(t, l.Close())
}
