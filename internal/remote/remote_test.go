package remote

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStableID(t *testing.T) {
	for _, id := range []string{"alice", "ssh:bob", "guest-6f1c2b8e-1d1a-4a53-9f0e-3b1f1f1d2c3a", "a.b@c"} {
		assert.NoError(t, ValidateStableID(id), id)
	}
	for _, id := range []string{"", "has space", "a/b", string(make([]byte, 129))} {
		err := ValidateStableID(id)
		assert.True(t, errors.Is(err, ErrInvalidUser), "%q: %v", id, err)
	}
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-5))
	assert.Equal(t, 3, NormalizeLimit(3))
	assert.Equal(t, MaxLimit, NormalizeLimit(1000))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, UnknownName, DisplayName(""))
	assert.Equal(t, "Alice", DisplayName("Alice"))
}

func TestValidateIncrement(t *testing.T) {
	assert.NoError(t, ValidateIncrement("9b2f0c1e-6a1d-4f7e-8c55-0d2a3b4c5d6e", 50, 5))
	assert.NoError(t, ValidateIncrement("sess-1", 0, 0))
	for _, tc := range []struct {
		id        string
		xp, score int64
	}{
		{"", 1, 1},
		{"has space", 1, 1},
		{string(make([]byte, 65)), 1, 1},
		{"ok", -1, 0},
		{"ok", 0, -1},
	} {
		err := ValidateIncrement(tc.id, tc.xp, tc.score)
		assert.ErrorIs(t, err, ErrInvalidSubmission, "%+v", tc)
	}
}

func TestValidateScores(t *testing.T) {
	assert.NoError(t, ValidateScores(0, 0))
	assert.NoError(t, ValidateScores(3, 10))
	assert.ErrorIs(t, ValidateScores(-1, 10), ErrInvalidSubmission)
	assert.ErrorIs(t, ValidateScores(1, -10), ErrInvalidSubmission)
}
