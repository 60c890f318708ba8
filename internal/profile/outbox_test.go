package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vovakirdan/retroplay/internal/storage"
)

func TestOutbox(t *testing.T) {
	kv := storage.NewMemory()
	o := NewOutbox(kv)

	o.Add(Pending{ID: "1", Identity: "user:a", XP: 10})
	o.Add(Pending{ID: "2", Identity: "user:b", XP: 20})
	o.Add(Pending{ID: "3", Identity: "user:a", XP: 30})

	got := o.List("user:a")
	if assert.Len(t, got, 2) {
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "3", got[1].ID)
	}

	o.Remove("1")
	assert.False(t, o.Claim("1"))
	assert.Len(t, o.List("user:a"), 1)

	// Survives a new Outbox over the same storage.
	assert.Len(t, NewOutbox(kv).List("user:b"), 1)
}

func TestOutboxCorruptData(t *testing.T) {
	kv := storage.NewMemory()
	kv.Set(OutboxKey, "{not json")
	o := NewOutbox(kv)

	assert.Empty(t, o.List("user:a"))
	o.Add(Pending{ID: "1", Identity: "user:a"})
	assert.Len(t, o.List("user:a"), 1)
}

func TestOutboxClaim(t *testing.T) {
	o := NewOutbox(storage.NewMemory())
	o.Add(Pending{ID: "1", Identity: "user:a", XP: 10})

	assert.True(t, o.Claim("1"))
	assert.True(t, o.Claimed("1"))
	assert.False(t, o.Claim("1"), "a claimed entry cannot be claimed twice")

	o.Release("1")
	assert.False(t, o.Claimed("1"))
	assert.True(t, o.Claim("1"))
	assert.False(t, o.Claim("missing"))
}

func TestOutboxSeesOtherWriters(t *testing.T) {
	kv := storage.NewMemory()
	a := NewOutbox(kv)
	b := NewOutbox(kv)

	a.Add(Pending{ID: "1", Identity: "user:a"})
	assert.Len(t, b.List("user:a"), 1)

	b.Add(Pending{ID: "2", Identity: "user:a"})
	b.Remove("1")
	got := a.List("user:a")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "2", got[0].ID)
	}
}

func TestOutboxListIsACopy(t *testing.T) {
	o := NewOutbox(storage.NewMemory())
	o.Add(Pending{ID: "1", Identity: "user:a", XP: 10})

	got := o.List("user:a")
	got[0].XP = 999
	assert.Equal(t, int64(10), o.List("user:a")[0].XP)
}
