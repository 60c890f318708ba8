package profile

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/vovakirdan/retroplay/internal/core"
)

// OutboxKey is the storage key of the pending submissions.
const OutboxKey = "retroplay_outbox"

// Pending is a finished session not yet confirmed by the remote store.
type Pending struct {
	ID       string    `json:"id"`
	Identity string    `json:"identity"`
	Name     string    `json:"name"`
	GameKey  string    `json:"game_key"`
	Score    int64     `json:"score"`
	XP       int64     `json:"xp"`
	At       time.Time `json:"at"`
}

// Outbox persists pending submissions so that XP earned offline survives
// restarts and is replayed on the next successful sync.
//
// Services sharing an Outbox coordinate through Claim: an entry is sent by
// at most one of them at a time. Services in other processes rely on the
// store ignoring a replayed submission id.
type Outbox struct {
	mu      sync.Mutex
	kv      core.KV
	claimed map[string]bool

	// raw and entries cache the last decoded value of OutboxKey.
	raw     string
	entries []Pending
}

// NewOutbox creates an outbox on kv.
func NewOutbox(kv core.KV) *Outbox {
	return &Outbox{kv: kv, claimed: make(map[string]bool)}
}

// Add appends p.
func (o *Outbox) Add(p Pending) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.save(append(slices.Clone(o.load()), p))
}

// Remove drops the entry with the given id.
func (o *Outbox) Remove(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.save(slices.DeleteFunc(slices.Clone(o.load()), func(p Pending) bool {
		return p.ID == id
	}))
}

// Claim marks the entry as being sent. It fails when the entry is gone or
// already claimed.
func (o *Outbox) Claim(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.claimed[id] || o.indexLocked(id) < 0 {
		return false
	}
	o.claimed[id] = true
	return true
}

// Release ends a claim taken with Claim.
func (o *Outbox) Release(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.claimed, id)
}

// List returns the pending entries of identity in submission order.
func (o *Outbox) List(identity string) []Pending {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []Pending
	for _, p := range o.load() {
		if p.Identity == identity {
			out = append(out, p)
		}
	}
	return out
}

// Claimed reports whether the entry is currently claimed.
func (o *Outbox) Claimed(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.claimed[id]
}

func (o *Outbox) indexLocked(id string) int {
	return slices.IndexFunc(o.load(), func(p Pending) bool { return p.ID == id })
}

// load returns the stored entries. The result is shared with the cache and
// must not be modified.
func (o *Outbox) load() []Pending {
	raw, ok := o.kv.Get(OutboxKey)
	if !ok || raw == "" {
		return nil
	}
	if raw == o.raw {
		return o.entries
	}
	var entries []Pending
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	o.raw, o.entries = raw, entries
	return entries
}

func (o *Outbox) save(entries []Pending) {
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	o.kv.Set(OutboxKey, string(data))
	o.raw, o.entries = string(data), entries
}
