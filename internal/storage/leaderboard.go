package storage

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/vovakirdan/retroplay/internal/core"
)

// DefaultCacheCap is the number of entries kept per game.
const DefaultCacheCap = 20

// LocalEntry is one row of the per-device leaderboard.
type LocalEntry struct {
	Identity string    `json:"identity"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	At       time.Time `json:"at"`
}

// Leaderboard is the per-device leaderboard cache: the best score of each
// identity per game, highest first, capped. Entries are stored as JSON in a
// key/value store under retroplay_leaderboard_<gameKey>.
type Leaderboard struct {
	kv  core.KV
	cap int
	now func() time.Time

	mu sync.Mutex
}

// NewLeaderboard creates a cache on top of kv. capacity <= 0 uses
// DefaultCacheCap.
func NewLeaderboard(kv core.KV, capacity int) *Leaderboard {
	if capacity <= 0 {
		capacity = DefaultCacheCap
	}
	return &Leaderboard{kv: kv, cap: capacity, now: time.Now}
}

func leaderboardKey(gameKey string) string {
	return "retroplay_leaderboard_" + gameKey
}

// Record keeps score if it is the identity's best for gameKey.
// Non-positive scores are ignored. It reports whether the cache changed.
func (l *Leaderboard) Record(gameKey, identity, name string, score int) bool {
	if score <= 0 || identity == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.load(gameKey)
	found := false
	for i := range entries {
		if entries[i].Identity != identity {
			continue
		}
		found = true
		if score <= entries[i].Score {
			return false
		}
		entries[i].Score = score
		entries[i].Name = name
		entries[i].At = l.now()
	}
	if !found {
		entries = append(entries, LocalEntry{Identity: identity, Name: name, Score: score, At: l.now()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > l.cap {
		entries = entries[:l.cap]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return false
	}
	l.kv.Set(leaderboardKey(gameKey), string(data))
	return true
}

// Top returns up to limit entries for gameKey, highest first.
func (l *Leaderboard) Top(gameKey string, limit int) []LocalEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.load(gameKey)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// load reads the cached entries. Corrupt data reads as an empty board.
func (l *Leaderboard) load(gameKey string) []LocalEntry {
	raw, ok := l.kv.Get(leaderboardKey(gameKey))
	if !ok {
		return nil
	}
	var entries []LocalEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}
