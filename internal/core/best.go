package core

import "strconv"

// BestScore is a best score persisted under a fixed key.
type BestScore struct {
	key   string
	value int
	kv    KV
}

// NewBestScore creates an in-memory best score for key.
func NewBestScore(key string) *BestScore {
	return &BestScore{key: key}
}

// Load attaches kv and reads the stored value once. Unparseable or missing
// values leave the in-memory best untouched.
func (b *BestScore) Load(kv KV) {
	b.kv = kv
	if kv == nil {
		return
	}
	raw, ok := kv.Get(b.key)
	if !ok {
		return
	}
	if v, err := strconv.Atoi(raw); err == nil && v > b.value {
		b.value = v
	}
}

// Value returns the current best.
func (b *BestScore) Value() int {
	return b.value
}

// Offer records score if it beats the best and persists it.
// It reports whether the best changed.
func (b *BestScore) Offer(score int) bool {
	if score <= b.value {
		return false
	}
	b.value = score
	if b.kv != nil {
		b.kv.Set(b.key, strconv.Itoa(score))
	}
	return true
}
