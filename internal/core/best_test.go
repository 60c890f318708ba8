package core

import "testing"

type mapKV map[string]string

func (m mapKV) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapKV) Set(key, value string) { m[key] = value }

func TestBestScore(t *testing.T) {
	kv := mapKV{"best": "7"}
	b := NewBestScore("best")
	b.Load(kv)

	if b.Value() != 7 {
		t.Fatalf("Value() = %d, expected 7", b.Value())
	}
	if b.Offer(5) {
		t.Error("Offer(5) should not beat 7")
	}
	if !b.Offer(9) {
		t.Error("Offer(9) should beat 7")
	}
	if kv["best"] != "9" {
		t.Errorf("persisted = %q, expected 9", kv["best"])
	}
}

func TestBestScoreIgnoresGarbage(t *testing.T) {
	b := NewBestScore("best")
	b.Load(mapKV{"best": "not-a-number"})
	if b.Value() != 0 {
		t.Errorf("Value() = %d, expected 0", b.Value())
	}
}
