package storage

import (
	"sync"

	"github.com/vovakirdan/retroplay/internal/core"
)

// Memory is an in-process key/value store used when SQLite is unavailable
// and in tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Set stores value under key.
func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Namespaced prefixes every key of an underlying KV. The SSH server uses it
// to keep per-user best scores apart on a shared database.
type Namespaced struct {
	kv     core.KV
	prefix string
}

// NewNamespaced wraps kv so that keys are stored as prefix + ":" + key.
func NewNamespaced(kv core.KV, prefix string) *Namespaced {
	return &Namespaced{kv: kv, prefix: prefix + ":"}
}

func (n *Namespaced) Get(key string) (string, bool) {
	return n.kv.Get(n.prefix + key)
}

func (n *Namespaced) Set(key, value string) {
	n.kv.Set(n.prefix+key, value)
}
