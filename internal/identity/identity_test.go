package identity

import (
	"testing"

	"github.com/vovakirdan/retroplay/internal/storage"
)

func noEnv(string) string { return "" }

func TestResolvePriority(t *testing.T) {
	env := func(key string) string {
		if key == "USER" {
			return "osuser"
		}
		return ""
	}

	tests := []struct {
		name string
		src  Source
		want Identity
	}{
		{"explicit wins", Source{Explicit: "Alice", SSHUser: "bob", Env: env}, Identity{"user:alice", "Alice"}},
		{"ssh user", Source{SSHUser: "bob", Env: env}, Identity{"ssh:bob", "bob"}},
		{"os user", Source{Env: env}, Identity{"local:osuser", "osuser"}},
		{"blank explicit skipped", Source{Explicit: "   ", Env: env}, Identity{"local:osuser", "osuser"}},
		{"spaces become underscores", Source{Explicit: "Jane Doe", Env: noEnv}, Identity{"user:jane_doe", "Jane Doe"}},
		{"constant guest", Source{Env: noEnv}, Identity{GuestID, GuestName}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.src); got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDeviceGuestIsPersisted(t *testing.T) {
	kv := storage.NewMemory()
	calls := 0
	newID := func() string {
		calls++
		return "1234"
	}

	first := Resolve(Source{Env: noEnv, KV: kv, NewID: newID})
	second := Resolve(Source{Env: noEnv, KV: kv, NewID: newID})

	if first.ID != "guest-1234" || first.DisplayName != GuestName {
		t.Fatalf("first = %+v", first)
	}
	if second != first {
		t.Errorf("second = %+v, want %+v", second, first)
	}
	if calls != 1 {
		t.Errorf("NewID called %d times, want 1", calls)
	}
	if !first.Guest() {
		t.Error("device guest should report Guest()")
	}
}

func TestCorruptDeviceIDIsReplaced(t *testing.T) {
	kv := storage.NewMemory()
	kv.Set(DeviceKey, "not valid!")

	got := Resolve(Source{Env: noEnv, KV: kv, NewID: func() string { return "abcd" }})
	if got.ID != "guest-abcd" {
		t.Errorf("ID = %q, want guest-abcd", got.ID)
	}
	if v, _ := kv.Get(DeviceKey); v != "guest-abcd" {
		t.Errorf("stored %q", v)
	}
}

func TestGuest(t *testing.T) {
	if (Identity{ID: "user:guesthouse"}).Guest() {
		t.Error("named user reported as guest")
	}
	if !(Identity{ID: GuestID}).Guest() {
		t.Error("constant guest not reported as guest")
	}
}
