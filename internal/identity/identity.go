// Package identity resolves the stable identity a player's scores and XP are
// recorded under.
package identity

import (
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/vovakirdan/retroplay/internal/core"
	"github.com/vovakirdan/retroplay/internal/remote"
)

const (
	// GuestID is used when nothing better is available.
	GuestID = "guest"
	// GuestName is the display name of guest identities.
	GuestName = "Guest"

	// DeviceKey stores the generated per-device guest id.
	DeviceKey = "retroplay_device_id"

	maxNameLen = 100
)

// Identity is a stable id plus a human-readable name.
type Identity struct {
	ID          string
	DisplayName string
}

// Guest reports whether the identity is a guest identity.
func (i Identity) Guest() bool {
	return i.ID == GuestID || strings.HasPrefix(i.ID, GuestID+"-")
}

// Source lists the candidates Resolve chooses from, most specific first.
type Source struct {
	// Explicit is the name passed with --user.
	Explicit string
	// SSHUser is the user of an SSH session.
	SSHUser string
	// Env looks up environment variables. Nil means os.Getenv; tests pass
	// a stub that returns "" to skip the OS user.
	Env func(string) string
	// KV persists the device guest id. Nil disables device guests.
	KV core.KV
	// NewID generates a device guest suffix. Nil means uuid.NewString.
	NewID func() string
}

// Resolve picks the identity: explicit name, SSH user, OS user, then a
// persisted per-device guest, then the constant guest.
func Resolve(src Source) Identity {
	if id, ok := named("user", src.Explicit); ok {
		return id
	}
	if id, ok := named("ssh", src.SSHUser); ok {
		return id
	}

	env := src.Env
	if env == nil {
		env = os.Getenv
	}
	for _, key := range []string{"USER", "USERNAME"} {
		if id, ok := named("local", env(key)); ok {
			return id
		}
	}

	if src.KV != nil {
		return deviceGuest(src.KV, src.NewID)
	}
	return Identity{ID: GuestID, DisplayName: GuestName}
}

func named(kind, name string) (Identity, bool) {
	name = strings.TrimSpace(name)
	slug := sanitize(name)
	if slug == "" {
		return Identity{}, false
	}
	if runes := []rune(name); len(runes) > maxNameLen {
		name = string(runes[:maxNameLen])
	}
	return Identity{ID: kind + ":" + slug, DisplayName: name}, true
}

func deviceGuest(kv core.KV, newID func() string) Identity {
	if id, ok := kv.Get(DeviceKey); ok && remote.ValidateStableID(id) == nil {
		return Identity{ID: id, DisplayName: GuestName}
	}
	if newID == nil {
		newID = uuid.NewString
	}
	id := GuestID + "-" + sanitize(newID())
	kv.Set(DeviceKey, id)
	return Identity{ID: id, DisplayName: GuestName}
}

// sanitize maps name onto the stable id alphabet.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-', r == '@':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
		if b.Len() >= maxNameLen {
			break
		}
	}
	return strings.Trim(b.String(), "_")
}
