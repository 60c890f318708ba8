package tui

import (
	"path/filepath"
	"testing"

	"github.com/vovakirdan/retroplay/internal/identity"
	"github.com/vovakirdan/retroplay/internal/storage"
)

func TestSessionIdentity(t *testing.T) {
	t.Setenv("USER", "hostuser")

	if got := sessionIdentity("Alice"); got.ID != "ssh:alice" || got.DisplayName != "Alice" {
		t.Errorf("sessionIdentity(Alice) = %+v", got)
	}
	if got := sessionIdentity(""); got.ID != identity.GuestID {
		t.Errorf("anonymous session should play as guest, got %+v", got)
	}
}

func TestNewSSHServer(t *testing.T) {
	cfg := DefaultSSHServerConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.HostKeyPath = filepath.Join(t.TempDir(), "keys", "host_key")

	srv, err := NewSSHServer(cfg, storage.NewMemory(), nil, nil)
	if err != nil {
		t.Fatalf("NewSSHServer: %v", err)
	}
	if srv.Addr() != "127.0.0.1:0" {
		t.Errorf("Addr() = %q", srv.Addr())
	}
	if srv.outbox == nil || srv.board == nil {
		t.Error("shared outbox and board not created")
	}
}
