package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/vovakirdan/retroplay/internal/core"
	"github.com/vovakirdan/retroplay/internal/identity"
	"github.com/vovakirdan/retroplay/internal/loop"
	"github.com/vovakirdan/retroplay/internal/profile"
	"github.com/vovakirdan/retroplay/internal/registry"
	"github.com/vovakirdan/retroplay/internal/storage"
)

func newTestApp(t *testing.T) (App, *stubGame, *profile.Service) {
	t.Helper()
	game := &stubGame{}
	kv := storage.NewMemory()
	svc := profile.New(profile.Options{
		KV:       kv,
		Identity: identity.Identity{ID: "user:alice", DisplayName: "alice"},
	})
	t.Cleanup(svc.Close)

	app := NewApp(AppOptions{
		Config:  core.RuntimeConfig{ScreenW: 60, ScreenH: 20, TickRate: 60},
		FPS:     60,
		KV:      kv,
		Profile: svc,
		Clock:   loop.NewFakeClock(time.Unix(0, 0)),
		NewGame: func(string) (registry.Game, error) { return game, nil },
	})
	return app, game, svc
}

func appStep(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	next, cmd := update(a, msg)
	app, ok := next.(App)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return app, cmd
}

func TestAppShowsPlayer(t *testing.T) {
	a, _, _ := newTestApp(t)
	view := ansi.Strip(a.View())
	if !strings.Contains(view, "alice") || !strings.Contains(view, "0 XP") {
		t.Errorf("menu does not show the player:\n%s", view)
	}
}

func TestAppRecordsFinishedSession(t *testing.T) {
	a, game, svc := newTestApp(t)

	a, _ = appStep(t, a, startGameMsg{name: "stub"})
	if a.mode != modeGame || !game.mounted {
		t.Fatal("game not started")
	}

	a, _ = appStep(t, a, GameOverMsg{GameKey: "stub_game", Score: 7})
	snap := svc.Snapshot()
	if snap.XP != 7 {
		t.Errorf("XP = %d, want 7", snap.XP)
	}
	if snap.Pending != 1 {
		t.Errorf("pending = %d, want 1 while offline", snap.Pending)
	}
	if !strings.Contains(ansi.Strip(a.View()), "+7 XP") {
		t.Error("HUD does not show the XP earned")
	}

	game.phase = core.PhaseOver
	a, _ = appStep(t, a, runeKey("b"))
	if a.mode != modeMenu {
		t.Fatalf("mode = %v, want menu", a.mode)
	}
	if !strings.Contains(ansi.Strip(a.View()), "7 XP") {
		t.Error("menu does not show the new XP")
	}
}

func TestAppOpensScoreboard(t *testing.T) {
	a, _, svc := newTestApp(t)
	svc.RecordSession("stub_game", 5)

	a, cmd := appStep(t, a, tea.KeyMsg{Type: tea.KeyTab})
	if a.mode != modeScores {
		t.Fatalf("mode = %v, want scores", a.mode)
	}
	for _, msg := range collect(cmd) {
		a, _ = appStep(t, a, msg)
	}
	view := ansi.Strip(a.View())
	if !strings.Contains(view, "alice (you)") {
		t.Errorf("scoreboard does not mark the player:\n%s", view)
	}

	a, _ = appStep(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.mode != modeMenu {
		t.Errorf("mode = %v, want menu", a.mode)
	}
}

func TestAppQuitFromMenu(t *testing.T) {
	a, _, _ := newTestApp(t)
	_, cmd := appStep(t, a, runeKey("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
