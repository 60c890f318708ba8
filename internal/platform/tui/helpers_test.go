package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/retroplay/internal/core"
	"github.com/vovakirdan/retroplay/internal/loop"
	"github.com/vovakirdan/retroplay/internal/registry"
)

// stubGame counts taps; Confirm ends the session.
type stubGame struct {
	score   int
	phase   core.Phase
	dts     []float64
	hooks   core.Hooks
	mounted bool
}

func (g *stubGame) ID() string                  { return "stub_game" }
func (g *stubGame) Title() string               { return "Stub" }
func (g *stubGame) Reset(core.RuntimeConfig)    { g.score, g.phase = 0, core.PhaseRunning }
func (g *stubGame) Render(dst *core.Screen)     { dst.DrawText(0, 0, "stub") }
func (g *stubGame) Mount(h core.Hooks)          { g.hooks, g.mounted = h, true }
func (g *stubGame) Unmount()                    { g.hooks, g.mounted = core.Hooks{}, false }
func (g *stubGame) State() core.GameState       { return core.GameState{Score: g.score, Phase: g.phase} }
func (g *stubGame) steps() int                  { return len(g.dts) }
func (g *stubGame) lastDT() float64             { return g.dts[len(g.dts)-1] }
func (g *stubGame) over() bool                  { return g.phase == core.PhaseOver }
func (g *stubGame) registryGame() registry.Game { return g }

func (g *stubGame) Step(in core.InputFrame, dt float64) core.StepResult {
	g.dts = append(g.dts, dt)
	if g.phase != core.PhaseRunning {
		return core.StepResult{State: g.State()}
	}
	if in.Has(core.ActionTap) {
		g.score++
	}
	if in.Has(core.ActionConfirm) {
		g.phase = core.PhaseOver
		if g.hooks.OnGameOver != nil {
			g.hooks.OnGameOver(g.score)
		}
	}
	return core.StepResult{State: g.State()}
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestGameModel() (GameModel, *stubGame, *loop.FakeClock) {
	game := &stubGame{}
	clock := loop.NewFakeClock(time.Unix(0, 0))
	m := NewGameModel(game.registryGame(), GameOptions{
		Config: core.RuntimeConfig{ScreenW: 40, ScreenH: 12, TickRate: 60},
		FPS:    60,
		Clock:  clock,
	})
	return m, game, clock
}

func update(m tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.Update(msg)
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}

func gameOvers(msgs []tea.Msg) []GameOverMsg {
	var out []GameOverMsg
	for _, msg := range msgs {
		if over, ok := msg.(GameOverMsg); ok {
			out = append(out, over)
		}
	}
	return out
}
