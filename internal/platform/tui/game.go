package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/retroplay/internal/core"
	"github.com/vovakirdan/retroplay/internal/loop"
	"github.com/vovakirdan/retroplay/internal/registry"
)

// GameOverMsg reports a finished session to the host.
type GameOverMsg struct {
	GameKey string
	Score   int
}

// GameOptions configures a GameModel.
type GameOptions struct {
	Config core.RuntimeConfig
	FPS    int
	// Best persists the engine's best score.
	Best core.KV
	// Clock drives the scheduler. Nil uses the system clock.
	Clock loop.Clock
}

// finished collects game-over callbacks fired during a frame. It is shared
// by value copies of the model.
type finished struct {
	scores []int
}

func (f *finished) drain() []int {
	out := f.scores
	f.scores = nil
	return out
}

// GameModel mounts one engine: keys become actions, frames become scheduler
// ticks, and the engine's game-over callback becomes a GameOverMsg.
type GameModel struct {
	game   registry.Game
	screen *core.Screen
	sched  *loop.Scheduler
	input  *core.InputFrame
	done   *finished
	keys   *KeyMapper
	fps    int

	hud        string
	autoPaused bool
	backToMenu bool
	quitting   bool
}

// NewGameModel mounts game and starts its scheduler.
func NewGameModel(game registry.Game, opts GameOptions) GameModel {
	cfg := opts.Config
	if cfg.ScreenW <= 0 || cfg.ScreenH <= 0 {
		def := core.DefaultConfig()
		cfg.ScreenW, cfg.ScreenH = def.ScreenW, def.ScreenH
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = cfg.TickRate
	}

	m := GameModel{
		game:   game,
		screen: core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		sched:  loop.NewScheduler(opts.Clock),
		done:   &finished{},
		keys:   NewKeyMapper(),
		fps:    fps,
	}
	in := core.NewInputFrame()
	m.input = &in

	game.Reset(cfg)
	game.Mount(core.Hooks{
		OnGameOver: func(score int) { m.done.scores = append(m.done.scores, score) },
		Best:       opts.Best,
	})
	m.sched.Start(m.tick)
	return m
}

func (m GameModel) tick(dt float64) {
	m.game.Step(*m.input, dt)
	m.input.Clear()
}

// Init starts the frame loop.
func (m GameModel) Init() tea.Cmd {
	return frameCmd(m.fps)
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case tea.BlurMsg:
		if m.sched.Running() {
			m.sched.Stop()
			m.autoPaused = true
		}
		return m, nil

	case tea.FocusMsg:
		if m.autoPaused {
			m.sched.Resume()
			m.autoPaused = false
		}
		return m, nil

	case FrameMsg:
		return m.handleFrame()
	}
	return m, nil
}

func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keys.MapKey(msg)
	switch {
	case isQuit:
		m.Unmount()
		m.quitting = true
		return m, nil
	case action == core.ActionPause:
		m.togglePause()
		return m, nil
	case action == core.ActionBack && (m.Paused() || m.game.State().Phase != core.PhaseRunning):
		m.Unmount()
		m.backToMenu = true
		return m, nil
	case action != core.ActionNone:
		m.input.Set(action)
	}
	return m, nil
}

func (m *GameModel) togglePause() {
	if m.sched.Running() {
		m.sched.Stop()
	} else {
		m.sched.Resume()
	}
	m.autoPaused = false
}

func (m GameModel) handleFrame() (tea.Model, tea.Cmd) {
	if m.backToMenu || m.quitting {
		return m, nil
	}
	m.sched.Frame()

	cmds := []tea.Cmd{frameCmd(m.fps)}
	for _, score := range m.done.drain() {
		msg := GameOverMsg{GameKey: m.game.ID(), Score: score}
		cmds = append(cmds, func() tea.Msg { return msg })
	}
	return m, tea.Batch(cmds...)
}

// Unmount stops the scheduler and detaches the engine.
func (m GameModel) Unmount() {
	m.sched.Stop()
	m.game.Unmount()
}

// SetHUD sets the text drawn at the right of the status line.
func (m *GameModel) SetHUD(text string) {
	m.hud = text
}

// Paused reports whether the scheduler is stopped.
func (m GameModel) Paused() bool {
	return !m.sched.Running()
}

// State returns the engine state.
func (m GameModel) State() core.GameState {
	return m.game.State()
}

// View renders the game.
func (m GameModel) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}
	m.screen.Clear()
	m.game.Render(m.screen)
	if m.hud != "" {
		x := m.screen.Width() - len([]rune(m.hud)) - 1
		m.screen.DrawTextColored(max(x, 0), 0, m.hud, core.ColorCyan)
	}
	if m.Paused() {
		m.screen.DrawMessageBox("PAUSED", fmt.Sprintf("%s  |  P to resume, B for menu", m.game.Title()), core.ColorYellow)
	}
	return RenderScreen(m.screen)
}

// IsQuitting reports whether the player asked to quit.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu reports whether the player left the game.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}
