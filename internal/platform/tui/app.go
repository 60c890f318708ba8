package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/retroplay/internal/core"
	"github.com/vovakirdan/retroplay/internal/loop"
	"github.com/vovakirdan/retroplay/internal/profile"
	"github.com/vovakirdan/retroplay/internal/registry"
)

// AppOptions configures an App.
type AppOptions struct {
	Config core.RuntimeConfig
	FPS    int
	// KV persists engine best scores.
	KV core.KV
	// Profile receives finished sessions and serves leaderboards.
	Profile *profile.Service
	Clock   loop.Clock
	// StartGame opens this game directly instead of the menu.
	StartGame string
	// NewGame creates engines. Nil uses registry.Create.
	NewGame func(name string) (registry.Game, error)
}

type appMode int

const (
	modeMenu appMode = iota
	modeGame
	modeScores
)

type profileEventMsg profile.Event

// App is the top-level model: menu, game and leaderboards.
type App struct {
	opts     AppOptions
	mode     appMode
	menu     MenuModel
	game     *GameModel
	scores   ScoreboardModel
	width    int
	height   int
	lastXP   int64
	status   string
	quitting bool
}

// NewApp creates the application model.
func NewApp(opts AppOptions) App {
	if opts.NewGame == nil {
		opts.NewGame = registry.Create
	}
	if opts.Profile == nil {
		opts.Profile = profile.New(profile.Options{KV: opts.KV})
	}
	a := App{
		opts:   opts,
		width:  opts.Config.ScreenW,
		height: opts.Config.ScreenH,
		menu:   NewMenuModel(opts.Config.ScreenW, opts.Config.ScreenH),
	}
	a.refreshProfile()
	return a
}

func waitForEvent(events <-chan profile.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return profileEventMsg(ev)
	}
}

// Init starts listening for profile events and opens the first screen.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(a.opts.Profile.Events())}
	if a.opts.StartGame != "" {
		cmds = append(cmds, func() tea.Msg { return startGameMsg{name: a.opts.StartGame} })
	}
	return tea.Batch(cmds...)
}

type startGameMsg struct {
	name string
}

// Update routes messages to the active screen.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.opts.Config.ScreenW, a.opts.Config.ScreenH = msg.Width, msg.Height

	case startGameMsg:
		return a.startGame(msg.name)

	case profileEventMsg:
		return a.handleProfileEvent(profile.Event(msg))

	case GameOverMsg:
		xp := a.opts.Profile.RecordSession(msg.GameKey, msg.Score)
		a.refreshProfile()
		if a.game != nil {
			a.game.SetHUD(fmt.Sprintf("+%d XP  ·  %d XP", xp, a.lastXP))
		}
		return a, nil

	case tea.FocusMsg:
		a.opts.Profile.Foreground()
	}

	switch a.mode {
	case modeGame:
		return a.updateGame(msg)
	case modeScores:
		return a.updateScores(msg)
	default:
		return a.updateMenu(msg)
	}
}

func (a App) handleProfileEvent(ev profile.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case profile.EventLeaderboard:
		if a.mode == modeScores {
			a.scores.Apply(ev.Board)
		}
	case profile.EventSyncFailed:
		a.status = "offline"
	case profile.EventSynced:
		a.status = ""
	}
	a.refreshProfile()
	if a.game != nil {
		a.game.SetHUD(fmt.Sprintf("%d XP", a.lastXP))
	}
	return a, waitForEvent(a.opts.Profile.Events())
}

func (a *App) refreshProfile() {
	snap := a.opts.Profile.Snapshot()
	a.lastXP = snap.XP
	status := a.status
	if snap.Pending > 0 {
		status = fmt.Sprintf("%d pending", snap.Pending)
	}
	a.menu.SetProfile(snap.Identity.DisplayName, snap.XP, status)
}

func (a App) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.menu.Update(msg)
	a.menu = next.(MenuModel)

	switch {
	case a.menu.IsQuitting():
		a.quitting = true
		return a, tea.Quit
	case a.menu.WantsScoreboard():
		a.mode = modeScores
		a.scores = NewScoreboardModel(a.opts.Profile, a.opts.Profile.Snapshot().Identity.ID, a.width, a.height)
		a.menu = a.freshMenu()
		return a, a.scores.Init()
	case a.menu.Selected() != nil:
		name := a.menu.Selected().GameID
		a.menu = a.freshMenu()
		return a.startGame(name)
	}
	return a, cmd
}

func (a App) startGame(name string) (tea.Model, tea.Cmd) {
	game, err := a.opts.NewGame(name)
	if err != nil {
		a.status = err.Error()
		a.refreshProfile()
		a.mode = modeMenu
		return a, nil
	}
	cfg := a.opts.Config
	cfg.ScreenW, cfg.ScreenH = a.width, a.height
	gm := NewGameModel(game, GameOptions{
		Config: cfg,
		FPS:    a.opts.FPS,
		Best:   a.opts.KV,
		Clock:  a.opts.Clock,
	})
	gm.SetHUD(fmt.Sprintf("%d XP", a.lastXP))
	a.game = &gm
	a.mode = modeGame
	return a, gm.Init()
}

func (a App) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.game.Update(msg)
	gm := next.(GameModel)
	a.game = &gm

	switch {
	case gm.IsQuitting():
		a.quitting = true
		return a, tea.Quit
	case gm.BackToMenu():
		a.game = nil
		a.mode = modeMenu
		a.refreshProfile()
		return a, nil
	}
	return a, cmd
}

func (a App) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.scores.Update(msg)
	a.scores = next.(ScoreboardModel)

	switch {
	case a.scores.IsQuitting():
		a.quitting = true
		return a, tea.Quit
	case a.scores.IsGoingBack():
		a.mode = modeMenu
		return a, nil
	}
	return a, cmd
}

func (a App) freshMenu() MenuModel {
	m := NewMenuModel(a.width, a.height)
	snap := a.opts.Profile.Snapshot()
	m.SetProfile(snap.Identity.DisplayName, snap.XP, a.status)
	return m
}

// View renders the active screen.
func (a App) View() string {
	if a.quitting {
		return ""
	}
	switch a.mode {
	case modeGame:
		return a.game.View()
	case modeScores:
		return a.scores.View()
	default:
		return a.menu.View()
	}
}

// Run starts the application in the current terminal.
func Run(ctx context.Context, opts AppOptions) error {
	p := tea.NewProgram(NewApp(opts),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
