// Package flappy implements the coin-through-pipes dodge game.
// A gravity-bound coin flaps through gaps in a stream of pipes scrolling
// from right to left; every pipe cleared scores a point.
package flappy

import (
	"fmt"

	"github.com/vovakirdan/retroplay/internal/config"
	"github.com/vovakirdan/retroplay/internal/core"
	"github.com/vovakirdan/retroplay/internal/registry"
)

const (
	// GameKey identifies the game for best scores and remote submissions.
	GameKey = "flappy_coin"
	// BestScoreKey is the local storage key of the best score.
	BestScoreKey = "flappyBestScore"
)

// Coin is the controllable agent.
type Coin struct {
	X, Y float64
	VY   float64
	R    float64
}

// Circle returns the collision shape of the coin.
func (c Coin) Circle() core.Circle {
	return core.Circle{X: c.X, Y: c.Y, R: c.R}
}

// Session is the state of one run. Restart replaces it wholesale.
type Session struct {
	Phase  core.Phase
	Score  int
	Coin   Coin
	Pipes  []Pipe
	Frames float64 // simulated frames since the run started

	overFired bool
}

// Game implements the coin-through-pipes engine.
type Game struct {
	cfg        config.FlappyConfig
	width      float64
	height     float64
	rng        core.RNG
	difficulty *config.DifficultyManager
	session    *Session
	best       *core.BestScore
	onGameOver func(score int)
}

// New creates a game using the configuration found on the search path.
func New() *Game {
	cfg, err := config.LoadFlappy("")
	if err != nil {
		cfg = config.DefaultFlappyConfig()
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a game with an explicit configuration.
func NewWithConfig(cfg config.FlappyConfig) *Game {
	g := &Game{
		cfg:        cfg,
		difficulty: config.NewDifficultyManager(cfg.Difficulty),
		best:       core.NewBestScore(BestScoreKey),
	}
	g.Reset(core.DefaultConfig())
	return g
}

// ID returns the game key.
func (g *Game) ID() string {
	return GameKey
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Flappy Coin"
}

// SetRNG replaces the randomness source. The next Reset or Restart uses it.
func (g *Game) SetRNG(rng core.RNG) {
	g.rng = rng
}

// Reset reseeds the engine and starts a fresh session.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.rng = core.NewRNG(cfg.Seed)
	g.Restart()
}

// Restart discards the session and creates a new one in NotStarted.
// The best score survives.
func (g *Game) Restart() {
	g.width = g.cfg.Field.Width
	g.height = g.cfg.Field.Height
	g.session = &Session{
		Phase: core.PhaseNotStarted,
		Coin: Coin{
			X: g.width * g.cfg.Coin.XRatio,
			Y: g.height / 2,
			R: g.cfg.Coin.Radius,
		},
	}

	count := max(g.cfg.Pipes.Count, 1)
	for range count {
		g.session.Pipes = append(g.session.Pipes, g.newPipe(g.spawnX()))
	}
}

// Mount attaches the host hooks and loads the persisted best score.
func (g *Game) Mount(h core.Hooks) {
	g.onGameOver = h.OnGameOver
	g.best.Load(h.Best)
}

// Unmount detaches the game-over callback.
func (g *Game) Unmount() {
	g.onGameOver = nil
}

// Tap starts a run from NotStarted, restarts a finished one, and in every
// case gives the coin the upward impulse.
func (g *Game) Tap() {
	switch g.session.Phase {
	case core.PhaseOver:
		g.Restart()
		g.session.Phase = core.PhaseRunning
	case core.PhaseNotStarted:
		g.session.Phase = core.PhaseRunning
	}
	g.session.Coin.VY = g.cfg.Physics.JumpImpulse
}

// Advance simulates dt frames. It does nothing unless the run is active.
func (g *Game) Advance(dt float64) {
	s := g.session
	if s.Phase != core.PhaseRunning {
		return
	}
	dt = core.ClampDelta(dt)
	s.Frames += dt

	c := &s.Coin
	c.Y, c.VY = core.Integrate(c.Y, c.VY, g.cfg.Physics.Gravity, dt)

	if c.Y+c.R >= g.height {
		c.Y = g.height - c.R
		g.end()
		return
	}
	if c.Y-c.R <= 0 {
		c.Y = c.R
		g.end()
		return
	}

	speed := g.difficulty.Speed(g.cfg.Physics.PipeSpeed, s.Score, s.Frames)
	for i := range s.Pipes {
		s.Pipes[i].X -= speed * dt
	}
	g.recycle()

	circle := c.Circle()
	for i := range s.Pipes {
		p := &s.Pipes[i]
		if circle.HitsColumn(p.Column()) {
			g.end()
			return
		}
		if !p.Passed && p.Right() < c.X {
			p.Passed = true
			s.Score++
			g.best.Offer(s.Score)
		}
	}
}

// end moves the session to Over and fires the callback once.
func (g *Game) end() {
	s := g.session
	s.Phase = core.PhaseOver
	g.best.Offer(s.Score)
	if s.overFired {
		return
	}
	s.overFired = true
	if g.onGameOver != nil {
		g.onGameOver(s.Score)
	}
}

// Step maps actions onto the engine: Tap flaps, Restart restarts a finished
// run. Then the simulation advances by dt.
func (g *Game) Step(in core.InputFrame, dt float64) core.StepResult {
	if in.Has(core.ActionTap) || in.Has(core.ActionUp) {
		g.Tap()
	} else if in.Has(core.ActionRestart) && g.session.Phase == core.PhaseOver {
		g.Restart()
	}
	g.Advance(dt)
	return core.StepResult{State: g.State()}
}

// Session returns the current session. Callers must not retain it across
// Restart.
func (g *Game) Session() *Session {
	return g.session
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:     g.session.Score,
		BestScore: g.best.Value(),
		Phase:     g.session.Phase,
	}
}

// Visual characters for rendering
const (
	coinChar      = '●'
	pipeChar      = '█'
	pipeCapTop    = '▀'
	pipeCapBottom = '▄'
)

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	s := g.session
	v := dst.PlayfieldViewport(g.width, g.height, core.ColorGray)

	for _, p := range s.Pipes {
		g.drawPipe(dst, v, p)
	}

	cx, cy := v.Cell(s.Coin.X, s.Coin.Y)
	if v.Contains(cx, cy) {
		dst.SetColored(cx, cy, coinChar, core.ColorBrightYellow)
	}

	dst.DrawText(1, 0, fmt.Sprintf("Score: %d  Best: %d", s.Score, g.best.Value()))

	switch s.Phase {
	case core.PhaseNotStarted:
		dst.DrawMessageBox("FLAPPY COIN", "Press SPACE to flap", core.ColorBrightYellow)
	case core.PhaseOver:
		dst.DrawMessageBox("GAME OVER", fmt.Sprintf("Score: %d  |  SPACE to retry", s.Score), core.ColorBrightRed)
	}
}

func (g *Game) drawPipe(dst *core.Screen, v core.Viewport, p Pipe) {
	left, gapTop := v.Cell(p.X, p.GapTop)
	_, gapBottom := v.Cell(p.X, p.GapTop+p.GapHeight)
	width := v.Span(p.Width)

	for x := left; x < left+width; x++ {
		for y := v.Area.Y; y < v.Area.Bottom(); y++ {
			if !v.Contains(x, y) || (y > gapTop && y < gapBottom) {
				continue
			}
			ch := pipeChar
			switch y {
			case gapTop:
				ch = pipeCapTop
			case gapBottom:
				ch = pipeCapBottom
			}
			dst.SetColored(x, y, ch, core.ColorGreen)
		}
	}
}

func init() {
	registry.Register(GameKey, "flappy", func() registry.Game {
		return New()
	})
}
