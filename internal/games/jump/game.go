// Package jump implements the platform jumper: a coin bounces upward from
// platform to platform, the world scrolls as it climbs, and every platform
// touched for the first time scores a point.
package jump

import (
	"fmt"

	"github.com/vovakirdan/retroplay/internal/config"
	"github.com/vovakirdan/retroplay/internal/core"
	"github.com/vovakirdan/retroplay/internal/registry"
)

const (
	// GameKey identifies the game for best scores and remote submissions.
	GameKey = "jump_coin"
	// BestScoreKey is the local storage key of the best score.
	BestScoreKey = "jumpCoinBestScore"
)

// Side selects the direction of a directional tap.
type Side int

const (
	SideLeft Side = iota
	SideRight
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
	Phase     core.Phase
	Score     int
	Coin      Coin
	Platforms []Platform
	Climbed   float64 // total world scroll

	overFired bool
}

// Game implements the platform jumper engine.
type Game struct {
	cfg        config.JumpConfig
	width      float64
	height     float64
	rng        core.RNG
	session    *Session
	best       *core.BestScore
	onGameOver func(score int)
}

// New creates a game using the configuration found on the search path.
func New() *Game {
	cfg, err := config.LoadJump("")
	if err != nil {
		cfg = config.DefaultJumpConfig()
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a game with an explicit configuration.
func NewWithConfig(cfg config.JumpConfig) *Game {
	g := &Game{cfg: cfg, best: core.NewBestScore(BestScoreKey)}
	g.Reset(core.DefaultConfig())
	return g
}

// ID returns the game key.
func (g *Game) ID() string {
	return GameKey
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Jump Coin"
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

// Restart builds the initial platform ladder and parks the coin on the
// lowest platform, which counts as already consumed.
func (g *Game) Restart() {
	g.width = g.cfg.Field.Width
	g.height = g.cfg.Field.Height
	pc := g.cfg.Platforms

	s := &Session{Phase: core.PhaseNotStarted}
	base := g.height - pc.BaseOffset
	for i := range max(pc.Count, 1) {
		s.Platforms = append(s.Platforms, g.newPlatform(base-float64(i)*pc.VerticalGap))
	}
	start := &s.Platforms[0]
	start.Consumed = true
	s.Coin = Coin{
		X: start.X + start.Width/2,
		Y: start.Y - g.cfg.Coin.StartOffset,
		R: g.cfg.Coin.Radius,
	}
	g.session = s
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

// TapDirectional restarts a finished run, starts a fresh one with a jump,
// or shifts the running coin one step toward side, wrapping at the edges.
func (g *Game) TapDirectional(side Side) {
	s := g.session
	switch s.Phase {
	case core.PhaseOver:
		g.Restart()
	case core.PhaseNotStarted:
		s.Phase = core.PhaseRunning
		s.Coin.VY = g.cfg.Physics.JumpImpulse
	default:
		step := g.cfg.Physics.SideStep
		if side == SideLeft {
			step = -step
		}
		s.Coin.X = core.Wrap(s.Coin.X+step, g.width, s.Coin.R)
	}
}

// Tap starts or restarts a run. It has no effect while running.
func (g *Game) Tap() {
	if g.session.Phase != core.PhaseRunning {
		g.TapDirectional(SideRight)
	}
}

// Advance simulates dt frames. It does nothing unless the run is active.
func (g *Game) Advance(dt float64) {
	s := g.session
	if s.Phase != core.PhaseRunning {
		return
	}
	dt = core.ClampDelta(dt)

	c := &s.Coin
	prevBottom := c.Y + c.R
	c.Y, c.VY = core.Integrate(c.Y, c.VY, g.cfg.Physics.Gravity, dt)

	threshold := g.height * g.cfg.Physics.ScrollThreshold
	if c.Y < threshold && c.VY < 0 {
		shift := threshold - c.Y
		c.Y = threshold
		prevBottom += shift
		s.Climbed += shift
		for i := range s.Platforms {
			s.Platforms[i].Y += shift
		}
	}

	c.X = core.Wrap(c.X, g.width, c.R)

	if c.Y-c.R > g.height {
		c.Y = g.height + c.R
		g.end()
		return
	}

	if c.VY > 0 {
		circle := c.Circle()
		for i := range s.Platforms {
			p := &s.Platforms[i]
			if !circle.LandsOn(p.Box(), prevBottom, c.VY) {
				continue
			}
			c.Y = p.Y - c.R
			c.VY = g.cfg.Physics.JumpImpulse
			if !p.Consumed {
				p.Consumed = true
				s.Score++
				g.best.Offer(s.Score)
			}
			break
		}
	}

	g.refill()
}

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

// Step maps actions onto the engine, then advances by dt.
func (g *Game) Step(in core.InputFrame, dt float64) core.StepResult {
	switch {
	case in.Has(core.ActionLeft):
		g.TapDirectional(SideLeft)
	case in.Has(core.ActionRight):
		g.TapDirectional(SideRight)
	case in.Has(core.ActionTap), in.Has(core.ActionUp):
		g.Tap()
	case in.Has(core.ActionRestart) && g.session.Phase == core.PhaseOver:
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

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	s := g.session
	v := dst.PlayfieldViewport(g.width, g.height, core.ColorGray)

	for _, p := range s.Platforms {
		x, y := v.Cell(p.X, p.Y)
		color := core.ColorBrightGreen
		if p.Consumed {
			color = core.ColorGreen
		}
		for dx := range v.Span(p.Width) {
			if v.Contains(x+dx, y) {
				dst.SetColored(x+dx, y, '▬', color)
			}
		}
	}

	cx, cy := v.Cell(s.Coin.X, s.Coin.Y)
	if v.Contains(cx, cy) {
		dst.SetColored(cx, cy, '●', core.ColorBrightYellow)
	}

	dst.DrawText(1, 0, fmt.Sprintf("Score: %d  Best: %d", s.Score, g.best.Value()))

	switch s.Phase {
	case core.PhaseNotStarted:
		dst.DrawMessageBox("JUMP COIN", "SPACE to jump, arrows to steer", core.ColorBrightYellow)
	case core.PhaseOver:
		dst.DrawMessageBox("GAME OVER", fmt.Sprintf("Score: %d  |  SPACE to retry", s.Score), core.ColorBrightRed)
	}
}

func init() {
	registry.Register(GameKey, "jump", func() registry.Game {
		return New()
	})
}
