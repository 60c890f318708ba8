// Package merge implements the 2048 sliding-tile puzzle.
package merge

import (
	"github.com/vovakirdan/retroplay/internal/config"
	"github.com/vovakirdan/retroplay/internal/core"
	"github.com/vovakirdan/retroplay/internal/registry"
)

const (
	// GameKey identifies the game for best scores and remote submissions.
	GameKey = "merge_2048"
	// BestScoreKey is the local storage key of the best score.
	BestScoreKey = "merge2048BestScore"
)

// Game implements the 2048 engine. The board is live from the first frame,
// so sessions start in Running.
type Game struct {
	cfg        config.MergeConfig
	rng        core.RNG
	board      Board
	score      int
	moves      int
	phase      core.Phase
	overFired  bool
	best       *core.BestScore
	onGameOver func(score int)
}

// New creates a game using the configuration found on the search path.
func New() *Game {
	cfg, err := config.LoadMerge("")
	if err != nil {
		cfg = config.DefaultMergeConfig()
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a game with an explicit configuration.
func NewWithConfig(cfg config.MergeConfig) *Game {
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
	return "2048"
}

// SetRNG replaces the randomness source used for spawns.
func (g *Game) SetRNG(rng core.RNG) {
	g.rng = rng
}

// Reset reseeds the engine and starts a fresh board.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.rng = core.NewRNG(cfg.Seed)
	g.Restart()
}

// Restart clears the board and spawns the initial tiles. The best score
// survives.
func (g *Game) Restart() {
	g.board = Board{}
	g.score = 0
	g.moves = 0
	g.phase = core.PhaseRunning
	g.overFired = false
	for range max(g.cfg.InitialTiles, 1) {
		Spawn(&g.board, g.rng, g.cfg.FourProbability)
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

// Move applies a swipe. A swipe that changes nothing is rejected: no score,
// no spawn. It reports whether the move was accepted.
func (g *Game) Move(dir Direction) bool {
	if g.phase == core.PhaseOver {
		return false
	}

	next, gained, changed := Move(g.board, dir)
	if !changed {
		return false
	}

	g.board = next
	g.score += gained
	g.moves++
	Spawn(&g.board, g.rng, g.cfg.FourProbability)

	if !HasMoves(g.board) {
		g.end()
	}
	return true
}

func (g *Game) end() {
	g.phase = core.PhaseOver
	g.best.Offer(g.score)
	if g.overFired {
		return
	}
	g.overFired = true
	if g.onGameOver != nil {
		g.onGameOver(g.score)
	}
}

// Step maps directional actions to swipes; Tap or Restart start a new board
// once the game is over.
func (g *Game) Step(in core.InputFrame, _ float64) core.StepResult {
	if g.phase == core.PhaseOver {
		if in.Has(core.ActionRestart) || in.Has(core.ActionTap) {
			g.Restart()
		}
		return core.StepResult{State: g.State()}
	}

	switch {
	case in.Has(core.ActionUp):
		g.Move(DirUp)
	case in.Has(core.ActionDown):
		g.Move(DirDown)
	case in.Has(core.ActionLeft):
		g.Move(DirLeft)
	case in.Has(core.ActionRight):
		g.Move(DirRight)
	}
	return core.StepResult{State: g.State()}
}

// Board returns a copy of the current board.
func (g *Game) Board() Board {
	return g.board
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:     g.score,
		BestScore: g.best.Value(),
		Phase:     g.phase,
	}
}

func init() {
	registry.Register(GameKey, "merge", func() registry.Game {
		return New()
	})
}
