package merge

import (
	"testing"

	"github.com/vovakirdan/retroplay/internal/config"
	"github.com/vovakirdan/retroplay/internal/core"
)

// scriptRNG replays fixed values; exhausted slices yield zero.
type scriptRNG struct {
	ints   []int
	floats []float64
}

func (r *scriptRNG) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptRNG) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func newTestGame(board Board) *Game {
	g := NewWithConfig(config.DefaultMergeConfig())
	g.SetRNG(&scriptRNG{})
	g.board = board
	return g
}

func TestRestartSpawnsInitialTiles(t *testing.T) {
	g := NewWithConfig(config.DefaultMergeConfig())
	g.SetRNG(&scriptRNG{})
	g.Restart()

	if n := BoardSize*BoardSize - len(EmptyCells(g.Board())); n != 2 {
		t.Errorf("tiles after restart = %d, expected 2", n)
	}
	if g.State().Phase != core.PhaseRunning {
		t.Errorf("Phase = %v, expected Running", g.State().Phase)
	}
}

func TestRejectedMoveLeavesBoard(t *testing.T) {
	board := Board{{2, 4, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}
	g := newTestGame(board)

	if g.Move(DirLeft) {
		t.Error("Move(left) should be rejected")
	}
	if g.Board() != board || g.State().Score != 0 {
		t.Errorf("rejected move changed state: %v score %d", g.Board(), g.State().Score)
	}
}

func TestAcceptedMoveScoresAndSpawns(t *testing.T) {
	g := newTestGame(Board{{2, 2, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}})

	if !g.Move(DirLeft) {
		t.Fatal("Move(left) should be accepted")
	}
	b := g.Board()
	if b[0][0] != 4 {
		t.Errorf("merged tile = %d, expected 4", b[0][0])
	}
	if g.State().Score != 4 {
		t.Errorf("Score = %d, expected 4", g.State().Score)
	}
	// scriptRNG picks the first empty cell and rolls 0.5 -> a 2.
	if b[0][1] != 2 {
		t.Errorf("spawned tile = %d at (0,1), expected 2", b[0][1])
	}
}

func TestGameOverFiresOnce(t *testing.T) {
	// One legal move left: the 2s merge, a 2 respawns into the freed cell and
	// the board locks.
	g := newTestGame(Board{
		{2, 2, 8, 16},
		{8, 16, 2, 4},
		{4, 2, 8, 16},
		{2, 8, 16, 2},
	})
	kv := kvMap{}
	calls, final := 0, -1
	g.Mount(core.Hooks{Best: kv, OnGameOver: func(score int) {
		calls++
		final = score
	}})

	if !g.Move(DirLeft) {
		t.Fatal("Move(left) should be accepted")
	}
	if !g.State().Over() {
		t.Fatalf("expected game over, board %v", g.Board())
	}
	if g.Move(DirRight) {
		t.Error("moves after game over should be rejected")
	}
	g.Step(core.NewInputFrame(), 0)

	if calls != 1 {
		t.Errorf("OnGameOver calls = %d, expected 1", calls)
	}
	if final != 4 {
		t.Errorf("final score = %d, expected 4", final)
	}
	if kv[BestScoreKey] != "4" {
		t.Errorf("persisted best = %q, expected 4", kv[BestScoreKey])
	}
}

func TestStepRestartsAfterGameOver(t *testing.T) {
	g := newTestGame(Board{})
	g.phase = core.PhaseOver
	g.score = 30

	in := core.NewInputFrame()
	in.Set(core.ActionRestart)
	st := g.Step(in, 0).State

	if st.Over() || st.Score != 0 {
		t.Errorf("state after restart = %+v", st)
	}
}

func TestDeterministicReplay(t *testing.T) {
	dirs := []Direction{DirLeft, DirUp, DirRight, DirDown}
	run := func() Snapshot {
		g := NewWithConfig(config.DefaultMergeConfig())
		g.Reset(core.RuntimeConfig{Seed: 2048})
		for i := range 200 {
			g.Move(dirs[i%len(dirs)])
		}
		return g.Snapshot()
	}

	if a, b := run(), run(); a != b {
		t.Errorf("snapshots differ:\n%+v\n%+v", a, b)
	}
}

type kvMap map[string]string

func (m kvMap) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m kvMap) Set(key, value string) { m[key] = value }
