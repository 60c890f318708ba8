package flappy

import "github.com/vovakirdan/retroplay/internal/core"

// Pipe is a full-height column with a passable gap.
type Pipe struct {
	X         float64
	Width     float64
	GapTop    float64
	GapHeight float64
	Passed    bool
}

// Column returns the collision shape of the pipe.
func (p Pipe) Column() core.GapColumn {
	return core.GapColumn{X: p.X, Width: p.Width, GapTop: p.GapTop, GapHeight: p.GapHeight}
}

// Right returns the x-coordinate of the trailing edge.
func (p Pipe) Right() float64 {
	return p.X + p.Width
}

// newPipe places a pipe at x with its gap drawn uniformly over the field.
func (g *Game) newPipe(x float64) Pipe {
	s := g.session
	gap := g.difficulty.GapSize(g.cfg.Pipes.Gap(g.height), s.Score, s.Frames)
	if gap > g.height {
		gap = g.height
	}
	return Pipe{
		X:         x,
		Width:     g.cfg.Pipes.Width,
		GapTop:    g.rng.Float64() * (g.height - gap),
		GapHeight: gap,
	}
}

// spawnX returns where the next pipe enters: the right edge of the field, or
// one spacing behind the last pipe if that is further right.
func (g *Game) spawnX() float64 {
	pipes := g.session.Pipes
	if len(pipes) == 0 {
		return g.width
	}
	return max(g.width, pipes[len(pipes)-1].X+g.cfg.Pipes.Spacing)
}

// recycle evicts pipes whose trailing edge left the field and appends
// replacements, keeping the stream length constant.
func (g *Game) recycle() {
	s := g.session
	for len(s.Pipes) > 0 && s.Pipes[0].Right() < 0 {
		s.Pipes = s.Pipes[1:]
		s.Pipes = append(s.Pipes, g.newPipe(g.spawnX()))
	}
}
