package jump

import "github.com/vovakirdan/retroplay/internal/core"

// Platform is a one-way surface the coin bounces off when falling onto it.
type Platform struct {
	X, Y     float64
	Width    float64
	Height   float64
	Consumed bool
}

// Box returns the platform rectangle.
func (p Platform) Box() core.Box {
	return core.Box{X: p.X, Y: p.Y, W: p.Width, H: p.Height}
}

// newPlatform creates a platform at height y with random width and x.
func (g *Game) newPlatform(y float64) Platform {
	pc := g.cfg.Platforms
	width := core.Uniform(g.rng, pc.MinWidth, pc.MaxWidth)
	maxX := max(g.width-width-pc.Margin, pc.Margin)
	return Platform{
		X:      core.Uniform(g.rng, pc.Margin, maxX),
		Y:      y,
		Width:  width,
		Height: pc.Height,
	}
}

// refill drops platforms that scrolled below the field and adds new ones
// above the topmost until the configured count is restored.
func (g *Game) refill() {
	s := g.session
	pc := g.cfg.Platforms

	kept := s.Platforms[:0]
	for _, p := range s.Platforms {
		if p.Y < g.height+pc.DiscardMargin {
			kept = append(kept, p)
		}
	}
	s.Platforms = kept

	for len(s.Platforms) < pc.Count {
		top := g.height
		for _, p := range s.Platforms {
			top = min(top, p.Y)
		}
		s.Platforms = append(s.Platforms, g.newPlatform(top-pc.VerticalGap))
	}
}
