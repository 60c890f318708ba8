// Package core provides the simulation kernel shared by every game: float
// geometry, frame-delta integration, lifecycle phases, input actions and the
// character screen buffer. It has no Bubble Tea dependency so game logic stays
// pure and testable.
package core

// Rect is an integer cell rectangle used for screen drawing.
type Rect struct {
	X, Y int
	W, H int
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Box is an axis-aligned rectangle in playfield units.
// Y grows downward, so Y is the top edge.
type Box struct {
	X, Y float64
	W, H float64
}

// Right returns the x-coordinate of the right edge.
func (b Box) Right() float64 {
	return b.X + b.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (b Box) Bottom() float64 {
	return b.Y + b.H
}

// Circle is the collision shape of the controllable agent.
type Circle struct {
	X, Y float64
	R    float64
}

// Top returns the y-coordinate of the topmost point.
func (c Circle) Top() float64 {
	return c.Y - c.R
}

// Bottom returns the y-coordinate of the lowest point.
func (c Circle) Bottom() float64 {
	return c.Y + c.R
}

// GapColumn is a full-height column with a passable gap.
// Everything outside [GapTop, GapTop+GapHeight] is solid.
type GapColumn struct {
	X         float64
	Width     float64
	GapTop    float64
	GapHeight float64
}

// GapBottom returns the y-coordinate where the lower solid part begins.
func (g GapColumn) GapBottom() float64 {
	return g.GapTop + g.GapHeight
}

// HitsColumn reports whether the circle touches a solid part of the column.
// The circle is treated as its bounding box: a hit needs horizontal overlap
// and the circle reaching above the gap top or below the gap bottom.
func (c Circle) HitsColumn(g GapColumn) bool {
	if c.X+c.R <= g.X || c.X-c.R >= g.X+g.Width {
		return false
	}
	return c.Y-c.R < g.GapTop || c.Y+c.R > g.GapBottom()
}

// LandsOn reports whether a falling circle crossed the top surface of the
// platform during the last step. prevBottom is the circle's bottom before the
// step; the circle's current state is c and vy its vertical velocity.
// The crossing is tested on the swept segment so fast falls cannot tunnel
// through thin platforms.
func (c Circle) LandsOn(p Box, prevBottom, vy float64) bool {
	if vy <= 0 {
		return false
	}
	withinX := c.X > p.X-c.R && c.X < p.Right()+c.R
	if !withinX {
		return false
	}
	return prevBottom <= p.Y && c.Bottom() >= p.Y
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
