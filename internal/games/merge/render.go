package merge

import (
	"fmt"
	"strconv"

	"github.com/vovakirdan/retroplay/internal/core"
)

const (
	cellWidth  = 7 // including the left border
	cellHeight = 2 // including the top border
)

var tileColors = map[int]core.Color{
	2:    core.ColorWhite,
	4:    core.ColorBrightWhite,
	8:    core.ColorYellow,
	16:   core.ColorOrange,
	32:   core.ColorRed,
	64:   core.ColorBrightRed,
	128:  core.ColorBrightYellow,
	256:  core.ColorBrightGreen,
	512:  core.ColorGreen,
	1024: core.ColorBrightCyan,
	2048: core.ColorBrightMagenta,
}

func tileColor(v int) core.Color {
	if c, ok := tileColors[v]; ok {
		return c
	}
	return core.ColorMagenta
}

// Render draws the board centered under a one-line HUD.
func (g *Game) Render(dst *core.Screen) {
	boardW := BoardSize*cellWidth + 1
	boardX := max((dst.Width()-boardW)/2, 0)
	boardY := 2

	dst.DrawText(boardX, 0, fmt.Sprintf("Score: %d  Best: %d  Max: %d", g.score, g.best.Value(), MaxTile(g.board)))
	g.renderGrid(dst, boardX, boardY)

	if g.phase == core.PhaseOver {
		dst.DrawMessageBox("GAME OVER", fmt.Sprintf("Score: %d  |  R to restart", g.score), core.ColorBrightRed)
	}
}

func (g *Game) renderGrid(dst *core.Screen, boardX, boardY int) {
	for r := range BoardSize + 1 {
		for c := range BoardSize + 1 {
			px := boardX + c*cellWidth
			py := boardY + r*cellHeight
			dst.SetColored(px, py, gridJoint(r, c), core.ColorGray)

			if c < BoardSize {
				for i := 1; i < cellWidth; i++ {
					dst.SetColored(px+i, py, '─', core.ColorGray)
				}
			}
			if r < BoardSize {
				for i := 1; i < cellHeight; i++ {
					dst.SetColored(px, py+i, '│', core.ColorGray)
				}
			}
		}
	}

	for r, line := range g.board {
		for c, v := range line {
			if v == 0 {
				continue
			}
			text := strconv.Itoa(v)
			pad := max((cellWidth-1-len(text))/2, 0)
			dst.DrawTextColored(boardX+c*cellWidth+1+pad, boardY+r*cellHeight+1, text, tileColor(v))
		}
	}
}

func gridJoint(r, c int) rune {
	top, bottom := r == 0, r == BoardSize
	left, right := c == 0, c == BoardSize
	switch {
	case top && left:
		return '┌'
	case top && right:
		return '┐'
	case bottom && left:
		return '└'
	case bottom && right:
		return '┘'
	case top:
		return '┬'
	case bottom:
		return '┴'
	case left:
		return '├'
	case right:
		return '┤'
	default:
		return '┼'
	}
}
