package merge

import "github.com/vovakirdan/retroplay/internal/core"

// Direction represents a swipe direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// BoardSize is the board dimension.
const BoardSize = 4

// Line is one row or column, read in the direction of the move.
type Line [BoardSize]int

// Board is a BoardSize x BoardSize grid indexed [row][col]; 0 is empty.
type Board [BoardSize]Line

// Cell addresses one board position.
type Cell struct {
	Row, Col int
}

// CompressAndMerge slides the non-zero tiles of line toward index 0 and
// merges equal neighbours left to right. A tile produced by a merge does not
// merge again in the same pass. It returns the new line, the sum of merged
// tile values and whether anything moved.
func CompressAndMerge(line Line) (Line, int, bool) {
	var out Line
	gained := 0
	n := 0
	justMerged := false

	for _, v := range line {
		if v == 0 {
			continue
		}
		if n > 0 && !justMerged && out[n-1] == v {
			out[n-1] = 2 * v
			gained += out[n-1]
			justMerged = true
			continue
		}
		out[n] = v
		n++
		justMerged = false
	}

	return out, gained, out != line
}

func reverse(line Line) Line {
	var out Line
	for i := range BoardSize {
		out[i] = line[BoardSize-1-i]
	}
	return out
}

func transpose(b Board) Board {
	var out Board
	for r := range BoardSize {
		for c := range BoardSize {
			out[r][c] = b[c][r]
		}
	}
	return out
}

// Move applies a swipe to the whole board. It returns the new board, the
// points gained and whether any tile moved.
func Move(b Board, dir Direction) (Board, int, bool) {
	work := b
	if dir == DirUp || dir == DirDown {
		work = transpose(b)
	}
	backwards := dir == DirRight || dir == DirDown

	total := 0
	for i, line := range work {
		if backwards {
			line = reverse(line)
		}
		merged, gained, _ := CompressAndMerge(line)
		if backwards {
			merged = reverse(merged)
		}
		work[i] = merged
		total += gained
	}

	if dir == DirUp || dir == DirDown {
		work = transpose(work)
	}
	return work, total, work != b
}

// EmptyCells returns the coordinates of every empty cell in row-major order.
func EmptyCells(b Board) []Cell {
	var cells []Cell
	for r := range BoardSize {
		for c := range BoardSize {
			if b[r][c] == 0 {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// HasMoves reports whether any swipe would change the board: an empty cell
// exists or two orthogonal neighbours are equal.
func HasMoves(b Board) bool {
	for r := range BoardSize {
		for c := range BoardSize {
			v := b[r][c]
			if v == 0 {
				return true
			}
			if c < BoardSize-1 && b[r][c+1] == v {
				return true
			}
			if r < BoardSize-1 && b[r+1][c] == v {
				return true
			}
		}
	}
	return false
}

// MaxTile returns the largest tile on the board.
func MaxTile(b Board) int {
	best := 0
	for _, line := range b {
		for _, v := range line {
			best = max(best, v)
		}
	}
	return best
}

// Spawn places a 2 (or a 4 with probability fourProb) on a uniformly chosen
// empty cell. It reports false when the board is full.
func Spawn(b *Board, rng core.RNG, fourProb float64) bool {
	cells := EmptyCells(*b)
	if len(cells) == 0 {
		return false
	}
	cell := cells[rng.Intn(len(cells))]
	value := 2
	if rng.Float64() < fourProb {
		value = 4
	}
	b[cell.Row][cell.Col] = value
	return true
}
