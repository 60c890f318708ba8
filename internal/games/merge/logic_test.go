package merge

import "testing"

func TestCompressAndMerge(t *testing.T) {
	tests := []struct {
		name     string
		input    Line
		expected Line
		gained   int
		changed  bool
	}{
		{"simple merge", Line{2, 2, 0, 0}, Line{4, 0, 0, 0}, 4, true},
		{"merge with trailing tile", Line{2, 2, 2, 0}, Line{4, 2, 0, 0}, 4, true},
		{"double merge", Line{2, 2, 2, 2}, Line{4, 4, 0, 0}, 8, true},
		{"merged tile does not chain", Line{2, 2, 4, 0}, Line{4, 4, 0, 0}, 4, true},
		{"pairs of different values", Line{4, 4, 8, 8}, Line{8, 16, 0, 0}, 24, true},
		{"gaps between equal tiles", Line{2, 0, 2, 0}, Line{4, 0, 0, 0}, 4, true},
		{"slide with gap", Line{0, 0, 2, 2}, Line{4, 0, 0, 0}, 4, true},
		{"no merge possible", Line{2, 4, 8, 16}, Line{2, 4, 8, 16}, 0, false},
		{"already packed", Line{4, 2, 0, 0}, Line{4, 2, 0, 0}, 0, false},
		{"empty", Line{}, Line{}, 0, false},
		{"single tile", Line{0, 4, 0, 0}, Line{4, 0, 0, 0}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gained, changed := CompressAndMerge(tt.input)
			if got != tt.expected {
				t.Errorf("CompressAndMerge(%v) = %v, want %v", tt.input, got, tt.expected)
			}
			if gained != tt.gained {
				t.Errorf("CompressAndMerge(%v) gained = %d, want %d", tt.input, gained, tt.gained)
			}
			if changed != tt.changed {
				t.Errorf("CompressAndMerge(%v) changed = %v, want %v", tt.input, changed, tt.changed)
			}
		})
	}
}

func TestMoveDirections(t *testing.T) {
	board := Board{
		{2, 0, 0, 2},
		{0, 4, 0, 0},
		{0, 4, 0, 0},
		{8, 0, 0, 8},
	}

	tests := []struct {
		dir      Direction
		expected Board
		gained   int
	}{
		{DirLeft, Board{{4, 0, 0, 0}, {4, 0, 0, 0}, {4, 0, 0, 0}, {16, 0, 0, 0}}, 20},
		{DirRight, Board{{0, 0, 0, 4}, {0, 0, 0, 4}, {0, 0, 0, 4}, {0, 0, 0, 16}}, 20},
		{DirUp, Board{{2, 8, 0, 2}, {8, 0, 0, 8}, {0, 0, 0, 0}, {0, 0, 0, 0}}, 8},
		{DirDown, Board{{0, 0, 0, 0}, {0, 0, 0, 0}, {2, 0, 0, 2}, {8, 8, 0, 8}}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			got, gained, changed := Move(board, tt.dir)
			if !changed {
				t.Fatal("Move() reported no change")
			}
			if got != tt.expected {
				t.Errorf("Move(%v) =\n%v\nwant\n%v", tt.dir, got, tt.expected)
			}
			if gained != tt.gained {
				t.Errorf("Move(%v) gained = %d, want %d", tt.dir, gained, tt.gained)
			}
		})
	}
}

func TestMoveNoop(t *testing.T) {
	board := Board{
		{2, 4, 0, 0},
		{4, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	got, gained, changed := Move(board, DirLeft)
	if changed || gained != 0 || got != board {
		t.Errorf("Move(left) on packed board = (%v, %d, %v), expected unchanged", got, gained, changed)
	}
}

func TestHasMoves(t *testing.T) {
	tests := []struct {
		name     string
		board    Board
		expected bool
	}{
		{"empty cell", Board{{2, 4, 2, 4}, {4, 2, 4, 2}, {2, 4, 2, 4}, {4, 2, 4, 0}}, true},
		{"horizontal pair", Board{{2, 2, 8, 4}, {4, 8, 4, 2}, {2, 4, 2, 4}, {4, 2, 4, 2}}, true},
		{"vertical pair", Board{{2, 4, 2, 4}, {4, 8, 4, 2}, {2, 8, 2, 4}, {4, 2, 4, 2}}, true},
		{"full and locked", Board{{2, 4, 2, 4}, {4, 2, 4, 2}, {2, 4, 2, 4}, {4, 2, 4, 2}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasMoves(tt.board); got != tt.expected {
				t.Errorf("HasMoves() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpawn(t *testing.T) {
	var b Board
	for i := range BoardSize * BoardSize {
		if !Spawn(&b, &scriptRNG{floats: []float64{0.95}}, 0.1) {
			t.Fatalf("Spawn() failed at %d", i)
		}
	}
	if len(EmptyCells(b)) != 0 {
		t.Fatalf("board not full after %d spawns", BoardSize*BoardSize)
	}
	if Spawn(&b, &scriptRNG{}, 0.1) {
		t.Error("Spawn() on a full board should fail")
	}
	if b[0][0] != 2 {
		t.Errorf("tile = %d, expected 2 when roll >= fourProb", b[0][0])
	}

	var c Board
	Spawn(&c, &scriptRNG{floats: []float64{0.05}}, 0.1)
	if MaxTile(c) != 4 {
		t.Errorf("tile = %d, expected 4 when roll < fourProb", MaxTile(c))
	}
}
