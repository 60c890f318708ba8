package merge

// Snapshot captures the complete game state for determinism testing.
type Snapshot struct {
	Moves   int
	Score   int
	Board   Board
	MaxTile int
	Over    bool
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Moves:   g.moves,
		Score:   g.score,
		Board:   g.board,
		MaxTile: MaxTile(g.board),
		Over:    g.State().Over(),
	}
}
