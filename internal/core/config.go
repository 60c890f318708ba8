package core

// RuntimeConfig contains configuration passed to games at initialization.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Display refresh rate driving the scheduler
	Seed     int64 // RNG seed; 0 means seed from the clock
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
	}
}

// GameState is the host-visible summary of a running engine.
type GameState struct {
	Score     int
	BestScore int
	Phase     Phase
}

// Over reports whether the session has ended.
func (s GameState) Over() bool {
	return s.Phase == PhaseOver
}

// StepResult is returned by Game.Step after each simulation tick.
type StepResult struct {
	State GameState
}

// KV is the small key/value store engines use to persist best scores.
// Implementations are best-effort: a failed write is dropped.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// Hooks connects an engine to its host shell.
type Hooks struct {
	// OnGameOver fires exactly once per session with the final score.
	OnGameOver func(score int)
	// Best persists the best score. Nil keeps it in memory only.
	Best KV
}
