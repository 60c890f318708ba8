package config

// DifficultyManager scales obstacle speed and gap size with progress.
// When disabled it returns base values unchanged.
type DifficultyManager struct {
	cfg DifficultyConfig
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{cfg: cfg}
}

// Level returns the difficulty level in [0, 1] for the given score and
// elapsed frames.
func (d *DifficultyManager) Level(score int, frames float64) float64 {
	if !d.cfg.Enabled {
		return 0
	}
	maxAt := d.cfg.Progression.MaxAt
	if maxAt <= 0 {
		maxAt = 1
	}

	var progress float64
	switch d.cfg.Progression.Type {
	case "score":
		progress = float64(score) / maxAt
	case "time":
		progress = frames / maxAt
	default:
		return clampLevel(d.cfg.InitialLevel)
	}

	initial := clampLevel(d.cfg.InitialLevel)
	return initial + clampLevel(progress)*(1-initial)
}

// Speed returns the scaled obstacle speed.
func (d *DifficultyManager) Speed(base float64, score int, frames float64) float64 {
	if !d.cfg.Enabled {
		return base
	}
	return base * (1 + d.Level(score, frames)*d.cfg.Scaling.SpeedMultiplier)
}

// GapSize returns the scaled gap height, never below the configured minimum.
func (d *DifficultyManager) GapSize(base float64, score int, frames float64) float64 {
	if !d.cfg.Enabled {
		return base
	}
	gap := base - d.Level(score, frames)*d.cfg.Scaling.GapReduction
	if gap < d.cfg.Scaling.MinGap {
		return d.cfg.Scaling.MinGap
	}
	return gap
}

func clampLevel(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
