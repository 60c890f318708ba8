// Package config provides YAML-based configuration for the games and the
// profile sync layer, plus the difficulty progression of the flappy game.
package config

import "time"

// FieldConfig is the logical playfield in physics units.
type FieldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// FlappyConfig contains all configuration for the coin-through-pipes game.
type FlappyConfig struct {
	Field      FieldConfig      `yaml:"field"`
	Physics    FlappyPhysics    `yaml:"physics"`
	Coin       FlappyCoin       `yaml:"coin"`
	Pipes      FlappyPipes      `yaml:"pipes"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// FlappyPhysics defines per-frame physics constants.
type FlappyPhysics struct {
	Gravity     float64 `yaml:"gravity"`
	JumpImpulse float64 `yaml:"jump_impulse"`
	PipeSpeed   float64 `yaml:"pipe_speed"`
}

// FlappyCoin defines the agent.
type FlappyCoin struct {
	XRatio float64 `yaml:"x_ratio"` // horizontal position as a fraction of field width
	Radius float64 `yaml:"radius"`
}

// FlappyPipes defines the obstacle stream.
type FlappyPipes struct {
	Width     float64 `yaml:"width"`
	GapHeight float64 `yaml:"gap_height"`
	// CompactGapHeight replaces GapHeight on fields shorter than CompactBelow.
	CompactGapHeight float64 `yaml:"compact_gap_height"`
	CompactBelow     float64 `yaml:"compact_below"`
	Count            int     `yaml:"count"`
	Spacing          float64 `yaml:"spacing"`
}

// Gap returns the gap height for the given field height.
func (p FlappyPipes) Gap(fieldH float64) float64 {
	if p.CompactBelow > 0 && fieldH < p.CompactBelow {
		return p.CompactGapHeight
	}
	return p.GapHeight
}

// JumpConfig contains all configuration for the platform jumper.
type JumpConfig struct {
	Field     FieldConfig   `yaml:"field"`
	Physics   JumpPhysics   `yaml:"physics"`
	Coin      JumpCoin      `yaml:"coin"`
	Platforms JumpPlatforms `yaml:"platforms"`
}

// JumpPhysics defines per-frame physics constants.
type JumpPhysics struct {
	Gravity     float64 `yaml:"gravity"`
	JumpImpulse float64 `yaml:"jump_impulse"`
	SideStep    float64 `yaml:"side_step"`
	// ScrollThreshold is the fraction of field height above which a rising
	// agent scrolls the world instead of moving.
	ScrollThreshold float64 `yaml:"scroll_threshold"`
}

// JumpCoin defines the agent.
type JumpCoin struct {
	Radius      float64 `yaml:"radius"`
	StartOffset float64 `yaml:"start_offset"` // agent center above the start platform
}

// JumpPlatforms defines platform generation.
type JumpPlatforms struct {
	Count         int     `yaml:"count"`
	VerticalGap   float64 `yaml:"vertical_gap"`
	Height        float64 `yaml:"height"`
	MinWidth      float64 `yaml:"min_width"`
	MaxWidth      float64 `yaml:"max_width"`
	Margin        float64 `yaml:"margin"`
	BaseOffset    float64 `yaml:"base_offset"`    // lowest platform distance from the bottom
	DiscardMargin float64 `yaml:"discard_margin"` // platforms below field height + margin are dropped
}

// MergeConfig contains configuration for the 2048 merge game.
type MergeConfig struct {
	InitialTiles    int     `yaml:"initial_tiles"`
	FourProbability float64 `yaml:"four_probability"`
}

// SyncConfig configures identity resolution and profile reconciliation.
type SyncConfig struct {
	// Backend selects the remote store: none, sqlite, postgres or http.
	Backend string        `yaml:"backend"`
	DSN     string        `yaml:"dsn"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`

	// Token is sent as a bearer token by the http backend and required by
	// the api server when set.
	Token string `yaml:"token"`

	XPMultipliers    map[string]int `yaml:"xp_multipliers"`
	LeaderboardLimit int            `yaml:"leaderboard_limit"`
	CacheCap         int            `yaml:"cache_cap"`
}

// Multiplier returns the XP multiplier for a game, defaulting to 1.
func (c SyncConfig) Multiplier(gameKey string) int {
	if m, ok := c.XPMultipliers[gameKey]; ok {
		return m
	}
	return 1
}

// DifficultyConfig defines the optional difficulty progression.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases.
type ProgressionConfig struct {
	Type  string  `yaml:"type"`   // "score", "time", or "none"
	MaxAt float64 `yaml:"max_at"` // score or elapsed frames at max difficulty
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // added to speed at max difficulty
	GapReduction    float64 `yaml:"gap_reduction"`    // subtracted from gaps at max difficulty
	MinGap          float64 `yaml:"min_gap"`
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// ApplyPreset switches progression on or off for a preset.
// An empty preset leaves the configuration untouched.
func (d *DifficultyConfig) ApplyPreset(preset DifficultyPreset) {
	switch preset {
	case "":
		return
	case DifficultyFixed:
		d.Enabled = false
	default:
		d.Enabled = true
		d.InitialLevel = InitialLevelForPreset(preset)
	}
}
