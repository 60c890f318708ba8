package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/flappy.yaml
var defaultFlappyYAML []byte

//go:embed defaults/jump.yaml
var defaultJumpYAML []byte

//go:embed defaults/merge.yaml
var defaultMergeYAML []byte

//go:embed defaults/sync.yaml
var defaultSyncYAML []byte

// DefaultFlappyConfig returns the default coin-through-pipes configuration.
func DefaultFlappyConfig() FlappyConfig {
	return FlappyConfig{
		Field: FieldConfig{Width: 380, Height: 520},
		Physics: FlappyPhysics{
			Gravity:     0.45,
			JumpImpulse: -8.5,
			PipeSpeed:   2,
		},
		Coin: FlappyCoin{XRatio: 1.0 / 3.0, Radius: 14},
		Pipes: FlappyPipes{
			Width:            40,
			GapHeight:        140,
			CompactGapHeight: 110,
			CompactBelow:     400,
			Count:            1,
			Spacing:          220,
		},
		Difficulty: DifficultyConfig{
			Progression: ProgressionConfig{Type: "score", MaxAt: 60},
			Scaling: ScalingConfig{
				SpeedMultiplier: 1.0,
				GapReduction:    40,
				MinGap:          80,
			},
		},
	}
}

// DefaultJumpConfig returns the default platform jumper configuration.
func DefaultJumpConfig() JumpConfig {
	return JumpConfig{
		Field: FieldConfig{Width: 380, Height: 520},
		Physics: JumpPhysics{
			Gravity:         0.35,
			JumpImpulse:     -9,
			SideStep:        42,
			ScrollThreshold: 0.4,
		},
		Coin: JumpCoin{Radius: 12, StartOffset: 18},
		Platforms: JumpPlatforms{
			Count:         9,
			VerticalGap:   65,
			Height:        10,
			MinWidth:      55,
			MaxWidth:      95,
			Margin:        10,
			BaseOffset:    40,
			DiscardMargin: 30,
		},
	}
}

// DefaultMergeConfig returns the default 2048 configuration.
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{InitialTiles: 2, FourProbability: 0.1}
}

// DefaultSyncConfig returns the default sync configuration: offline, with
// the standard XP multipliers.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		Backend: "none",
		Timeout: 5 * time.Second,
		XPMultipliers: map[string]int{
			"flappy_coin": 10,
			"jump_coin":   10,
			"merge_2048":  1,
		},
		LeaderboardLimit: 10,
		CacheCap:         20,
	}
}

// GetDefaultYAML returns the embedded default YAML for a config name.
func GetDefaultYAML(name string) []byte {
	switch name {
	case "flappy":
		return defaultFlappyYAML
	case "jump":
		return defaultJumpYAML
	case "merge":
		return defaultMergeYAML
	case "sync":
		return defaultSyncYAML
	default:
		return nil
	}
}
