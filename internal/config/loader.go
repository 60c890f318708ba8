package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFlappy loads the coin-through-pipes configuration.
// Search order: customPath -> ~/.retroplay/configs/flappy.yaml -> ./configs/flappy.yaml -> embedded default
func LoadFlappy(customPath string) (FlappyConfig, error) {
	return load("flappy", customPath, DefaultFlappyConfig)
}

// LoadJump loads the platform jumper configuration.
func LoadJump(customPath string) (JumpConfig, error) {
	return load("jump", customPath, DefaultJumpConfig)
}

// LoadMerge loads the 2048 configuration.
func LoadMerge(customPath string) (MergeConfig, error) {
	return load("merge", customPath, DefaultMergeConfig)
}

// LoadSync loads the profile sync configuration.
func LoadSync(customPath string) (SyncConfig, error) {
	cfg, err := load("sync", customPath, DefaultSyncConfig)
	if err != nil {
		return cfg, err
	}
	if cfg.Backend == "" {
		cfg.Backend = "none"
	}
	return cfg, nil
}

// load decodes name.yaml on top of the hardcoded defaults so partial files
// only override what they mention.
func load[T any](name, customPath string, fallback func() T) (T, error) {
	filename := name + ".yaml"

	if customPath != "" {
		cfg := fallback()
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	candidates := []string{filepath.Join("configs", filename)}
	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		candidates = append([]string{userCfgPath}, candidates...)
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg := fallback()
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	cfg := fallback()
	if err := yaml.Unmarshal(GetDefaultYAML(name), &cfg); err != nil {
		return fallback(), nil
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".retroplay", "configs", filename)
}
