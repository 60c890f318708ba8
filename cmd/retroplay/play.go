package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/retroplay/internal/config"
	"github.com/vovakirdan/retroplay/internal/games/flappy"
	"github.com/vovakirdan/retroplay/internal/games/jump"
	"github.com/vovakirdan/retroplay/internal/games/merge"
	"github.com/vovakirdan/retroplay/internal/platform/tui"
	"github.com/vovakirdan/retroplay/internal/registry"
)

var (
	flagConfig     string
	flagDifficulty string
)

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Play a game",
	Long: `Start playing the specified game.

Controls:
  Space      - Flap / jump / act
  Arrows     - Move (WASD and hjkl also work)
  P          - Pause
  R          - Restart (after game over)
  B/Esc      - Back to the menu
  Q/Ctrl+C   - Quit

Difficulty options (flappy only):
  easy   - Start at lowest difficulty, progresses to max
  normal - Start at 30% difficulty, progresses to max
  hard   - Start at 70% difficulty, progresses to max
  fixed  - No progression, stays at config's initial level

Examples:
  retroplay play flappy
  retroplay play jump --seed 42
  retroplay play flappy --difficulty hard
  retroplay play merge --config ./my-merge.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func runPlay(_ *cobra.Command, args []string) {
	gameKey, ok := registry.Resolve(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", args[0])
		fmt.Fprintln(os.Stderr, "Run 'retroplay list' to see available games.")
		os.Exit(1)
	}

	preset, err := parsePreset(flagDifficulty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// Fail before the alt screen opens on a broken config file.
	if _, err := configuredGame(gameKey, flagConfig, preset); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := runApp(gameKey, func(name string) (registry.Game, error) {
		if key, _ := registry.Resolve(name); key == gameKey {
			return configuredGame(gameKey, flagConfig, preset)
		}
		return registry.Create(name)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}

// runApp opens a profile session and runs the TUI until the player quits.
func runApp(startGame string, newGame func(string) (registry.Game, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, closeLog := fileLogger()
	defer closeLog()

	sess := openSession(ctx, logger)
	defer sess.Close()

	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}

	return tui.Run(ctx, tui.AppOptions{
		Config:    runtimeConfig(width, height),
		FPS:       flagFPS,
		KV:        sess.kv,
		Profile:   sess.profile,
		StartGame: startGame,
		NewGame:   newGame,
	})
}

func parsePreset(s string) (config.DifficultyPreset, error) {
	switch p := config.DifficultyPreset(s); p {
	case "", config.DifficultyEasy, config.DifficultyNormal, config.DifficultyHard, config.DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}

// configuredGame builds an engine from a custom config path. Only the
// dodge game reads the difficulty preset.
func configuredGame(gameKey, path string, preset config.DifficultyPreset) (registry.Game, error) {
	switch gameKey {
	case flappy.GameKey:
		cfg, err := config.LoadFlappy(path)
		if err != nil {
			return nil, err
		}
		cfg.Difficulty.ApplyPreset(preset)
		return flappy.NewWithConfig(cfg), nil
	case jump.GameKey:
		cfg, err := config.LoadJump(path)
		if err != nil {
			return nil, err
		}
		return jump.NewWithConfig(cfg), nil
	case merge.GameKey:
		cfg, err := config.LoadMerge(path)
		if err != nil {
			return nil, err
		}
		return merge.NewWithConfig(cfg), nil
	}
	return registry.Create(gameKey)
}
