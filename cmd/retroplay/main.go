// retroplay is a terminal arcade with a synced player profile.
//
// Usage:
//
//	retroplay list              - List available games
//	retroplay play <game>       - Play a game
//	retroplay menu              - Start menu to pick games interactively
//	retroplay scores [game]     - Show the leaderboard (total XP without a game)
//	retroplay serve             - Start SSH server for remote play
//	retroplay api               - Serve the remote profile store over HTTP
//
// Global flags:
//
//	--fps <rate>           - Set tick rate (default: 60)
//	--seed <value>         - Set RNG seed for reproducible gameplay
//	--db <path>            - Set local database path (default: ~/.retroplay/local.db)
//	--user <name>          - Play under an explicit name
//	--log-level <level>    - debug, info, warn or error
//	--sync-config <path>   - Path to a custom sync.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import games to register them
	_ "github.com/vovakirdan/retroplay/internal/games/flappy"
	_ "github.com/vovakirdan/retroplay/internal/games/jump"
	_ "github.com/vovakirdan/retroplay/internal/games/merge"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagUser       string
	flagLogLevel   string
	flagSyncConfig string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "retroplay",
	Short: "Retroplay - retro mini-games with a synced profile",
	Long: `Retroplay is a terminal arcade. Every finished session earns XP for
your profile, which is kept on this device and synced to a remote store
when one is configured in sync.yaml.

Available commands:
  list     - Show all available games
  play     - Play a specific game directly
  menu     - Interactive game picker menu
  scores   - View leaderboards
  serve    - Start SSH server for remote play
  api      - Serve the remote profile store over HTTP

Examples:
  retroplay list
  retroplay play flappy
  retroplay menu --user alice
  retroplay scores merge
  retroplay serve --ssh :2222
  retroplay api --addr :8080`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.retroplay/local.db", "Path to the local database")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "Player name (defaults to the OS user)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagSyncConfig, "sync-config", "", "Path to a custom sync.yaml")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
}
