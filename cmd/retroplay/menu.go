package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the arcade with a game picker menu",
	Long: `Start retroplay in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a game and Tab to
open the leaderboards. After a game ends, press B or Esc to return.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select game
  Tab          - Leaderboards
  Q            - Quit

Examples:
  retroplay menu
  retroplay menu --fps 30
  retroplay menu --user alice --db ./local.db`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	if err := runApp("", nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
