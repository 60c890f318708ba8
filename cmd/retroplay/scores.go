package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/retroplay/internal/profile"
	"github.com/vovakirdan/retroplay/internal/registry"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Show the leaderboard",
	Long: `Display the global leaderboard for a game, or total XP when no game
is given. Falls back to scores recorded on this device when the remote
store is unreachable.

Examples:
  retroplay scores
  retroplay scores flappy
  retroplay scores merge_2048`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func runScores(_ *cobra.Command, args []string) {
	gameKey, title := "", "Total XP"
	if len(args) == 1 {
		key, ok := registry.Resolve(args[0])
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", args[0])
			fmt.Fprintln(os.Stderr, "Run 'retroplay list' to see available games.")
			os.Exit(1)
		}
		gameKey = key
		title = gameTitle(key)
	}

	logger := newLogger(os.Stderr)
	ctx := context.Background()
	sess := openSession(ctx, logger)
	defer sess.Close()

	board := sess.profile.Leaderboard(ctx, gameKey)
	printBoard(os.Stdout, title, board, sess.profile.Snapshot().Identity.ID)
}

func gameTitle(key string) string {
	for _, g := range registry.List() {
		if g.ID == key {
			return g.Title
		}
	}
	return key
}

func printBoard(w io.Writer, title string, board profile.Board, self string) {
	fmt.Fprintf(w, "Leaderboard - %s\n", title)
	if !board.Remote {
		fmt.Fprintln(w, "(offline: showing scores from this device)")
	}
	fmt.Fprintln(w)

	if len(board.Entries) == 0 {
		fmt.Fprintln(w, "No scores recorded yet.")
		return
	}

	nameLen := len("Player")
	for _, e := range board.Entries {
		nameLen = max(nameLen, len(e.Name))
	}

	fmt.Fprintf(w, "  %-4s  %-*s  %s\n", "Rank", nameLen, "Player", "Score")
	fmt.Fprintf(w, "  %-4s  %-*s  %s\n", "----", nameLen, "------", "-----")
	for i, e := range board.Entries {
		marker := ""
		if e.StableID == self {
			marker = "  (you)"
		}
		fmt.Fprintf(w, "  %-4d  %-*s  %d%s\n", i+1, nameLen, e.Name, e.Score, marker)
	}
}
