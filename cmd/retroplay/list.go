package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/retroplay/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available games",
	Long:  `Shows every registered game with its key and short alias.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()

	if len(games) == 0 {
		fmt.Println("No games available.")
		return
	}

	fmt.Println("Available games:")
	fmt.Println()

	keyLen, aliasLen := len("Key"), len("Alias")
	for _, g := range games {
		keyLen = max(keyLen, len(g.ID))
		aliasLen = max(aliasLen, len(g.Alias))
	}

	fmt.Printf("  %-*s  %-*s  %s\n", keyLen, "Key", aliasLen, "Alias", "Title")
	fmt.Printf("  %-*s  %-*s  %s\n", keyLen, "---", aliasLen, "-----", "-----")
	for _, g := range games {
		fmt.Printf("  %-*s  %-*s  %s\n", keyLen, g.ID, aliasLen, g.Alias, g.Title)
	}

	fmt.Println()
	fmt.Println("Run 'retroplay play <alias>' to play a game.")
}
