package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mnac/internal/i18n"
)

var langsCmd = &cobra.Command{
	Use:   "langs",
	Short: "List message languages",
	Long: `Shows the languages the game can talk in. Change the language of a
room with the "lang <code>" command, or the default with language.default
in the config.`,
	Args: cobra.NoArgs,
	Run:  runLangs,
}

func runLangs(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	catalog, err := i18n.Load(cfg.Language.Default)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading languages: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Available languages:")
	fmt.Println()
	fmt.Printf("  %-4s  %s\n", "Code", "Name")
	fmt.Printf("  %-4s  %s\n", "----", "----")

	for _, code := range catalog.Codes() {
		l, err := catalog.Get(code)
		if err != nil {
			continue
		}
		mark := ""
		if l == catalog.Default() {
			mark = " (default)"
		}
		fmt.Printf("  %-4s  %s%s\n", l.Code, l.Name, mark)
	}
}
