package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/mnac/internal/games/mnac"
	"github.com/vovakirdan/mnac/internal/platform/tui"
	"github.com/vovakirdan/mnac/internal/session"
	"github.com/vovakirdan/mnac/internal/storage"
)

var (
	flagLimit      int
	flagHistoryTUI bool
	flagPlayer     string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show finished matches and the leaderboard",
	Long: `Display the most recent finished matches, the overall tallies and the
players with the most wins.

Examples:
  mnac history
  mnac history --limit 25
  mnac history --player alice
  mnac history --tui`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of matches to show")
	historyCmd.Flags().BoolVar(&flagHistoryTUI, "tui", false, "Browse the history interactively")
	historyCmd.Flags().StringVar(&flagPlayer, "player", "", "Only show matches of this player")
}

func runHistory(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	// Open storage
	store, err := storage.Open(cfg.StoragePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagHistoryTUI {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if err := tui.RunHistory(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()

	var results []session.ResultRecord
	if flagPlayer != "" {
		results, err = store.PlayerResults(ctx, flagPlayer, flagLimit)
	} else {
		results, err = store.RecentResults(ctx, flagLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving results: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Recent matches")
	fmt.Println()

	if len(results) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'mnac play' to record the first one!")
		return
	}

	// Print header
	fmt.Printf("  %-16s  %-12s  %-12s  %-12s  %-12s  %s\n", "Ended", "Room", "Noughts", "Crosses", "Result", "Moves")
	fmt.Printf("  %-16s  %-12s  %-12s  %-12s  %-12s  %s\n", "-----", "----", "-------", "-------", "------", "-----")

	for _, r := range results {
		fmt.Printf("  %-16s  %-12s  %-12s  %-12s  %-12s  %d\n",
			r.EndedAt.Local().Format("2006-01-02 15:04"), r.Channel, r.Noughts, r.Crosses, outcome(r), r.Moves)
	}

	stats, err := store.Stats(ctx)
	if err == nil && stats.Matches > 0 {
		fmt.Println()
		fmt.Printf("Matches: %d  Noughts: %d  Crosses: %d  Draws: %d (%d of 8 grids)  Stopped: %d  Expired: %d\n",
			stats.Matches, stats.NoughtsWins, stats.CrossesWins, stats.Draws, stats.ForcedDraws, stats.Stopped, stats.Expired)
		fmt.Printf("Average length: %.1f moves\n", stats.AvgMoves)
	}

	leaders, err := store.Leaderboard(ctx, 5)
	if err == nil && len(leaders) > 0 {
		fmt.Println()
		fmt.Println("Leaderboard")
		for i, p := range leaders {
			fmt.Printf("  #%-3d %-16s %d won, %d lost, %d drawn\n", i+1, p.User, p.Won, p.Lost, p.Drawn)
		}
	}
}

// outcome is the short result text of a match.
func outcome(r session.ResultRecord) string {
	switch r.Reason {
	case session.ReasonStopped:
		return "stopped"
	case session.ReasonExpired:
		return "expired"
	}
	switch r.Winner {
	case mnac.NoughtsWin:
		return "noughts won"
	case mnac.CrossesWin:
		return "crosses won"
	case mnac.Draw:
		if r.ForcedDraw {
			return "draw (8/9)"
		}
		return "draw"
	}
	return r.Winner.String()
}
