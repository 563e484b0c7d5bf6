package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mnac/internal/selfplay"
)

var (
	flagGames       int
	flagWorkers     int
	flagVerify      bool
	flagBenchMiddle bool
	flagBenchRules  string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Play random games and tally the results",
	Long: `Play many games with uniformly random moves on all CPUs and print how
they ended. Game i uses seed+i, so a run is reproducible whatever the
number of workers. Without --seed a time-based seed is used and printed.

With --verify every position is saved, reloaded and compared, which is
slower but checks the engine while it plays.

Examples:
  mnac bench
  mnac bench --games 100000 --workers 8
  mnac bench --seed 42 --verify
  mnac bench --rules quick`,
	Args: cobra.NoArgs,
	Run:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&flagGames, "games", 10000, "Number of games")
	benchCmd.Flags().IntVar(&flagWorkers, "workers", runtime.NumCPU(), "Parallel workers")
	benchCmd.Flags().BoolVar(&flagVerify, "verify", false, "Check save and reload after every move")
	benchCmd.Flags().BoolVar(&flagBenchMiddle, "allow-middle", false, "Allow opening in the centre grid")
	benchCmd.Flags().StringVar(&flagBenchRules, "rules", "", "Rules preset: classic, open, quick")
}

func runBench(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if err := applyRules(&cfg, flagBenchRules, "", flagBenchMiddle); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	rules, err := cfg.Engine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	step := int64(max(flagGames/20, 1))
	rep, err := selfplay.Run(ctx, selfplay.Options{
		Games:   flagGames,
		Workers: flagWorkers,
		Seed:    flagSeed,
		Rules:   rules,
		Verify:  flagVerify,
		Progress: func(done int64) {
			if done%step == 0 {
				fmt.Fprintf(os.Stderr, "\r%d/%d games", done, flagGames)
			}
		},
	})
	fmt.Fprintln(os.Stderr)

	printReport(rep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printReport(rep selfplay.Report) {
	pct := func(n int64) float64 {
		if rep.Games == 0 {
			return 0
		}
		return 100 * float64(n) / float64(rep.Games)
	}

	fmt.Printf("Games played:  %d in %s (%.0f games/s)\n", rep.Games, rep.Elapsed.Round(time.Millisecond), rep.GamesPerSecond())
	fmt.Printf("Seed:          %d\n", rep.Seed)
	fmt.Println()
	fmt.Printf("  %-14s  %8s  %6s\n", "Result", "Games", "%")
	fmt.Printf("  %-14s  %8s  %6s\n", "------", "-----", "-")
	fmt.Printf("  %-14s  %8d  %5.1f%%\n", "Noughts wins", rep.NoughtsWins, pct(rep.NoughtsWins))
	fmt.Printf("  %-14s  %8d  %5.1f%%\n", "Crosses wins", rep.CrossesWins, pct(rep.CrossesWins))
	fmt.Printf("  %-14s  %8d  %5.1f%%\n", "Draws", rep.Draws, pct(rep.Draws))
	fmt.Printf("  %-14s  %8d  %5.1f%%\n", "  of 8 grids", rep.ForcedDraws, pct(rep.ForcedDraws))
	fmt.Println()
	fmt.Printf("Moves per game: %.1f avg, %d min, %d max\n", rep.AvgMoves(), rep.MinMoves, rep.MaxMoves)
	fmt.Printf("Teleports:      %d\n", rep.Teleports)
}
