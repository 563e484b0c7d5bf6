// mnac plays Meta Noughts and Crosses in the terminal, alone or with others
// over SSH.
//
// Usage:
//
//	mnac play                - Play a practice game in the local terminal
//	mnac serve               - Start SSH server for shared rooms
//	mnac bench               - Play random games in parallel and tally them
//	mnac history             - Show finished matches and the leaderboard
//	mnac langs               - List message languages
//
// Global flags:
//
//	--config <path>     - Config file (default search: ~/.mnac/config.yaml, ./configs/mnac.yaml)
//	--db <path>         - Database path (overrides storage.path)
//	--seed <value>      - RNG seed for reproducible games
//	--log-level <level> - debug, info, warn or error (overrides log.level)
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/mnac/internal/config"
	"github.com/vovakirdan/mnac/internal/i18n"
	"github.com/vovakirdan/mnac/internal/render"
	"github.com/vovakirdan/mnac/internal/session"
	"github.com/vovakirdan/mnac/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagSeed     int64
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mnac",
	Short: "Meta Noughts and Crosses - noughts and crosses on nine boards",
	Long: `Meta Noughts and Crosses is noughts and crosses played on a three by
three board of boards. Every cell you take sends your opponent to the
matching grid, and winning three grids in a row wins the game.

Available commands:
  play     - Practice game in this terminal
  serve    - SSH server with shared rooms
  bench    - Random self-play statistics
  history  - Finished matches and leaderboard
  langs    - Message languages

Examples:
  mnac play
  mnac play --rules open
  mnac serve --ssh :2323
  mnac bench --games 100000 --verify
  mnac history --tui`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (default from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (default from config)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(langsCmd)
}

// loadConfig loads the config file and applies the global flag overrides.
func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger creates the process logger.
func newLogger(cfg config.Config, w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "mnac",
		Level:           cfg.LogLevel(),
	})
}

// services are the long-lived parts shared by play and serve.
type services struct {
	store   *storage.Store // nil when the database could not be opened
	manager *session.Manager
	router  *session.Router
	cache   *render.Cache
	catalog *i18n.Catalog
}

// newServices opens storage and wires the session manager, render cache and
// router. A database that cannot be opened is reported and the game runs
// without persistence.
func newServices(ctx context.Context, cfg config.Config, logger *log.Logger) (*services, error) {
	catalog, err := i18n.Load(cfg.Language.Default)
	if err != nil {
		return nil, fmt.Errorf("loading languages: %w", err)
	}

	mcfg, err := cfg.Manager(flagSeed)
	if err != nil {
		return nil, err
	}

	svc := &services{catalog: catalog}

	var (
		persister session.Persister
		backing   render.Backing
	)
	store, err := storage.Open(cfg.StoragePath())
	if err != nil {
		logger.Warn("running without database", "path", cfg.StoragePath(), "err", err)
	} else {
		svc.store = store
		persister = store
		if cfg.Render.Persist {
			backing = store
		}
	}

	svc.manager = session.NewManager(mcfg, persister, logger)
	if err := svc.manager.Restore(ctx); err != nil {
		logger.Warn("restoring saved matches failed", "err", err)
	}
	svc.cache = render.NewCache(cfg.Render.CacheSize, backing, logger)
	svc.router = session.NewRouter(svc.manager, catalog, svc.cache, cfg.Session.Prefix)
	return svc, nil
}

// Close stops the manager and closes the database.
func (s *services) Close() {
	s.manager.Close()
	if s.store != nil {
		s.store.Close()
	}
}
