package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/mnac/internal/config"
	"github.com/vovakirdan/mnac/internal/core"
	"github.com/vovakirdan/mnac/internal/platform/tui"
)

// localRoom is the channel of the local terminal game.
const localRoom = "local"

var (
	flagAllowMiddle bool
	flagStartGrid   string
	flagRules       string
	flagNoColor     bool
	flagLogFile     string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a practice game in this terminal",
	Long: `Start a practice game where you play both sides. An unfinished game
from last time is resumed.

Type a direction (nw, n, ne, w, c, e, sw, s, se) or a keypad digit and press
Enter. Type "help" for all commands.

Controls:
  Enter   - Send the line
  Esc     - Clear the line
  Ctrl+R  - Random move
  Ctrl+S  - Save the board to ~/.mnac/screenshots
  F1      - More keys
  Ctrl+C  - Quit

Rules presets:
  classic - No opening in the centre grid, first player picks the start grid
  open    - The centre grid is allowed for the opening
  quick   - Random start grid, centre excluded

Examples:
  mnac play
  mnac play --allow-middle
  mnac play --start random
  mnac play --rules quick`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagAllowMiddle, "allow-middle", false, "Allow opening in the centre grid")
	playCmd.Flags().StringVar(&flagStartGrid, "start", "", "Start grid: choose, random or a direction")
	playCmd.Flags().StringVar(&flagRules, "rules", "", "Rules preset: classic, open, quick")
	playCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Draw the board without colours")
	playCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file (default: no logs)")
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if err := applyRules(&cfg, flagRules, flagStartGrid, flagAllowMiddle); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The alternate screen owns the terminal, so logs go to a file or nowhere.
	logOut := io.Discard
	if flagLogFile != "" {
		f, err := os.OpenFile(filepath.Clean(flagLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(cfg, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := newServices(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if svc.store == nil {
		fmt.Fprintln(os.Stderr, "Warning: could not open the database, the game will not be saved")
	}
	go svc.manager.Run(ctx)

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	runErr := tui.RunRoom(tui.RoomOptions{
		Manager:   svc.manager,
		Router:    svc.router,
		Channel:   localRoom,
		User:      localUser(),
		Private:   true,
		AutoStart: true,
		Config: core.RuntimeConfig{
			ScreenW: width,
			ScreenH: height,
			Seed:    flagSeed,
			Colors:  !flagNoColor,
		},
	})

	// Close store before potential exit
	svc.Close()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

// applyRules applies a rules preset, then the start grid and centre overrides.
func applyRules(cfg *config.Config, preset, startGrid string, allowMiddle bool) error {
	if preset != "" {
		if err := config.ApplyPreset(cfg, config.RulesPreset(preset)); err != nil {
			return err
		}
	}
	if startGrid != "" {
		cfg.Rules.StartGrid = startGrid
	}
	if allowMiddle {
		cfg.Rules.NoMiddleStart = false
	}
	return cfg.Validate()
}

// localUser names the player of the local terminal.
func localUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "you"
}
