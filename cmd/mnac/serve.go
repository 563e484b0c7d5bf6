package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mnac/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagRoom        string
	flagIdleTimeout time.Duration
	flagKeepRenders int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server",
	Long: `Start an SSH server where users meet in shared rooms.

The SSH command names the room to join. Without one, users pick a room from
a menu that lists the default room, every room with a lobby or a game and a
private practice room. Everyone in a room sees the same board.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, uses server.host_key from the config (auto-generated if missing)

Examples:
  mnac serve                           # Listen on the configured address
  mnac serve --ssh :2222               # Listen on port 2222
  mnac serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 2323                # room picker
  ssh -t localhost -p 2323 friday      # join room "friday"`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (default from config)")
	serveCmd.Flags().StringVar(&flagRoom, "room", "", "Room listed first in the menu (default from config)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting (default from config)")
	serveCmd.Flags().IntVar(&flagKeepRenders, "keep-renders", 4096, "Rendered boards kept in the database at startup (0 = keep all)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if flagSSHAddr != "" {
		cfg.Server.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKey = flagHostKey
	}
	if flagRoom != "" {
		cfg.Server.DefaultRoom = flagRoom
	}
	if flagIdleTimeout > 0 {
		cfg.Server.IdleTimeout = flagIdleTimeout
	}

	logger := newLogger(cfg, os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := newServices(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	if svc.store != nil && flagKeepRenders > 0 {
		n, err := svc.store.PruneRenders(ctx, flagKeepRenders)
		if err != nil {
			logger.Warn("pruning render cache failed", "err", err)
		} else if n > 0 {
			logger.Info("pruned render cache", "removed", n)
		}
	}

	go svc.manager.Run(ctx)

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     cfg.Server.Address,
		HostKeyPath: cfg.HostKeyPath(),
		IdleTimeout: cfg.Server.IdleTimeout,
		DefaultRoom: cfg.Server.DefaultRoom,
		Colors:      true,
	}, svc.manager, svc.router, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting mnac SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		logger.Error("server stopped with error", "err", err)
	}

	stats := svc.cache.Stats()
	logger.Info("render cache", "hits", stats.Hits, "misses", stats.Misses, "entries", stats.Entries)
}
