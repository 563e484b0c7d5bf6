package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/mnac/internal/core"
	"github.com/vovakirdan/mnac/internal/session"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":2323").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.mnac/ssh_host_ed25519.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// DefaultRoom is listed first in the room picker.
	DefaultRoom string

	// Colors enables board colours.
	Colors bool
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":2323",
		IdleTimeout: 30 * time.Minute,
		DefaultRoom: "lobby",
		Colors:      true,
	}
}

// SSHServer wraps a Wish SSH server. Every connection enters a room of
// the shared session manager.
type SSHServer struct {
	config  SSHServerConfig
	server  *ssh.Server
	manager *session.Manager
	router  *session.Router
	logger  *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, mgr *session.Manager, router *session.Router, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "mnac-ssh",
		})
	}
	if cfg.DefaultRoom == "" {
		cfg.DefaultRoom = DefaultSSHServerConfig().DefaultRoom
	}

	srv := &SSHServer{
		config:  cfg,
		manager: mgr,
		router:  router,
		logger:  logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".mnac", "ssh_host_ed25519")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session. The SSH
// command names the room; without one the user picks from a menu.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW: pty.Window.Width,
		ScreenH: pty.Window.Height,
		Seed:    time.Now().UnixNano(),
		Colors:  s.config.Colors,
	}

	model := NewSessionModel(s.manager, s.router, cfg, sshSession.User(), s.config.DefaultRoom)
	if room := strings.TrimSpace(strings.Join(sshSession.Command(), " ")); room != "" {
		model = model.Enter(MenuItem{Room: room, Title: room})
	}

	// Release the room subscription when the connection goes away.
	go func() {
		<-sshSession.Context().Done()
		model.Close()
	}()

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"command", sshSession.Command(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
			done <- syscall.SIGTERM
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionModel manages one SSH connection: room picker -> room.
type SessionModel struct {
	manager     *session.Manager
	router      *session.Router
	config      core.RuntimeConfig
	username    string
	defaultRoom string

	menu   MenuModel
	room   *RoomModel
	inRoom bool

	// sub is shared by every copy of the model so the SSH handler can
	// release the subscription of the room entered last.
	sub *subscription
}

type subscription struct {
	mu      sync.Mutex
	channel string
	handle  *session.ChannelHandle
}

// NewSessionModel creates a new session model starting at the room picker.
func NewSessionModel(mgr *session.Manager, router *session.Router, cfg core.RuntimeConfig, username, defaultRoom string) SessionModel {
	return SessionModel{
		manager:     mgr,
		router:      router,
		config:      cfg,
		username:    username,
		defaultRoom: defaultRoom,
		menu:        NewMenuModel(MenuItems(mgr, username, defaultRoom), cfg.ScreenW, cfg.ScreenH),
		sub:         &subscription{},
	}
}

// Enter switches the session into a room.
func (m SessionModel) Enter(item MenuItem) SessionModel {
	room := NewRoomModel(RoomOptions{
		Manager: m.manager,
		Router:  m.router,
		Channel: item.Room,
		User:    m.username,
		Private: item.Private,
		Config:  m.config,
	})
	m.room = &room
	m.inRoom = true

	m.sub.mu.Lock()
	m.sub.channel, m.sub.handle = item.Room, room.Handle()
	m.sub.mu.Unlock()
	return m
}

// Close releases the room subscription, if any.
func (m SessionModel) Close() {
	m.sub.mu.Lock()
	defer m.sub.mu.Unlock()
	if m.sub.handle != nil {
		m.sub.handle.Close()
		m.manager.Unsubscribe(m.sub.channel, m.sub.handle.ID())
	}
}

// Init initializes the session model.
func (m SessionModel) Init() tea.Cmd {
	if m.inRoom {
		return m.room.Init()
	}
	return m.menu.Init()
}

// Update routes messages to the menu or the room.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = ws.Width
		m.config.ScreenH = ws.Height
	}

	if m.inRoom {
		next, cmd := m.room.Update(msg)
		room := next.(RoomModel)
		m.room = &room
		return m, cmd
	}

	next, cmd := m.menu.Update(msg)
	m.menu = next.(MenuModel)
	if sel := m.menu.Selected(); sel != nil {
		m = m.Enter(*sel)
		return m, m.room.Init()
	}
	return m, cmd
}

// View renders the current screen.
func (m SessionModel) View() string {
	if m.inRoom {
		return m.room.View()
	}
	return m.menu.View()
}
