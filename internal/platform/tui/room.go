package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/vovakirdan/mnac/internal/core"
	"github.com/vovakirdan/mnac/internal/i18n"
	"github.com/vovakirdan/mnac/internal/session"
)

// maxLogLines is how many message lines a room keeps on screen.
const maxLogLines = 8

// RoomOptions configures a room model.
type RoomOptions struct {
	Manager *session.Manager
	Router  *session.Router
	Channel string
	User    string

	// Private rooms accept commands without the prefix and start solo
	// matches.
	Private bool

	// AutoStart sends a start command when the room has no match.
	// StartArgs are appended to it, e.g. "allowmiddle".
	AutoStart bool
	StartArgs string

	Config core.RuntimeConfig
}

// eventMsg wraps a session event for the Bubble Tea loop.
type eventMsg struct{ evt session.Event }

// RoomModel is the Bubble Tea model of one game room.
type RoomModel struct {
	opts   RoomOptions
	handle *session.ChannelHandle
	ctx    context.Context

	input textinput.Model
	help  help.Model
	keys  RoomKeyMap

	board  string // plain board text of the current or last match
	status string // prompt or lobby line under the board
	log    []string
	flash  string // transient notice, e.g. screenshot path

	width    int
	height   int
	quitting bool
}

// NewRoomModel creates a room and subscribes it to its channel.
func NewRoomModel(opts RoomOptions) RoomModel {
	if opts.Config.ScreenW == 0 {
		opts.Config = core.DefaultConfig()
	}

	ti := textinput.New()
	ti.Placeholder = "nw, 5, " + opts.Router.Prefix() + "help"
	ti.Prompt = "> "
	ti.CharLimit = 80
	ti.Focus()

	h := help.New()
	h.ShowAll = false

	handle := session.NewChannelHandle(session.HandleID(uuid.NewString()), 64)
	opts.Manager.Subscribe(opts.Channel, handle)

	m := RoomModel{
		opts:   opts,
		handle: handle,
		ctx:    context.Background(),
		input:  ti,
		help:   h,
		keys:   DefaultRoomKeyMap(),
		width:  opts.Config.ScreenW,
		height: opts.Config.ScreenH,
	}
	m.refresh()
	return m
}

// Handle returns the event handle of the room. Close it to unsubscribe.
func (m RoomModel) Handle() *session.ChannelHandle {
	return m.handle
}

// Init starts the event loop and, when asked, the match.
func (m RoomModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.waitForEvent(), tickCmd(refreshInterval)}
	if m.opts.AutoStart {
		cmds = append(cmds, m.autoStart())
	}
	return tea.Batch(cmds...)
}

// autoStartMsg asks Update to start a match.
type autoStartMsg struct{}

func (m RoomModel) autoStart() tea.Cmd {
	return func() tea.Msg { return autoStartMsg{} }
}

// waitForEvent returns a command that waits for channel events.
func (m RoomModel) waitForEvent() tea.Cmd {
	events := m.handle.Events()
	done := m.handle.Done()
	return func() tea.Msg {
		select {
		case evt := <-events:
			return eventMsg{evt: evt}
		case <-done:
			return nil
		}
	}
}

// Update handles messages.
func (m RoomModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		m.refresh()
		return m, tickCmd(refreshInterval)

	case autoStartMsg:
		st := m.opts.Manager.Status(m.ctx, m.opts.Channel)
		if st.Match == nil && st.Lobby == nil {
			m.send(strings.TrimSpace("start " + m.opts.StartArgs))
		}
		return m, nil

	case eventMsg:
		m.handleEvent(msg.evt)
		return m, m.waitForEvent()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes keyboard input.
func (m RoomModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.handle.Close()
		m.opts.Manager.Unsubscribe(m.opts.Channel, m.handle.ID())
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if line != "" {
			m.send(line)
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Random):
		m.send("random")
		return m, nil

	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send routes one typed line. In a shared room a line that is not a
// command is retried with the prefix, so the prefix is never needed.
func (m *RoomModel) send(line string) {
	m.flash = ""
	reply, ok := m.opts.Router.Handle(m.ctx, m.opts.Channel, m.opts.User, m.opts.Private, line)
	if !ok {
		reply, ok = m.opts.Router.Handle(m.ctx, m.opts.Channel, m.opts.User, m.opts.Private, m.opts.Router.Prefix()+line)
	}
	if !ok {
		return
	}
	for _, l := range reply.Lines {
		m.say(l)
	}
	m.refresh()
}

// handleEvent reports what other users did in the channel.
func (m *RoomModel) handleEvent(evt session.Event) {
	lang := m.lang()
	switch e := evt.(type) {
	case session.LobbyOpenedEvent:
		if e.Host != m.opts.User {
			m.say(lang.Text("status_lobby", "host", e.Host, "prefix", ""))
		}
	case session.LobbyClosedEvent:
		if e.Reason == session.ReasonExpired {
			m.say(lang.Text("lobby_expired"))
		}
	case session.MatchStartedEvent:
		m.board = m.opts.Router.Board(m.ctx, e.Match)
		if !e.Match.Solo() {
			m.say(lang.Text("match_started", "noughts", e.Match.Noughts, "crosses", e.Match.Crosses))
		}
	case session.MovePlayedEvent:
		m.board = m.opts.Router.Board(m.ctx, e.Match)
	case session.MatchEndedEvent:
		m.board = m.opts.Router.Board(m.ctx, e.Match)
		m.say(endLine(lang, e))
	case session.LanguageChangedEvent:
		m.say(m.opts.Router.Language(m.opts.Channel).Text("language_changed"))
	}
	m.refresh()
}

func endLine(lang *i18n.Language, e session.MatchEndedEvent) string {
	switch e.Reason {
	case session.ReasonExpired:
		return lang.Text("match_expired")
	case session.ReasonStopped:
		return lang.Text("match_stopped")
	}
	g := e.Match.Game
	b := g.Board()
	return lang.Result(g.Winner(), !b.Overall().Decided())
}

// say appends a message line, skipping an immediate repeat.
func (m *RoomModel) say(line string) {
	if line == "" {
		return
	}
	if n := len(m.log); n > 0 && m.log[n-1] == line {
		return
	}
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

func (m *RoomModel) lang() *i18n.Language {
	return m.opts.Router.Language(m.opts.Channel)
}

// refresh redraws the board and the status line from the channel state.
func (m *RoomModel) refresh() {
	st := m.opts.Manager.Status(m.ctx, m.opts.Channel)
	lang := m.lang()

	// Without a match the final position of the last one stays up.
	switch {
	case st.Match != nil:
		m.board = m.opts.Router.Board(m.ctx, *st.Match)
		g := st.Match.Game
		m.status = lang.Prompt(g)
		if !st.Match.Solo() {
			m.status = fmt.Sprintf("%s (%s)", m.status, st.Match.Mover())
		}
	case st.Lobby != nil:
		m.board = ""
		left := max(time.Until(st.Lobby.ExpiresAt).Round(time.Second), 0)
		m.status = fmt.Sprintf("%s %s", lang.Text("status_lobby", "host", st.Lobby.Host, "prefix", ""), left)
	default:
		m.status = lang.Text("status_empty", "prefix", "")
	}
}

// saveScreenshot saves the current board to a file.
func (m *RoomModel) saveScreenshot() {
	if m.board == "" {
		return
	}

	home, err := os.UserHomeDir()
	if err != nil {
		m.flash = "screenshot failed: " + err.Error()
		return
	}
	dir := filepath.Join(home, ".mnac", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.flash = "screenshot failed: " + err.Error()
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", safeName(m.opts.Channel), timestamp))
	if err := os.WriteFile(path, []byte(m.board+"\n"), 0o600); err != nil {
		m.flash = "screenshot failed: " + err.Error()
		return
	}
	m.flash = "saved " + path
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, s)
}

var (
	roomTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	roomStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	roomLogStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	roomHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	roomBoardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// View renders the room.
func (m RoomModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(roomTitleStyle.Render(fmt.Sprintf("Meta Noughts and Crosses · %s · %s", m.opts.Channel, m.opts.User)))
	b.WriteString("\n\n")

	if m.board != "" {
		b.WriteString(roomBoardStyle.Render(RenderBoard(m.board, m.opts.Config.Colors)))
		b.WriteString("\n")
	}
	b.WriteString(roomStatusStyle.Render(m.status))
	b.WriteString("\n\n")

	for _, l := range m.log {
		b.WriteString(roomLogStyle.Render(l))
		b.WriteString("\n")
	}
	if m.flash != "" {
		b.WriteString(roomHelpStyle.Render(m.flash))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(roomHelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Log returns the message lines shown in the room.
func (m RoomModel) Log() []string {
	return append([]string(nil), m.log...)
}

// Board returns the plain board text of the current or last match.
func (m RoomModel) Board() string {
	return m.board
}

// Status returns the line shown under the board.
func (m RoomModel) Status() string {
	return m.status
}

// RunRoom runs a room in the local terminal until the user quits.
func RunRoom(opts RoomOptions) error {
	model := NewRoomModel(opts)
	defer func() {
		model.handle.Close()
		opts.Manager.Unsubscribe(opts.Channel, model.handle.ID())
	}()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
