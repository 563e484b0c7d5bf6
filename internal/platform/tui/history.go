package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/mnac/internal/core"
	"github.com/vovakirdan/mnac/internal/games/mnac"
	"github.com/vovakirdan/mnac/internal/session"
	"github.com/vovakirdan/mnac/internal/storage"
)

// History layout constants
const (
	maxHistoryRows = 100
	tableMinHeight = 5
)

// HistorySource is the read side of storage the history screen needs.
type HistorySource interface {
	RecentResults(ctx context.Context, limit int) ([]session.ResultRecord, error)
	Leaderboard(ctx context.Context, limit int) ([]storage.PlayerStats, error)
	Stats(ctx context.Context) (*storage.ResultStats, error)
}

var _ HistorySource = (*storage.Store)(nil)

// HistoryTab selects what the history table shows.
type HistoryTab int

const (
	TabRecent HistoryTab = iota
	TabLeaderboard
)

var historyTabs = []string{"Recent matches", "Leaderboard"}

// HistoryModel is the Bubble Tea model for the match history screen.
type HistoryModel struct {
	source HistorySource
	tab    HistoryTab
	table  table.Model
	help   help.Model
	keys   HistoryKeyMap

	results []session.ResultRecord
	players []storage.PlayerStats
	stats   *storage.ResultStats
	err     error

	width    int
	height   int
	quitting bool
}

// NewHistoryModel creates a history screen.
func NewHistoryModel(source HistorySource, width, height int) HistoryModel {
	h := help.New()
	h.ShowAll = false

	m := HistoryModel{
		source: source,
		keys:   DefaultHistoryKeyMap(),
		help:   h,
		width:  width,
		height: height,
	}
	m.load()
	return m
}

// load reads results and statistics from the source.
func (m *HistoryModel) load() {
	ctx := context.Background()
	m.err = nil

	results, err := m.source.RecentResults(ctx, maxHistoryRows)
	if err != nil {
		m.err = err
	}
	players, err := m.source.Leaderboard(ctx, maxHistoryRows)
	if err != nil {
		m.err = err
	}
	stats, err := m.source.Stats(ctx)
	if err != nil {
		m.err = err
	}

	m.results, m.players, m.stats = results, players, stats
	m.table = m.createTable()
}

// createTable builds the table for the current tab.
func (m *HistoryModel) createTable() table.Model {
	var (
		columns []table.Column
		rows    []table.Row
	)

	switch m.tab {
	case TabRecent:
		columns = []table.Column{
			{Title: "Ended", Width: 13},
			{Title: "Room", Width: 12},
			{Title: "Noughts", Width: 12},
			{Title: "Crosses", Width: 12},
			{Title: "Result", Width: 14},
			{Title: "Moves", Width: 6},
		}
		rows = make([]table.Row, len(m.results))
		for i, r := range m.results {
			rows[i] = table.Row{
				r.EndedAt.Local().Format("Jan 02 15:04"),
				r.Channel,
				r.Noughts,
				r.Crosses,
				resultText(r),
				fmt.Sprintf("%d", r.Moves),
			}
		}
	case TabLeaderboard:
		columns = []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Player", Width: 16},
			{Title: "Played", Width: 8},
			{Title: "Won", Width: 6},
			{Title: "Lost", Width: 6},
			{Title: "Drawn", Width: 6},
		}
		rows = make([]table.Row, len(m.players))
		for i, p := range m.players {
			rows[i] = table.Row{
				fmt.Sprintf("#%d", i+1),
				p.User,
				fmt.Sprintf("%d", p.Played),
				fmt.Sprintf("%d", p.Won),
				fmt.Sprintf("%d", p.Lost),
				fmt.Sprintf("%d", p.Drawn),
			}
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(core.Clamp(m.height-10, tableMinHeight, maxHistoryRows)), // Leave room for header, stats and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// resultText summarises how a match ended.
func resultText(r session.ResultRecord) string {
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
			return "draw (8 of 9)"
		}
		return "draw"
	}
	return "-"
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % HistoryTab(len(historyTabs))
			m.table = m.createTable()
			return m, nil

		case key.Matches(msg, m.keys.PrevTab):
			m.tab = (m.tab + HistoryTab(len(historyTabs)) - 1) % HistoryTab(len(historyTabs))
			m.table = m.createTable()
			return m, nil

		case key.Matches(msg, m.keys.Reload):
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	b.WriteString(titleStyle.Render(centerText("MATCH HISTORY", m.width)))
	b.WriteString("\n\n")

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)
	tabs := make([]string, len(historyTabs))
	for i, name := range historyTabs {
		if HistoryTab(i) == m.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(name)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))
	b.WriteString("\n")

	statsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	b.WriteString(statsStyle.Render(m.statsLine()))
	b.WriteString("\n")

	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
		b.WriteString(errStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or empty message.
func (m HistoryModel) renderTableContent() string {
	if len(m.table.Rows()) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No matches recorded yet.\nFinish a game to see it here!")
	}
	return m.table.View()
}

// statsLine summarises all results in one line.
func (m HistoryModel) statsLine() string {
	if m.stats == nil || m.stats.Matches == 0 {
		return ""
	}
	s := m.stats
	return fmt.Sprintf("%d matches · noughts %d · crosses %d · draws %d (%d forced) · stopped %d · expired %d · %.1f moves avg",
		s.Matches, s.NoughtsWins, s.CrossesWins, s.Draws, s.ForcedDraws, s.Stopped, s.Expired, s.AvgMoves)
}

// Tab returns the selected tab.
func (m HistoryModel) Tab() HistoryTab {
	return m.tab
}

// centerText centers text within the given width.
func centerText(text string, width int) string {
	textWidth := lipgloss.Width(text)
	if textWidth >= width {
		return text
	}
	padding := (width - textWidth) / 2
	return strings.Repeat(" ", padding) + text
}

// RunHistory runs the history screen.
func RunHistory(source HistorySource, width, height int) error {
	model := NewHistoryModel(source, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
