package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/mnac/internal/session"
)

// MenuItem represents a selectable room in the menu.
type MenuItem struct {
	Room    string
	Title   string
	Private bool
}

// MenuModel is the Bubble Tea model for the room picker.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	quitting bool
	selected *MenuItem // Set when user selects a room
}

// practiceRoom names the private room of a user.
func practiceRoom(user string) string {
	return "practice/" + user
}

// MenuItems lists the rooms a user may enter: the default room, rooms with
// a lobby or a match, and the user's own practice room.
func MenuItems(mgr *session.Manager, user, defaultRoom string) []MenuItem {
	items := []MenuItem{{Room: defaultRoom, Title: defaultRoom}}
	for _, ch := range mgr.Channels() {
		if ch == defaultRoom || strings.HasPrefix(ch, "practice/") {
			continue
		}
		items = append(items, MenuItem{Room: ch, Title: ch})
	}
	items = append(items, MenuItem{Room: practiceRoom(user), Title: "practice (solo)", Private: true})
	return items
}

// NewMenuModel creates a new menu model.
func NewMenuModel(items []MenuItem, width, height int) MenuModel {
	return MenuModel{
		items:  items,
		width:  width,
		height: height,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
		}
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("M E T A   N O U G H T S   &   C R O S S E S"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Pick a room", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(fmt.Sprintf("%s%s", cursor, item.Title), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Join  |  Q: Quit"
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	}
	return MenuActionNone
}
