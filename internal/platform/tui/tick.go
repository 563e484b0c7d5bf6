// Package tui provides the Bubble Tea front-end: a game room bound to a
// session channel, the match history screen and the Wish SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent periodically so that lobby and match timeouts show up
// without user input.
type TickMsg time.Time

// refreshInterval is how often an idle room polls its channel.
const refreshInterval = time.Second

// tickCmd returns a Bubble Tea command that sends a tick after interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
