package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/mnac/internal/core"
	"github.com/vovakirdan/mnac/internal/i18n"
	"github.com/vovakirdan/mnac/internal/session"
)

func newTestRoom(t *testing.T, mgr *session.Manager, router *session.Router, ch, user string, private bool) RoomModel {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Colors = false
	m := NewRoomModel(RoomOptions{
		Manager: mgr,
		Router:  router,
		Channel: ch,
		User:    user,
		Private: private,
		Config:  cfg,
	})
	t.Cleanup(func() {
		m.Handle().Close()
		mgr.Unsubscribe(ch, m.Handle().ID())
	})
	return m
}

func newTestSession(t *testing.T) (*session.Manager, *session.Router) {
	t.Helper()
	cfg := session.DefaultConfig()
	cfg.LobbyTimeout = time.Minute
	cfg.Seed = 1
	mgr := session.NewManager(cfg, nil, nil)

	catalog, err := i18n.Load("en")
	if err != nil {
		t.Fatalf("i18n.Load() error: %v", err)
	}
	return mgr, session.NewRouter(mgr, catalog, nil, "")
}

// typeLine types text into the command line and presses enter.
func typeLine(m RoomModel, line string) RoomModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(RoomModel)
}

func press(m RoomModel, k tea.KeyType) (RoomModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(RoomModel), cmd
}

func lastLine(m RoomModel) string {
	log := m.Log()
	if len(log) == 0 {
		return ""
	}
	return log[len(log)-1]
}

// deliver feeds the next queued channel event to the room.
func deliver(t *testing.T, m RoomModel) RoomModel {
	t.Helper()
	select {
	case evt := <-m.Handle().Events():
		next, _ := m.Update(eventMsg{evt: evt})
		return next.(RoomModel)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	return m
}

func TestRoomPracticeGame(t *testing.T) {
	mgr, router := newTestSession(t)
	m := newTestRoom(t, mgr, router, "practice/alice", "alice", true)

	if m.Board() != "" {
		t.Error("board should be empty before a match")
	}
	if got := m.Status(); got != "No game here. Start one with start." {
		t.Errorf("Status() = %q", got)
	}

	m = typeLine(m, "start")
	if m.Board() == "" {
		t.Fatal("board should be drawn after start")
	}
	if got := lastLine(m); got != "Noughts: choose the starting grid" {
		t.Errorf("after start, last line = %q", got)
	}

	m = typeLine(m, "centre")
	if got := lastLine(m); got != "House rules: you cannot start in the middle grid." {
		t.Errorf("centre start, last line = %q", got)
	}

	m = typeLine(m, "ne")
	if got := lastLine(m); got != "Noughts in the northeast grid: take a cell" {
		t.Errorf("after ne, last line = %q", got)
	}
	if got := m.Status(); got != "Noughts in the northeast grid: take a cell" {
		t.Errorf("Status() = %q", got)
	}
	if !strings.Contains(m.View(), "practice/alice") {
		t.Error("view should name the room")
	}
}

func TestRoomRandomKey(t *testing.T) {
	mgr, router := newTestSession(t)
	m := newTestRoom(t, mgr, router, "practice/bob", "bob", true)
	m = typeLine(m, "start")

	m, _ = press(m, tea.KeyCtrlR)
	if got := lastLine(m); !strings.HasPrefix(got, "Noughts in the ") {
		t.Errorf("after random move, last line = %q", got)
	}
	if strings.Contains(lastLine(m), "centre") {
		t.Error("random start should respect the centre rule")
	}
}

func TestRoomRepeatedLineShownOnce(t *testing.T) {
	mgr, router := newTestSession(t)
	m := newTestRoom(t, mgr, router, "practice/carol", "carol", true)

	m = typeLine(m, "stop")
	m = typeLine(m, "stop")
	if got := len(m.Log()); got != 1 {
		t.Errorf("log has %d lines, expected 1: %q", got, m.Log())
	}
	if got := lastLine(m); got != "There is no game running here." {
		t.Errorf("last line = %q", got)
	}
}

func TestRoomSharedLobby(t *testing.T) {
	mgr, router := newTestSession(t)
	alice := newTestRoom(t, mgr, router, "lobby", "alice", false)
	bob := newTestRoom(t, mgr, router, "lobby", "bob", false)

	// No prefix is needed in a room.
	alice = typeLine(alice, "start")
	if got := lastLine(alice); !strings.HasPrefix(got, "Lobby open!") {
		t.Fatalf("alice last line = %q", got)
	}

	bob = deliver(t, bob)
	if got := lastLine(bob); got != "alice is waiting for an opponent. Join with start." {
		t.Errorf("bob last line = %q", got)
	}
	if !strings.HasPrefix(bob.Status(), "alice is waiting") {
		t.Errorf("bob status = %q", bob.Status())
	}

	bob = typeLine(bob, "start")
	log := bob.Log()
	if len(log) < 2 || log[len(log)-2] != "alice plays noughts, bob plays crosses. Good luck!" {
		t.Errorf("bob log = %q", log)
	}
	if got := lastLine(bob); got != "Noughts: choose the starting grid (alice)" {
		t.Errorf("bob last line = %q", got)
	}

	// Only the mover may play.
	bob = typeLine(bob, "nw")
	if got := lastLine(bob); got != "It is not your turn." {
		t.Errorf("bob out of turn, last line = %q", got)
	}

	alice = deliver(t, alice) // the host's own lobby is not repeated
	alice = deliver(t, alice)
	if got := lastLine(alice); got != "alice plays noughts, bob plays crosses. Good luck!" {
		t.Errorf("alice last line = %q", got)
	}
	if alice.Board() == "" {
		t.Error("alice should see the board after bob joined")
	}
}

func TestRoomStoppedMatchIsReported(t *testing.T) {
	mgr, router := newTestSession(t)
	alice := newTestRoom(t, mgr, router, "lobby", "alice", false)
	bob := newTestRoom(t, mgr, router, "lobby", "bob", false)

	alice = typeLine(alice, "start")
	bob = typeLine(bob, "start")
	bob = typeLine(bob, "stop")
	if got := lastLine(bob); got != "bob stopped the game." {
		t.Errorf("bob last line = %q", got)
	}

	var found bool
	for range 3 {
		alice = deliver(t, alice)
		if lastLine(alice) == "The game was stopped." {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("alice never saw the stop, log = %q", alice.Log())
	}
	if alice.Board() == "" {
		t.Error("the final position should stay on screen")
	}
	if got := alice.Status(); got != "No game here. Start one with start." {
		t.Errorf("alice status = %q", got)
	}
}

func TestRoomAutoStart(t *testing.T) {
	mgr, router := newTestSession(t)
	cfg := core.DefaultConfig()
	m := NewRoomModel(RoomOptions{
		Manager:   mgr,
		Router:    router,
		Channel:   "local",
		User:      "you",
		Private:   true,
		AutoStart: true,
		StartArgs: "allowmiddle",
		Config:    cfg,
	})
	defer m.Handle().Close()

	next, _ := m.Update(autoStartMsg{})
	m = next.(RoomModel)
	if m.Board() == "" {
		t.Fatal("auto start should begin a match")
	}

	m = typeLine(m, "centre")
	if got := lastLine(m); got != "Noughts in the centre grid: take a cell" {
		t.Errorf("allowmiddle start, last line = %q", got)
	}

	// A second auto start leaves the running match alone.
	before := m.Board()
	next, _ = m.Update(autoStartMsg{})
	if next.(RoomModel).Board() != before {
		t.Error("auto start replaced a running match")
	}
}

func TestRoomQuit(t *testing.T) {
	mgr, router := newTestSession(t)
	m := newTestRoom(t, mgr, router, "practice/dave", "dave", true)

	m, cmd := press(m, tea.KeyCtrlC)
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit should return tea.Quit")
	}
	select {
	case <-m.Handle().Done():
	default:
		t.Error("quit should close the handle")
	}
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}
}

func TestRoomClearLine(t *testing.T) {
	mgr, router := newTestSession(t)
	m := newTestRoom(t, mgr, router, "practice/erin", "erin", true)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("start")})
	m = next.(RoomModel)
	m, _ = press(m, tea.KeyEsc)
	m, _ = press(m, tea.KeyEnter)
	if m.Board() != "" || len(m.Log()) != 0 {
		t.Error("a cleared line should not be sent")
	}
}

func TestRoomScreenshot(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	mgr, router := newTestSession(t)
	m := newTestRoom(t, mgr, router, "practice/frank", "frank", true)
	m = typeLine(m, "start")
	m, _ = press(m, tea.KeyCtrlS)

	files, err := filepath.Glob(filepath.Join(home, ".mnac", "screenshots", "practice_frank_*.txt"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one screenshot, got %v (err %v)", files, err)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if strings.TrimSuffix(string(data), "\n") != m.Board() {
		t.Error("screenshot should hold the plain board")
	}
	if !strings.Contains(m.View(), "saved ") {
		t.Error("view should report the saved path")
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"lobby", "lobby"},
		{"practice/alice", "practice_alice"},
		{`a b\c`, "a_b_c"},
	}
	for _, tt := range tests {
		if got := safeName(tt.in); got != tt.want {
			t.Errorf("safeName(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderBoardPlain(t *testing.T) {
	text := "O | X\n--+--"
	if got := RenderBoard(text, false); got != text {
		t.Errorf("RenderBoard(colors off) = %q", got)
	}
	if got := RenderBoard("", true); got != "" {
		t.Errorf("RenderBoard(empty) = %q", got)
	}
}
