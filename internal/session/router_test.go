package session

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/mnac/internal/i18n"
)

func newTestRouter(t *testing.T) (*Router, *Manager) {
	t.Helper()
	m, _, _ := newTestManager(t)
	catalog, err := i18n.Load("en")
	require.NoError(t, err)
	return NewRouter(m, catalog, nil, ""), m
}

func say(t *testing.T, rt *Router, ch, user string, private bool, line string) Reply {
	t.Helper()
	reply, ok := rt.Handle(context.Background(), ch, user, private, line)
	require.True(t, ok, "line %q was ignored", line)
	return reply
}

func TestRouterIgnoresChatter(t *testing.T) {
	rt, _ := newTestRouter(t)
	ctx := context.Background()

	for _, line := range []string{"hello there", "nw", "mnac/", "  "} {
		_, ok := rt.Handle(ctx, "general", "alice", false, line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestRouterHelp(t *testing.T) {
	rt, _ := newTestRouter(t)
	assert.Equal(t, "mnac/", rt.Prefix())

	reply := say(t, rt, "general", "alice", false, "MNAC/help")
	require.Len(t, reply.Lines, 1)
	assert.Contains(t, reply.Lines[0], "mnac/play <direction>")

	reply = say(t, rt, "general", "alice", false, "mnac/help start")
	assert.Contains(t, reply.Lines[0], "allowmiddle")

	reply = say(t, rt, "general", "alice", false, "mnac/dance")
	assert.Contains(t, reply.Lines[0], "dance")
}

func TestRouterPrivateSolo(t *testing.T) {
	rt, _ := newTestRouter(t)

	reply := say(t, rt, "dm-alice", "alice", true, "start")
	assert.NotEmpty(t, reply.Board)
	assert.Equal(t, []string{"Noughts: choose the starting grid"}, reply.Lines)

	reply = say(t, rt, "dm-alice", "alice", true, "center")
	assert.Empty(t, reply.Board)
	assert.Equal(t, []string{"House rules: you cannot start in the middle grid."}, reply.Lines)

	reply = say(t, rt, "dm-alice", "alice", true, "play ne")
	assert.NotEmpty(t, reply.Board)
	assert.Equal(t, []string{"Noughts in the northeast grid: take a cell"}, reply.Lines)

	reply = say(t, rt, "dm-alice", "alice", true, "stop")
	assert.Equal(t, []string{"Practice game stopped."}, reply.Lines)
}

func TestRouterTwoPlayers(t *testing.T) {
	rt, _ := newTestRouter(t)
	ctx := context.Background()

	reply := say(t, rt, "general", "alice", false, "mnac/start")
	require.Len(t, reply.Lines, 1)
	assert.Contains(t, reply.Lines[0], "60 seconds")

	reply = say(t, rt, "general", "alice", false, "mnac/start")
	assert.Equal(t, []string{"You are already waiting for an opponent."}, reply.Lines)

	reply = say(t, rt, "general", "alice", false, "mnac/status")
	assert.Contains(t, reply.Lines[0], "alice is waiting")

	reply = say(t, rt, "general", "bob", false, "mnac/start")
	require.Len(t, reply.Lines, 2)
	assert.Equal(t, "alice plays noughts, bob plays crosses. Good luck!", reply.Lines[0])
	assert.Equal(t, "Noughts: choose the starting grid (alice)", reply.Lines[1])

	// Bare directions from players are moves.
	reply = say(t, rt, "general", "bob", false, "nw")
	assert.Equal(t, []string{"It is not your turn."}, reply.Lines)

	reply = say(t, rt, "general", "alice", false, "NW")
	assert.NotEmpty(t, reply.Board)

	_, ok := rt.Handle(ctx, "general", "carol", false, "n")
	assert.False(t, ok, "bystanders' directions are chatter")

	reply = say(t, rt, "general", "carol", false, "mnac/play n")
	assert.Equal(t, []string{"You are not playing in this game."}, reply.Lines)

	reply = say(t, rt, "general", "alice", false, "mnac/play")
	assert.Contains(t, reply.Lines[0], "mnac/play nw")

	reply = say(t, rt, "general", "alice", false, "mnac/play up left")
	assert.Equal(t, []string{"I don't know the direction up left."}, reply.Lines)

	reply = say(t, rt, "general", "alice", false, "mnac/random")
	require.Len(t, reply.Lines, 1)
	assert.True(t, strings.HasSuffix(reply.Lines[0], "(bob)"), reply.Lines[0])

	reply = say(t, rt, "general", "carol", false, "mnac/start")
	assert.Equal(t, []string{"A game is already running here."}, reply.Lines)

	reply = say(t, rt, "general", "bob", false, "mnac/stop")
	assert.Equal(t, []string{"bob stopped the game."}, reply.Lines)

	reply = say(t, rt, "general", "bob", false, "mnac/status")
	assert.Contains(t, reply.Lines[0], "No game here")
}

func TestRouterStopLobby(t *testing.T) {
	rt, _ := newTestRouter(t)

	reply := say(t, rt, "general", "alice", false, "mnac/stop")
	assert.Equal(t, []string{"There is no game running here."}, reply.Lines)

	say(t, rt, "general", "alice", false, "mnac/start")
	reply = say(t, rt, "general", "alice", false, "mnac/stop")
	assert.Equal(t, []string{"The lobby is closed."}, reply.Lines)
}

func TestRouterLanguage(t *testing.T) {
	rt, m := newTestRouter(t)

	reply := say(t, rt, "general", "alice", false, "mnac/lang")
	assert.Equal(t, "Available languages:", reply.Lines[0])
	assert.Len(t, reply.Lines, 4)

	reply = say(t, rt, "general", "alice", false, "mnac/lang de")
	assert.Equal(t, []string{"Sprache auf Deutsch gestellt."}, reply.Lines)
	assert.Equal(t, "de", m.Language("general"))
	assert.Equal(t, "de", rt.Language("general").Code)

	reply = say(t, rt, "general", "alice", false, "mnac/lang xx")
	assert.Contains(t, reply.Lines[0], "xx")

	// Other channels keep the default.
	assert.Equal(t, "en", rt.Language("random").Code)
}

func TestReplyString(t *testing.T) {
	r := Reply{Board: "board", Lines: []string{"one", "two"}}
	assert.Equal(t, "board\none\ntwo", r.String())
	assert.Equal(t, "one", Reply{Lines: []string{"one"}}.String())
}
