package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/mnac/internal/games/mnac"
	"github.com/vovakirdan/mnac/internal/i18n"
	"github.com/vovakirdan/mnac/internal/render"
)

// DefaultPrefix starts every command in a shared channel.
const DefaultPrefix = "mnac/"

// Reply is the Router's answer to one line.
type Reply struct {
	Board string   // rendered board, empty when the reply has none
	Lines []string // messages in the channel language
}

// String joins the board and the messages for plain-text front-ends.
func (r Reply) String() string {
	parts := make([]string, 0, len(r.Lines)+1)
	if r.Board != "" {
		parts = append(parts, r.Board)
	}
	parts = append(parts, r.Lines...)
	return strings.Join(parts, "\n")
}

func (r *Reply) say(line string) {
	r.Lines = append(r.Lines, line)
}

// Router parses chat lines into Manager calls.
type Router struct {
	mgr     *Manager
	catalog *i18n.Catalog
	cache   *render.Cache
	prefix  string
}

// NewRouter creates a router. An empty prefix selects DefaultPrefix.
func NewRouter(mgr *Manager, catalog *i18n.Catalog, cache *render.Cache, prefix string) *Router {
	prefix = strings.ToLower(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if cache == nil {
		cache = render.NewCache(0, nil, nil)
	}
	return &Router{mgr: mgr, catalog: catalog, cache: cache, prefix: prefix}
}

// Prefix returns the command prefix.
func (rt *Router) Prefix() string {
	return rt.prefix
}

// Language returns the message table of channel ch.
func (rt *Router) Language(ch string) *i18n.Language {
	return rt.catalog.Match(rt.mgr.Language(ch))
}

// Board renders the board of a match.
func (rt *Router) Board(ctx context.Context, mi MatchInfo) string {
	return rt.cache.Render(ctx, render.NewView(mi.Game))
}

// Handle answers a line written by user in channel ch. In a private channel
// the prefix is optional. A player in a live match may type a bare
// direction. ok is false when the line is not addressed to the game.
func (rt *Router) Handle(ctx context.Context, ch, user string, private bool, line string) (reply Reply, ok bool) {
	content := strings.ToLower(strings.TrimSpace(line))

	var (
		command string
		args    []string
	)
	st := rt.mgr.Status(ctx, ch)

	switch {
	case st.Match != nil && st.Match.Has(user) && isDirection(content):
		command, args = "play", []string{content}
	case strings.HasPrefix(content, rt.prefix):
		args = strings.Fields(content[len(rt.prefix):])
	case private:
		args = strings.Fields(content)
	default:
		return Reply{}, false
	}
	if command == "" {
		if len(args) == 0 {
			return Reply{}, false
		}
		command, args = args[0], args[1:]
	}

	lang := rt.Language(ch)
	switch command {
	case "help":
		key := "help"
		if contains(args, "start") {
			key = "help_start"
		}
		reply.say(lang.Text(key, "prefix", rt.prefix))
	case "status":
		reply = rt.status(ctx, st, private, lang)
	case "lang":
		reply = rt.language(ctx, ch, args, lang)
	case "start":
		opts := Options{
			Solo:        private || contains(args, "solo") || contains(args, "practice"),
			AllowMiddle: contains(args, "allowmiddle"),
		}
		reply = rt.start(ctx, ch, user, opts, lang)
	case "play":
		if len(args) == 0 {
			reply.say(lang.Text("play_no_args", "prefix", rt.prefix))
			break
		}
		direction := strings.Join(args, " ")
		res, err := rt.mgr.Play(ctx, ch, user, direction)
		reply = rt.played(ctx, res, err, direction, lang)
	case "random":
		res, err := rt.mgr.Random(ctx, ch, user)
		reply = rt.played(ctx, res, err, "", lang)
	case "stop":
		reply = rt.stop(ctx, ch, user, lang)
	default:
		reply.say(lang.Text("command_unknown", "command", command, "prefix", rt.prefix))
	}
	return reply, true
}

func isDirection(content string) bool {
	_, ok := mnac.ParseIndex(content)
	return ok
}

func contains(args []string, word string) bool {
	for _, a := range args {
		if a == word {
			return true
		}
	}
	return false
}

func (rt *Router) status(ctx context.Context, st RoomStatus, private bool, lang *i18n.Language) Reply {
	var reply Reply
	switch {
	case st.Match != nil:
		reply = rt.show(ctx, *st.Match, lang)
	case st.Lobby != nil:
		reply.say(lang.Text("status_lobby", "host", st.Lobby.Host, "prefix", rt.prefix))
	case private:
		reply.say(lang.Text("status_solo", "prefix", rt.prefix))
	default:
		reply.say(lang.Text("status_empty", "prefix", rt.prefix))
	}
	return reply
}

// show renders the board with the next prompt or the result.
func (rt *Router) show(ctx context.Context, mi MatchInfo, lang *i18n.Language) Reply {
	reply := Reply{Board: rt.Board(ctx, mi)}
	g := mi.Game
	if g.Over() {
		b := g.Board()
		reply.say(lang.Result(g.Winner(), !b.Overall().Decided()))
		return reply
	}

	prompt := lang.Prompt(g)
	if !mi.Solo() {
		prompt = fmt.Sprintf("%s (%s)", prompt, mi.Mover())
	}
	reply.say(prompt)
	return reply
}

func (rt *Router) language(ctx context.Context, ch string, args []string, lang *i18n.Language) Reply {
	var reply Reply
	if len(args) > 0 {
		next, err := rt.catalog.Get(args[0])
		if err == nil {
			rt.mgr.SetLanguage(ctx, ch, next.Code)
			reply.say(next.Text("language_changed"))
			return reply
		}
		reply.say(lang.Text("language_unknown", "code", args[0]))
	}

	reply.say(lang.Text("language_help"))
	for _, code := range rt.catalog.Codes() {
		l, err := rt.catalog.Get(code)
		if err != nil {
			continue
		}
		reply.say(fmt.Sprintf("%-10s %s", l.Code, l.Name))
	}
	return reply
}

func (rt *Router) start(ctx context.Context, ch, user string, opts Options, lang *i18n.Language) Reply {
	res, err := rt.mgr.Start(ctx, ch, user, opts)
	if err != nil {
		return rt.failure(err, "", lang)
	}

	var reply Reply
	if res.Lobby != nil {
		seconds := int(res.Lobby.ExpiresAt.Sub(res.Lobby.OpenedAt).Seconds())
		reply.say(lang.Text("lobby_open", "seconds", seconds, "prefix", rt.prefix))
		return reply
	}

	mi := *res.Match
	if !mi.Solo() {
		reply.say(lang.Text("match_started", "noughts", mi.Noughts, "crosses", mi.Crosses))
	}
	shown := rt.show(ctx, mi, lang)
	reply.Board = shown.Board
	reply.Lines = append(reply.Lines, shown.Lines...)
	return reply
}

func (rt *Router) played(ctx context.Context, res PlayResult, err error, direction string, lang *i18n.Language) Reply {
	if err != nil {
		return rt.failure(err, direction, lang)
	}
	return rt.show(ctx, res.Match, lang)
}

func (rt *Router) stop(ctx context.Context, ch, user string, lang *i18n.Language) Reply {
	var reply Reply
	res, err := rt.mgr.Stop(ctx, ch, user)
	switch {
	case err != nil:
		return rt.failure(err, "", lang)
	case res.Lobby != nil:
		reply.say(lang.Text("lobby_closed"))
	case res.Match.Solo():
		reply.say(lang.Text("stop_success_solo"))
	default:
		reply.say(lang.Text("stop_success_multi", "user", user))
	}
	return reply
}

// failure maps a Manager or engine error to a message.
func (rt *Router) failure(err error, direction string, lang *i18n.Language) Reply {
	var (
		reply Reply
		me    *mnac.MoveError
	)
	switch {
	case errors.As(err, &me):
		reply.say(lang.Reject(err))
	case errors.Is(err, ErrNoMatch):
		reply.say(lang.Text("no_match"))
	case errors.Is(err, ErrNotPlayer):
		reply.say(lang.Text("not_player"))
	case errors.Is(err, ErrNotYourTurn):
		reply.say(lang.Text("not_your_turn"))
	case errors.Is(err, ErrMatchInProgress):
		reply.say(lang.Text("lobby_game_already_started"))
	case errors.Is(err, ErrAlreadyWaiting):
		reply.say(lang.Text("lobby_waiting"))
	case errors.Is(err, ErrUnknownDirection):
		reply.say(lang.Text("play_unknown_direction", "direction", direction))
	case errors.Is(err, ErrNoLegalMove):
		reply.say(lang.Text("play_unknown_error"))
	default:
		reply.say(lang.Text("error_internal", "err", err))
	}
	return reply
}
