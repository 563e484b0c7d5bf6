package session

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/mnac/internal/games/mnac"
)

// Errors returned by Manager operations. The Router maps each of them to a
// localised message.
var (
	ErrNoMatch          = errors.New("session: no match in this channel")
	ErrNotYourTurn      = errors.New("session: not your turn")
	ErrNotPlayer        = errors.New("session: not a player in this match")
	ErrMatchInProgress  = errors.New("session: a match is already running")
	ErrAlreadyWaiting   = errors.New("session: already waiting in this lobby")
	ErrUnknownDirection = errors.New("session: unknown direction")
	ErrNoLegalMove      = errors.New("session: no legal move")
)

// Config holds the timing and rule settings of a Manager.
type Config struct {
	LobbyTimeout  time.Duration // how long a lobby waits for a second player
	GameTimeout   time.Duration // how long a match may run in total
	CleanupPeriod time.Duration // how often Run sweeps expired channels

	// Rules are the engine options for new matches. Options.AllowMiddle
	// overrides NoMiddleStart per match.
	Rules mnac.Config

	// Seed seeds random starts and random moves; 0 means time-based.
	Seed int64

	// Clock returns the current time; nil means time.Now.
	Clock func() time.Time
}

// DefaultConfig returns a five minute lobby window and a half hour match limit.
func DefaultConfig() Config {
	return Config{
		LobbyTimeout:  5 * time.Minute,
		GameTimeout:   30 * time.Minute,
		CleanupPeriod: 30 * time.Second,
		Rules:         mnac.DefaultConfig(),
	}
}

// StartResult tells whether a start request opened a lobby or began a match.
type StartResult struct {
	Lobby *Lobby
	Match *MatchInfo
}

// PlayResult describes an accepted move.
type PlayResult struct {
	Match  MatchInfo
	Effect mnac.MoveEffect
	Ended  bool
}

// StopResult describes what a stop request ended.
type StopResult struct {
	Lobby *Lobby
	Match *MatchInfo
}

type match struct {
	id        MatchID
	noughts   string
	crosses   string
	startedAt time.Time
	game      *mnac.Game
}

type room struct {
	mu    sync.Mutex
	name  string
	lobby *Lobby
	match *match
	lang  string
	subs  map[HandleID]Handle
}

// Manager owns every channel's lobby or match.
type Manager struct {
	cfg       Config
	persister Persister // optional
	logger    *log.Logger
	now       func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	mu    sync.Mutex
	rooms map[string]*room

	stopOnce sync.Once
	done     chan struct{}
}

// NewManager creates a manager. persister and logger may be nil.
func NewManager(cfg Config, persister Persister, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = DefaultConfig().CleanupPeriod
	}

	return &Manager{
		cfg:       cfg,
		persister: persister,
		logger:    logger,
		now:       now,
		rng:       rand.New(rand.NewSource(seed)),
		rooms:     make(map[string]*room),
		done:      make(chan struct{}),
	}
}

// Run sweeps expired lobbies and matches every CleanupPeriod until ctx is
// cancelled or Close is called.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.ExpireIdle(ctx)
		case <-ctx.Done():
			return
		case <-m.done:
			return
		}
	}
}

// Close ends Run. Safe to call more than once.
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
}

// Restore loads persisted matches and channel languages. Call it once
// before serving.
func (m *Manager) Restore(ctx context.Context) error {
	if m.persister == nil {
		return nil
	}

	langs, err := m.persister.LoadLanguages(ctx)
	if err != nil {
		return err
	}
	for ch, code := range langs {
		r := m.room(ch)
		r.mu.Lock()
		r.lang = code
		r.mu.Unlock()
	}

	recs, err := m.persister.LoadMatches(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		g, err := mnac.Deserialize(rec.Game)
		if err != nil {
			m.logger.Warn("dropping unreadable match", "channel", rec.Channel, "match", rec.ID, "err", err)
			m.deleteMatch(ctx, rec.Channel)
			continue
		}

		r := m.room(rec.Channel)
		r.mu.Lock()
		r.match = &match{
			id:        rec.ID,
			noughts:   rec.Noughts,
			crosses:   rec.Crosses,
			startedAt: rec.StartedAt,
			game:      g,
		}
		r.mu.Unlock()
		m.logger.Info("match restored", "channel", rec.Channel, "match", rec.ID, "moves", g.Moves())
	}
	return nil
}

func (m *Manager) room(ch string) *room {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[ch]
	if !ok {
		r = &room{name: ch, subs: make(map[HandleID]Handle)}
		m.rooms[ch] = r
	}
	return r
}

// Subscribe registers h for the events of channel ch.
func (m *Manager) Subscribe(ch string, h Handle) {
	r := m.room(ch)
	r.mu.Lock()
	r.subs[h.ID()] = h
	r.mu.Unlock()
}

// Unsubscribe removes a handle from channel ch.
func (m *Manager) Unsubscribe(ch string, id HandleID) {
	r := m.room(ch)
	r.mu.Lock()
	delete(r.subs, id)
	r.mu.Unlock()
}

// broadcast must be called with r.mu held.
func (r *room) broadcast(evt Event) {
	for id, h := range r.subs {
		select {
		case <-h.Done():
			delete(r.subs, id)
			continue
		default:
		}
		h.Send(evt)
	}
}

// Status reports what channel ch holds, expiring it first if due.
func (m *Manager) Status(ctx context.Context, ch string) RoomStatus {
	r := m.room(ch)
	r.mu.Lock()
	defer r.mu.Unlock()

	m.expire(ctx, r)

	st := RoomStatus{Channel: ch, Language: r.lang}
	if r.lobby != nil {
		l := *r.lobby
		st.Lobby = &l
	}
	if r.match != nil {
		info := m.info(r)
		st.Match = &info
	}
	return st
}

// Start handles a start request from user in channel ch.
//
// A solo request in an idle channel begins a match with user on both sides.
// Otherwise user joins the open lobby of another user, who plays noughts,
// or opens a new lobby.
func (m *Manager) Start(ctx context.Context, ch, user string, opts Options) (StartResult, error) {
	r := m.room(ch)
	r.mu.Lock()
	defer r.mu.Unlock()

	m.expire(ctx, r)

	if r.match != nil {
		return StartResult{}, ErrMatchInProgress
	}

	rules := m.cfg.Rules
	if opts.AllowMiddle {
		rules.NoMiddleStart = false
	}

	switch {
	case r.lobby != nil && r.lobby.Host == user:
		return StartResult{}, ErrAlreadyWaiting

	case r.lobby != nil:
		rules.NoMiddleStart = r.lobby.NoMiddleStart
		host := r.lobby.Host
		r.lobby = nil
		info := m.begin(ctx, r, host, user, rules)
		return StartResult{Match: &info}, nil

	case opts.Solo:
		info := m.begin(ctx, r, user, user, rules)
		return StartResult{Match: &info}, nil
	}

	now := m.now()
	r.lobby = &Lobby{
		Host:          user,
		OpenedAt:      now,
		ExpiresAt:     now.Add(m.cfg.LobbyTimeout),
		NoMiddleStart: rules.NoMiddleStart,
	}
	m.logger.Info("lobby opened", "channel", ch, "user", user)
	r.broadcast(LobbyOpenedEvent{Channel: ch, Host: user, ExpiresAt: r.lobby.ExpiresAt})

	l := *r.lobby
	return StartResult{Lobby: &l}, nil
}

// begin must be called with r.mu held.
func (m *Manager) begin(ctx context.Context, r *room, noughts, crosses string, rules mnac.Config) MatchInfo {
	m.rngMu.Lock()
	g := mnac.New(rules, m.rng)
	m.rngMu.Unlock()

	r.match = &match{
		id:        MatchID(uuid.NewString()),
		noughts:   noughts,
		crosses:   crosses,
		startedAt: m.now(),
		game:      g,
	}
	m.saveMatch(ctx, r)

	info := m.info(r)
	m.logger.Info("match started", "channel", r.name, "match", info.ID, "noughts", noughts, "crosses", crosses)
	r.broadcast(MatchStartedEvent{Match: info})
	return info
}

// Play applies a move given as a direction word or keypad digit.
func (m *Manager) Play(ctx context.Context, ch, user, text string) (PlayResult, error) {
	return m.move(ctx, ch, user, func(g *mnac.Game) (int, error) {
		i, ok := mnac.ParseIndex(text)
		if !ok {
			return 0, ErrUnknownDirection
		}
		return i, nil
	})
}

// PlayIndex applies a move given as a board index 0..8.
func (m *Manager) PlayIndex(ctx context.Context, ch, user string, i int) (PlayResult, error) {
	return m.move(ctx, ch, user, func(*mnac.Game) (int, error) {
		return i, nil
	})
}

// Random plays a uniformly chosen legal index for user.
func (m *Manager) Random(ctx context.Context, ch, user string) (PlayResult, error) {
	return m.move(ctx, ch, user, func(g *mnac.Game) (int, error) {
		opts := g.PlayableOptions()
		if len(opts) == 0 {
			return 0, ErrNoLegalMove
		}
		m.rngMu.Lock()
		defer m.rngMu.Unlock()
		return opts[m.rng.Intn(len(opts))], nil
	})
}

func (m *Manager) move(ctx context.Context, ch, user string, pick func(*mnac.Game) (int, error)) (PlayResult, error) {
	r := m.room(ch)
	r.mu.Lock()
	defer r.mu.Unlock()

	m.expire(ctx, r)

	mt := r.match
	if mt == nil {
		return PlayResult{}, ErrNoMatch
	}
	if user != mt.noughts && user != mt.crosses {
		return PlayResult{}, ErrNotPlayer
	}
	if m.info(r).Mover() != user {
		return PlayResult{}, ErrNotYourTurn
	}

	i, err := pick(mt.game)
	if err != nil {
		return PlayResult{}, err
	}
	eff, err := mt.game.Play(i)
	if err != nil {
		return PlayResult{}, err
	}

	info := m.info(r)
	r.broadcast(MovePlayedEvent{Match: info, User: user, Effect: eff})

	if eff.GameOver() {
		m.finish(ctx, r, ReasonCompleted)
		return PlayResult{Match: info, Effect: eff, Ended: true}, nil
	}

	m.saveMatch(ctx, r)
	return PlayResult{Match: info, Effect: eff}, nil
}

// Stop ends the match user plays in, or closes the lobby user hosts.
func (m *Manager) Stop(ctx context.Context, ch, user string) (StopResult, error) {
	r := m.room(ch)
	r.mu.Lock()
	defer r.mu.Unlock()

	m.expire(ctx, r)

	if r.lobby != nil && r.lobby.Host == user {
		l := *r.lobby
		r.lobby = nil
		r.broadcast(LobbyClosedEvent{Channel: ch, Host: user, Reason: ReasonStopped})
		return StopResult{Lobby: &l}, nil
	}

	if r.match == nil {
		return StopResult{}, ErrNoMatch
	}
	if user != r.match.noughts && user != r.match.crosses {
		return StopResult{}, ErrNotPlayer
	}

	info := m.finish(ctx, r, ReasonStopped)
	return StopResult{Match: &info}, nil
}

// finish must be called with r.mu held and a match present.
func (m *Manager) finish(ctx context.Context, r *room, reason EndReason) MatchInfo {
	info := m.info(r)
	mt := r.match
	r.match = nil

	rec := ResultRecord{
		MatchID:    mt.id,
		Channel:    r.name,
		Noughts:    mt.noughts,
		Crosses:    mt.crosses,
		Winner:     mt.game.Winner(),
		ForcedDraw: forcedDraw(mt.game),
		Reason:     reason,
		Moves:      mt.game.Moves(),
		StartedAt:  mt.startedAt,
		EndedAt:    m.now(),
	}

	if m.persister != nil {
		if err := m.persister.SaveResult(ctx, rec); err != nil {
			m.logger.Error("saving result failed", "channel", r.name, "match", mt.id, "err", err)
		}
	}
	m.deleteMatch(ctx, r.name)

	m.logger.Info("match ended", "channel", r.name, "match", mt.id, "reason", reason, "winner", rec.Winner)
	r.broadcast(MatchEndedEvent{Match: info, Reason: reason})
	return info
}

// forcedDraw reports a draw declared by the eight-decided rule rather than
// by a full meta-grid.
func forcedDraw(g *mnac.Game) bool {
	b := g.Board()
	return g.Winner() == mnac.Draw && !b.Overall().Decided()
}

// expire must be called with r.mu held.
func (m *Manager) expire(ctx context.Context, r *room) {
	now := m.now()

	if r.lobby != nil && m.cfg.LobbyTimeout > 0 && now.Sub(r.lobby.OpenedAt) > m.cfg.LobbyTimeout {
		host := r.lobby.Host
		r.lobby = nil
		m.logger.Info("lobby expired", "channel", r.name, "user", host)
		r.broadcast(LobbyClosedEvent{Channel: r.name, Host: host, Reason: ReasonExpired})
	}

	if r.match != nil && m.cfg.GameTimeout > 0 && now.Sub(r.match.startedAt) > m.cfg.GameTimeout {
		m.finish(ctx, r, ReasonExpired)
	}
}

// ExpireIdle sweeps every channel for expired lobbies and matches.
func (m *Manager) ExpireIdle(ctx context.Context) {
	m.mu.Lock()
	rooms := make([]*room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.Unlock()

	for _, r := range rooms {
		r.mu.Lock()
		m.expire(ctx, r)
		r.mu.Unlock()
	}
}

// SetLanguage records the language code of channel ch.
func (m *Manager) SetLanguage(ctx context.Context, ch, code string) {
	r := m.room(ch)
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lang = code
	if m.persister != nil {
		if err := m.persister.SaveLanguage(ctx, ch, code); err != nil {
			m.logger.Warn("saving language failed", "channel", ch, "err", err)
		}
	}
	r.broadcast(LanguageChangedEvent{Channel: ch, Code: code})
}

// Language returns the language code of channel ch, or "" if unset.
func (m *Manager) Language(ch string) string {
	r := m.room(ch)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lang
}

// Channels returns the names of channels holding a lobby or a match.
func (m *Manager) Channels() []string {
	m.mu.Lock()
	rooms := make([]*room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.Unlock()

	var out []string
	for _, r := range rooms {
		r.mu.Lock()
		if r.lobby != nil || r.match != nil {
			out = append(out, r.name)
		}
		r.mu.Unlock()
	}
	sort.Strings(out)
	return out
}

// info must be called with r.mu held and a match present.
func (m *Manager) info(r *room) MatchInfo {
	mt := r.match
	return MatchInfo{
		ID:        mt.id,
		Channel:   r.name,
		Noughts:   mt.noughts,
		Crosses:   mt.crosses,
		StartedAt: mt.startedAt,
		Game:      mt.game.Clone(),
	}
}

// saveMatch must be called with r.mu held and a match present.
func (m *Manager) saveMatch(ctx context.Context, r *room) {
	if m.persister == nil {
		return
	}
	mt := r.match
	rec := MatchRecord{
		ID:        mt.id,
		Channel:   r.name,
		Noughts:   mt.noughts,
		Crosses:   mt.crosses,
		StartedAt: mt.startedAt,
		UpdatedAt: m.now(),
		Game:      mt.game.Serialize(),
	}
	if err := m.persister.SaveMatch(ctx, rec); err != nil {
		m.logger.Error("saving match failed", "channel", r.name, "match", mt.id, "err", err)
	}
}

func (m *Manager) deleteMatch(ctx context.Context, ch string) {
	if m.persister == nil {
		return
	}
	if err := m.persister.DeleteMatch(ctx, ch); err != nil {
		m.logger.Error("deleting match failed", "channel", ch, "err", err)
	}
}
