// Package selfplay plays many random games in parallel to tally outcomes
// and check engine invariants at scale.
package selfplay

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/mnac/internal/games/mnac"
)

// Options configures a run.
type Options struct {
	Games   int   // number of games, at least 1
	Workers int   // parallel workers; 0 means GOMAXPROCS
	Seed    int64 // game i uses Seed+i, so tallies do not depend on scheduling; 0 means time-based
	Rules   mnac.Config

	// Verify round-trips every position through Serialize/Deserialize and
	// checks the fingerprint. Slow.
	Verify bool

	// Progress, if set, is called after every finished game with the number
	// of games done so far. It is called from worker goroutines.
	Progress func(done int64)
}

// Report holds the tallies of a run.
type Report struct {
	Seed        int64 // seed the run used, for replaying it
	Games       int64
	NoughtsWins int64
	CrossesWins int64
	Draws       int64
	ForcedDraws int64
	Teleports   int64
	Moves       int64
	MinMoves    int64
	MaxMoves    int64
	Elapsed     time.Duration
}

// AvgMoves returns the mean game length.
func (r Report) AvgMoves() float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.Moves) / float64(r.Games)
}

// GamesPerSecond returns the throughput of the run.
func (r Report) GamesPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Games) / r.Elapsed.Seconds()
}

// ErrNoGames is returned for a run of zero games.
var ErrNoGames = errors.New("selfplay: no games requested")

type tally struct {
	games, noughts, crosses, draws, forced, teleports, moves atomic.Int64
	minMoves, maxMoves                                        atomic.Int64
}

// Run plays opts.Games random games and returns the tallies. It stops early
// when ctx is cancelled or a game breaks an invariant.
func Run(ctx context.Context, opts Options) (Report, error) {
	if opts.Games < 1 {
		return Report{}, ErrNoGames
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, opts.Games)
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	start := time.Now()
	var (
		t    tally
		next atomic.Int64
	)
	t.minMoves.Store(-1)

	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				i := next.Inc() - 1
				if i >= int64(opts.Games) {
					return nil
				}
				if err := playOne(opts, opts.Seed+i, &t); err != nil {
					return fmt.Errorf("game %d: %w", i, err)
				}
				done := t.games.Inc()
				if opts.Progress != nil {
					opts.Progress(done)
				}
			}
		})
	}
	err := g.Wait()

	rep := Report{
		Seed:        opts.Seed,
		Games:       t.games.Load(),
		NoughtsWins: t.noughts.Load(),
		CrossesWins: t.crosses.Load(),
		Draws:       t.draws.Load(),
		ForcedDraws: t.forced.Load(),
		Teleports:   t.teleports.Load(),
		Moves:       t.moves.Load(),
		MinMoves:    max(t.minMoves.Load(), 0),
		MaxMoves:    t.maxMoves.Load(),
		Elapsed:     time.Since(start),
	}
	return rep, err
}

// playOne plays a single game to the end.
func playOne(opts Options, seed int64, t *tally) error {
	rng := rand.New(rand.NewSource(seed))
	g := mnac.New(opts.Rules, rng)

	var teleports int64
	_, err := mnac.RandomPlayoutFunc(g, rng, 0, func(eff mnac.MoveEffect) error {
		if eff.Teleport {
			teleports++
		}
		if opts.Verify {
			return verify(g)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !g.Over() {
		return fmt.Errorf("playout stopped undecided at move %d", g.Moves())
	}

	switch g.Winner() {
	case mnac.NoughtsWin:
		t.noughts.Inc()
	case mnac.CrossesWin:
		t.crosses.Inc()
	case mnac.Draw:
		t.draws.Inc()
		b := g.Board()
		if !b.Overall().Decided() {
			t.forced.Inc()
		}
	}

	moves := int64(g.Moves())
	t.teleports.Add(teleports)
	t.moves.Add(moves)
	for {
		cur := t.maxMoves.Load()
		if moves <= cur || t.maxMoves.CompareAndSwap(cur, moves) {
			break
		}
	}
	for {
		cur := t.minMoves.Load()
		if (cur >= 0 && moves >= cur) || t.minMoves.CompareAndSwap(cur, moves) {
			break
		}
	}
	return nil
}

// verify checks that a position survives serialization unchanged.
func verify(g *mnac.Game) error {
	back, err := mnac.Deserialize(g.Serialize())
	if err != nil {
		return fmt.Errorf("serialized position rejected: %w", err)
	}
	if back.Fingerprint() != g.Fingerprint() {
		return fmt.Errorf("fingerprint changed through serialization at move %d", g.Moves())
	}
	if back.Winner() != g.Winner() {
		return fmt.Errorf("winner changed through serialization at move %d", g.Moves())
	}
	return nil
}
