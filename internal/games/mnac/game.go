package mnac

import (
	"errors"
	"fmt"
	"math/rand"
)

// Start grid selectors for Config.StartGrid. Values 0..8 fix the grid.
const (
	StartChoose = -1 // first player chooses the starting grid
	StartRandom = -2 // a random non-centre grid
)

// Config holds the construction options of a game.
type Config struct {
	// NoMiddleStart forbids choosing the centre grid as the starting grid.
	NoMiddleStart bool
	// StartGrid is StartChoose, StartRandom or a fixed grid 0..8.
	StartGrid int
}

// DefaultConfig returns the house rules: the opening player may not start
// in the centre and chooses the starting grid.
func DefaultConfig() Config {
	return Config{NoMiddleStart: true, StartGrid: StartChoose}
}

// Contract violations. These are caller bugs, not rejected moves.
var (
	ErrGameOver        = errors.New("mnac: game is already decided")
	ErrIndexOutOfRange = errors.New("mnac: index out of range 0..8")
)

// RejectReason explains why a move was refused.
type RejectReason uint8

const (
	RejectCenterStart RejectReason = iota + 1
	RejectCellTaken
	RejectOwnGrid
	RejectGridDecided
)

// String returns the reason key used by language tables.
func (r RejectReason) String() string {
	switch r {
	case RejectCenterStart:
		return "center_start"
	case RejectCellTaken:
		return "cell_taken"
	case RejectOwnGrid:
		return "own_grid"
	case RejectGridDecided:
		return "grid_decided"
	default:
		return "unknown"
	}
}

// MoveError is returned by Play for a legal-looking index that the rules
// refuse. The game is unchanged and the caller may retry.
type MoveError struct {
	Reason RejectReason
	Index  int
}

func (e *MoveError) Error() string {
	switch e.Reason {
	case RejectCenterStart:
		return "house rules: cannot start in the middle"
	case RejectCellTaken:
		return "that cell is already taken"
	case RejectOwnGrid:
		return "cannot send the opponent to your own grid"
	case RejectGridDecided:
		return "cannot send the opponent to a decided grid"
	default:
		return fmt.Sprintf("move %d rejected", e.Index)
	}
}

// MoveEffect describes what a successful Play changed.
type MoveEffect struct {
	Phase  Phase // phase the move was made in
	Player Mark  // player who acted
	Grid   int   // grid chosen, placed in, or sent to
	Cell   int   // placed cell, NoGrid when nothing was placed

	// GridDecided is the new status of Grid when the placement decided it.
	GridDecided Status
	// Teleport is set when the placement lets the same player pick the
	// next grid.
	Teleport bool
	// Winner is the overall status after the move.
	Winner Status
	// ForcedDraw is set when the game ended by the eight-decided rule.
	ForcedDraw bool
}

// Placed reports whether the move put a mark on the board.
func (e MoveEffect) Placed() bool {
	return e.Cell != NoGrid
}

// GameOver reports whether the move ended the game.
func (e MoveEffect) GameOver() bool {
	return e.Winner.Decided()
}

// Game is the state of one match.
type Game struct {
	board         Board
	player        Mark
	phase         Phase
	active        int
	last          Placement
	hasLast       bool
	moves         int
	noMiddleStart bool
	winner        Status
}

// New creates a fresh game. rng is only consulted for StartRandom; a nil rng
// falls back to the shared math/rand source.
func New(cfg Config, rng *rand.Rand) *Game {
	g := &Game{
		player:        Nought,
		phase:         PhaseBegin,
		active:        NoGrid,
		noMiddleStart: cfg.NoMiddleStart,
	}

	switch {
	case cfg.StartGrid == StartRandom:
		// uniform over the eight outer grids
		var n int
		if rng != nil {
			n = rng.Intn(8)
		} else {
			n = rand.Intn(8)
		}
		if n >= 4 {
			n++
		}
		g.active = n
		g.phase = PhaseInner
	case cfg.StartGrid >= 0 && cfg.StartGrid < 9:
		g.active = cfg.StartGrid
		g.phase = PhaseInner
	}

	return g
}

// Board returns a snapshot of the board.
func (g *Game) Board() Board {
	return g.board
}

// Player returns the mark of the player to act.
func (g *Game) Player() Mark {
	return g.player
}

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	return g.phase
}

// ActiveGrid returns the active sub-grid, or NoGrid in PhaseBegin.
func (g *Game) ActiveGrid() int {
	return g.active
}

// LastPlaced returns the most recent placement, if any.
func (g *Game) LastPlaced() (Placement, bool) {
	return g.last, g.hasLast
}

// Moves returns the number of successful Play calls.
func (g *Game) Moves() int {
	return g.moves
}

// NoMiddleStart reports whether the centre-start house rule is active.
func (g *Game) NoMiddleStart() bool {
	return g.noMiddleStart
}

// Winner returns the overall result; Undecided while the game runs.
func (g *Game) Winner() Status {
	return g.winner
}

// Over reports whether the game has a result.
func (g *Game) Over() bool {
	return g.winner.Decided()
}

// Clone returns an independent copy of the game.
func (g *Game) Clone() *Game {
	c := *g
	return &c
}

// PlayableOptions returns the indices Play would accept, ascending.
// A decided game has none.
func (g *Game) PlayableOptions() []int {
	if g.Over() {
		return nil
	}

	opts := make([]int, 0, 9)
	for i := range 9 {
		switch g.phase {
		case PhaseBegin:
			if g.noMiddleStart && i == 4 {
				continue
			}
		case PhaseInner:
			if g.board.grids[g.active][i] != Empty {
				continue
			}
		case PhaseOuter:
			if i == g.active || g.board.status[i].Decided() {
				continue
			}
		}
		opts = append(opts, i)
	}
	return opts
}

// Play applies index i (0..8) in the current phase.
//
// A *MoveError means the rules refused the index and nothing changed.
// ErrGameOver and ErrIndexOutOfRange report caller contract violations.
func (g *Game) Play(i int) (MoveEffect, error) {
	if g.Over() {
		return MoveEffect{}, ErrGameOver
	}
	if i < 0 || i > 8 {
		return MoveEffect{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}

	var (
		eff MoveEffect
		err error
	)
	switch g.phase {
	case PhaseBegin:
		eff, err = g.begin(i)
	case PhaseInner:
		eff, err = g.inner(i)
	case PhaseOuter:
		eff, err = g.outer(i)
	}
	if err != nil {
		return MoveEffect{}, err
	}

	g.moves++
	return eff, nil
}

func (g *Game) begin(i int) (MoveEffect, error) {
	if g.noMiddleStart && i == 4 {
		return MoveEffect{}, &MoveError{Reason: RejectCenterStart, Index: i}
	}

	g.active = i
	g.phase = PhaseInner
	return MoveEffect{Phase: PhaseBegin, Player: g.player, Grid: i, Cell: NoGrid}, nil
}

func (g *Game) inner(i int) (MoveEffect, error) {
	grid := g.active
	if g.board.grids[grid][i] != Empty {
		return MoveEffect{}, &MoveError{Reason: RejectCellTaken, Index: i}
	}

	eff := MoveEffect{Phase: PhaseInner, Player: g.player, Grid: grid, Cell: i}

	g.board.place(grid, i, g.player)
	g.last = Placement{Grid: grid, Cell: i}
	g.hasLast = true
	eff.GridDecided = g.board.status[grid]

	g.resolve()
	if g.winner.Decided() {
		eff.ForcedDraw = !g.board.overall.Decided()
		eff.Winner = g.winner
		return eff, nil
	}

	if i == grid || g.board.status[i].Decided() {
		g.phase = PhaseOuter
		eff.Teleport = true
		return eff, nil
	}

	g.active = i
	g.player = g.player.Opponent()
	return eff, nil
}

func (g *Game) outer(i int) (MoveEffect, error) {
	if i == g.active {
		return MoveEffect{}, &MoveError{Reason: RejectOwnGrid, Index: i}
	}
	if g.board.status[i].Decided() {
		return MoveEffect{}, &MoveError{Reason: RejectGridDecided, Index: i}
	}

	eff := MoveEffect{Phase: PhaseOuter, Player: g.player, Grid: i, Cell: NoGrid}
	g.active = i
	g.player = g.player.Opponent()
	g.phase = PhaseInner
	return eff, nil
}

// resolve derives the winner from the board, applying the eight-decided draw.
func (g *Game) resolve() {
	g.winner = g.board.overall
	if !g.winner.Decided() && g.board.DecidedCount() == 8 {
		g.winner = Draw
	}
}
