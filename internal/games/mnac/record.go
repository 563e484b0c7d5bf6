package mnac

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// RecordVersion is the current layout of Record.
const RecordVersion = 1

// ErrInvalidRecord is wrapped by every Deserialize failure.
var ErrInvalidRecord = errors.New("mnac: invalid record")

// Record is the structural snapshot of a game. Derived statuses are not
// stored; Deserialize recomputes them from Grids.
type Record struct {
	Version       int        `json:"version" yaml:"version"`
	Phase         Phase      `json:"phase" yaml:"phase"`
	Player        Mark       `json:"player" yaml:"player"`
	ActiveGrid    *int       `json:"active_grid,omitempty" yaml:"active_grid,omitempty"`
	LastPlaced    *Placement `json:"last_placed,omitempty" yaml:"last_placed,omitempty"`
	NoMiddleStart bool       `json:"no_middle_start" yaml:"no_middle_start"`
	Moves         int        `json:"moves" yaml:"moves"`
	Grids         [9][9]Mark `json:"grids" yaml:"grids"`
}

// Serialize captures the raw fields of the game.
func (g *Game) Serialize() Record {
	rec := Record{
		Version:       RecordVersion,
		Phase:         g.phase,
		Player:        g.player,
		NoMiddleStart: g.noMiddleStart,
		Moves:         g.moves,
	}
	if g.active != NoGrid {
		active := g.active
		rec.ActiveGrid = &active
	}
	if g.hasLast {
		last := g.last
		rec.LastPlaced = &last
	}
	for i, grid := range g.board.grids {
		rec.Grids[i] = grid
	}
	return rec
}

// Deserialize rebuilds a game from a record, recomputing every derived field.
func Deserialize(rec Record) (*Game, error) {
	if rec.Version != RecordVersion {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidRecord, rec.Version)
	}
	if rec.Player != Nought && rec.Player != Cross {
		return nil, fmt.Errorf("%w: player %d", ErrInvalidRecord, rec.Player)
	}

	g := &Game{
		player:        rec.Player,
		phase:         rec.Phase,
		active:        NoGrid,
		moves:         rec.Moves,
		noMiddleStart: rec.NoMiddleStart,
	}

	switch rec.Phase {
	case PhaseBegin:
		if rec.ActiveGrid != nil {
			return nil, fmt.Errorf("%w: active grid set in begin phase", ErrInvalidRecord)
		}
	case PhaseInner, PhaseOuter:
		if rec.ActiveGrid == nil || !inRange(*rec.ActiveGrid) {
			return nil, fmt.Errorf("%w: phase %s needs an active grid", ErrInvalidRecord, rec.Phase)
		}
		g.active = *rec.ActiveGrid
	default:
		return nil, fmt.Errorf("%w: phase %d", ErrInvalidRecord, rec.Phase)
	}

	if rec.LastPlaced != nil {
		if !inRange(rec.LastPlaced.Grid) || !inRange(rec.LastPlaced.Cell) {
			return nil, fmt.Errorf("%w: last placed %+v", ErrInvalidRecord, *rec.LastPlaced)
		}
		g.last = *rec.LastPlaced
		g.hasLast = true
	}

	for i, cells := range rec.Grids {
		for j, m := range cells {
			if m > Cross {
				return nil, fmt.Errorf("%w: cell (%d,%d) = %d", ErrInvalidRecord, i, j, m)
			}
		}
		g.board.grids[i] = cells
	}

	g.board.recompute()
	g.resolve()
	if g.phase == PhaseInner && !g.Over() && g.board.status[g.active].Decided() {
		return nil, fmt.Errorf("%w: active grid %d is decided", ErrInvalidRecord, g.active)
	}
	return g, nil
}

func inRange(i int) bool {
	return i >= 0 && i < 9
}

// Canonical returns the canonical text form of everything a board view
// depends on: active grid, last placement, player, phase and the 81 cells.
func (g *Game) Canonical() string {
	var sb strings.Builder
	sb.Grow(100)

	sb.WriteString("a")
	sb.WriteString(strconv.Itoa(g.active))
	sb.WriteString(";l")
	if g.hasLast {
		sb.WriteString(strconv.Itoa(g.last.Grid))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(g.last.Cell))
	} else {
		sb.WriteByte('-')
	}
	sb.WriteString(";p")
	sb.WriteString(strconv.Itoa(int(g.player)))
	sb.WriteString(";s")
	sb.WriteString(g.phase.String())
	sb.WriteString(";c")
	for _, grid := range g.board.grids {
		for _, m := range grid {
			sb.WriteByte('0' + byte(m))
		}
	}
	return sb.String()
}

// Fingerprint identifies a board view. Equal fingerprints render equally.
type Fingerprint uint64

// String formats the fingerprint as 16 hex digits.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// ParseFingerprint reads the String form back.
func ParseFingerprint(s string) (Fingerprint, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("mnac: bad fingerprint %q: %w", s, err)
	}
	return Fingerprint(v), nil
}

// Fingerprint hashes the canonical form. The value is stable across runs.
func (g *Game) Fingerprint() Fingerprint {
	return Fingerprint(xxhash.Sum64String(g.Canonical()))
}
