// Package mnac implements Meta Noughts and Crosses: a 3x3 arrangement of
// tic-tac-toe sub-grids played with the teleporter rule.
//
// The package is a pure state machine. It performs no I/O, holds no global
// state and does no locking; the owner of a Game serialises access to it.
package mnac

import "fmt"

// Mark is the content of a single cell.
type Mark uint8

const (
	Empty Mark = iota
	Nought
	Cross
)

// String returns a human-readable name for the mark.
func (m Mark) String() string {
	switch m {
	case Empty:
		return "Empty"
	case Nought:
		return "Noughts"
	case Cross:
		return "Crosses"
	default:
		return "Unknown"
	}
}

// Opponent returns the other player's mark. Empty has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case Nought:
		return Cross
	case Cross:
		return Nought
	default:
		return Empty
	}
}

// Status is the outcome of a sub-grid or of the whole board.
// The values shared with Mark are numerically identical so that a single
// evaluator can score both levels.
type Status uint8

const (
	Undecided  Status = Status(Empty)
	NoughtsWin Status = Status(Nought)
	CrossesWin Status = Status(Cross)
	Draw       Status = 3
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case Undecided:
		return "Undecided"
	case NoughtsWin:
		return "Noughts"
	case CrossesWin:
		return "Crosses"
	case Draw:
		return "Draw"
	default:
		return "Unknown"
	}
}

// Decided reports whether the status is final.
func (s Status) Decided() bool {
	return s != Undecided
}

// Winner returns the mark that won, or Empty for Undecided and Draw.
func (s Status) Winner() Mark {
	switch s {
	case NoughtsWin:
		return Nought
	case CrossesWin:
		return Cross
	default:
		return Empty
	}
}

// Phase is the kind of index the engine expects next.
type Phase uint8

const (
	// PhaseBegin waits for the starting sub-grid to be chosen.
	PhaseBegin Phase = iota
	// PhaseInner waits for a cell in the active sub-grid.
	PhaseInner
	// PhaseOuter waits for the destination sub-grid after a teleporter cell.
	PhaseOuter
)

// String returns the phase name used in records and language tables.
func (p Phase) String() string {
	switch p {
	case PhaseBegin:
		return "begin"
	case PhaseInner:
		return "inner"
	case PhaseOuter:
		return "outer"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	switch p {
	case PhaseBegin, PhaseInner, PhaseOuter:
		return []byte(p.String()), nil
	}
	return nil, fmt.Errorf("mnac: invalid phase %d", p)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "begin":
		*p = PhaseBegin
	case "inner":
		*p = PhaseInner
	case "outer":
		*p = PhaseOuter
	default:
		return fmt.Errorf("mnac: unknown phase %q", text)
	}
	return nil
}

// Placement addresses one cell of the board.
type Placement struct {
	Grid int `json:"grid" yaml:"grid"`
	Cell int `json:"cell" yaml:"cell"`
}

// NoGrid marks the absence of an active grid or a placed cell.
const NoGrid = -1
