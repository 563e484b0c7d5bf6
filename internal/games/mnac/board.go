package mnac

// lines are the eight winning lines of a 3x3 grid, row-major indices.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// evaluate scores nine positions. It is the only win rule in the package and
// is applied to a sub-grid's cells and to the board's sub-grid statuses alike.
func evaluate[T Mark | Status](cells [9]T) Status {
	for _, l := range lines {
		a := cells[l[0]]
		if a != 0 && a == cells[l[1]] && a == cells[l[2]] {
			return Status(a)
		}
	}
	for _, c := range cells {
		if c == 0 {
			return Undecided
		}
	}
	return Draw
}

// Evaluate scores nine statuses: a line of three equal decided values wins,
// otherwise a full set is a Draw, otherwise the result is Undecided.
// Three Draws in a line score as Draw.
func Evaluate(statuses [9]Status) Status {
	return evaluate(statuses)
}

// SubGrid holds the nine cells of one small board, row-major.
type SubGrid [9]Mark

// Status scores the sub-grid.
func (g SubGrid) Status() Status {
	return evaluate([9]Mark(g))
}

// EmptyCells returns the indices of unoccupied cells in ascending order.
func (g SubGrid) EmptyCells() []int {
	var out []int
	for i, c := range g {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

// Board is the full 9x9 position with its derived statuses.
// The zero value is an empty board.
type Board struct {
	grids   [9]SubGrid
	status  [9]Status
	overall Status
}

// Grid returns a copy of sub-grid g.
func (b *Board) Grid(g int) SubGrid {
	return b.grids[g]
}

// Grids returns a copy of all cells.
func (b *Board) Grids() [9]SubGrid {
	return b.grids
}

// Cell returns the mark at (g, c).
func (b *Board) Cell(g, c int) Mark {
	return b.grids[g][c]
}

// SubStatus returns the derived status of sub-grid g.
func (b *Board) SubStatus(g int) Status {
	return b.status[g]
}

// Statuses returns the derived statuses of all sub-grids.
func (b *Board) Statuses() [9]Status {
	return b.status
}

// Overall returns the status of the meta-grid.
func (b *Board) Overall() Status {
	return b.overall
}

// DecidedCount returns how many sub-grids are no longer undecided.
func (b *Board) DecidedCount() int {
	n := 0
	for _, s := range b.status {
		if s.Decided() {
			n++
		}
	}
	return n
}

// place writes a mark and recomputes the derived fields that depend on it.
func (b *Board) place(g, c int, m Mark) {
	b.grids[g][c] = m
	b.status[g] = b.grids[g].Status()
	b.overall = evaluate(b.status)
}

// recompute derives every status from the cells.
func (b *Board) recompute() {
	for g := range b.grids {
		b.status[g] = b.grids[g].Status()
	}
	b.overall = evaluate(b.status)
}
