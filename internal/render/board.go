// Package render draws a Meta Noughts and Crosses position as text.
//
// The board is 23 columns by 14 rows: three bands of sub-grids separated by
// box rules. Each sub-grid shows its nine cells on three rows and a selector
// row with the keypad digit that picks it, bracketed while it is active.
package render

import (
	"strconv"

	"github.com/vovakirdan/mnac/internal/core"
	"github.com/vovakirdan/mnac/internal/games/mnac"
)

// Board dimensions in characters.
const (
	Width  = 23
	Height = 14
)

const (
	gridW    = 5 // cells at columns 0, 2 and 4
	gridH    = 4 // three cell rows and the selector row
	gridStep = gridW + 3
	bandStep = gridH + 1
)

// glyphs replace the cells of a decided sub-grid.
var glyphs = map[mnac.Status][3]string{
	mnac.NoughtsWin: {" OOO ", " O O ", " OOO "},
	mnac.CrossesWin: {" X X ", "  X  ", " X X "},
	mnac.Draw:       {" === ", "     ", " === "},
}

// View is the part of a game the renderer looks at. Every field is covered
// by the game fingerprint, so equal fingerprints draw equal boards.
type View struct {
	Board       mnac.Board
	Phase       mnac.Phase
	Active      int
	Last        mnac.Placement
	HasLast     bool
	Fingerprint mnac.Fingerprint
}

// NewView captures the drawable state of g.
func NewView(g *mnac.Game) View {
	last, ok := g.LastPlaced()
	return View{
		Board:       g.Board(),
		Phase:       g.Phase(),
		Active:      g.ActiveGrid(),
		Last:        last,
		HasLast:     ok,
		Fingerprint: g.Fingerprint(),
	}
}

// GridRect returns the screen area of sub-grid g, selector row included.
func GridRect(g int) core.Rect {
	return core.NewRect(1+(g%3)*gridStep, (g/3)*bandStep, gridW, gridH)
}

// Draw paints v onto s with its top-left corner at the origin.
func Draw(v View, s *core.Screen) {
	drawRules(s)
	for g := range 9 {
		drawGrid(v, g, s)
	}
}

// Text draws v on a fresh screen and returns its runes.
func Text(v View) string {
	s := core.NewScreen(Width, Height)
	Draw(v, s)
	return s.String()
}

func drawRules(s *core.Screen) {
	for _, x := range []int{gridStep - 1, 2*gridStep - 1} {
		s.DrawVLine(x, 0, Height, '│', ColorFor('│'))
	}
	for _, y := range []int{gridH, gridH + bandStep} {
		s.DrawHLine(0, y, Width, '─', ColorFor('─'))
		for _, x := range []int{gridStep - 1, 2*gridStep - 1} {
			s.SetColored(x, y, '┼', ColorFor('┼'))
		}
	}
}

func drawGrid(v View, g int, s *core.Screen) {
	r := GridRect(g)

	if glyph, ok := glyphs[v.Board.SubStatus(g)]; ok {
		for row, line := range glyph {
			put(s, r.X, r.Y+row, line)
		}
	} else {
		for c := range 9 {
			ch := cellRune(v.Board.Cell(g, c))
			if v.HasLast && v.Last == (mnac.Placement{Grid: g, Cell: c}) {
				ch -= 'a' - 'A'
			}
			s.SetColored(r.X+(c%3)*2, r.Y+c/3, ch, ColorFor(ch))
		}
	}

	label := " " + strconv.Itoa(mnac.ToKeypadDigit(g)) + " "
	if v.Phase != mnac.PhaseBegin && v.Active == g {
		label = "[" + label[1:2] + "]"
	}
	put(s, r.X+1, r.Bottom()-1, label)
}

func cellRune(m mnac.Mark) rune {
	switch m {
	case mnac.Nought:
		return 'o'
	case mnac.Cross:
		return 'x'
	default:
		return '.'
	}
}

func put(s *core.Screen, x, y int, text string) {
	i := 0
	for _, r := range text {
		s.SetColored(x+i, y, r, ColorFor(r))
		i++
	}
}

// ColorFor classifies a board rune for colouring. It works on cached text as
// well as on freshly drawn screens.
func ColorFor(r rune) core.Color {
	switch r {
	case 'o':
		return core.ColorYellow
	case 'O':
		return core.ColorBrightYellow
	case 'x':
		return core.ColorCyan
	case 'X':
		return core.ColorBrightCyan
	case '[', ']':
		return core.ColorGreen
	case '=':
		return core.ColorBrightWhite
	case '.', '│', '─', '┼':
		return core.ColorGray
	}
	if r >= '1' && r <= '9' {
		return core.ColorWhite
	}
	return core.ColorDefault
}
