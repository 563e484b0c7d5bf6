package render

import (
	"strings"
	"testing"

	"github.com/vovakirdan/mnac/internal/core"
	"github.com/vovakirdan/mnac/internal/games/mnac"
)

func play(t *testing.T, g *mnac.Game, moves ...int) {
	t.Helper()
	for _, i := range moves {
		if _, err := g.Play(i); err != nil {
			t.Fatalf("Play(%d) failed: %v", i, err)
		}
	}
}

func TestTextEmptyBoard(t *testing.T) {
	g := mnac.New(mnac.DefaultConfig(), nil)

	want := strings.Join([]string{
		" . . . │ . . . │ . . . ",
		" . . . │ . . . │ . . . ",
		" . . . │ . . . │ . . . ",
		"   7   │   8   │   9   ",
		"───────┼───────┼───────",
		" . . . │ . . . │ . . . ",
		" . . . │ . . . │ . . . ",
		" . . . │ . . . │ . . . ",
		"   4   │   5   │   6   ",
		"───────┼───────┼───────",
		" . . . │ . . . │ . . . ",
		" . . . │ . . . │ . . . ",
		" . . . │ . . . │ . . . ",
		"   1   │   2   │   3   ",
	}, "\n")

	if got := Text(NewView(g)); got != want {
		t.Errorf("Text() =\n%s\nwant\n%s", got, want)
	}
}

func TestTextMarksAndSelector(t *testing.T) {
	g := mnac.New(mnac.Config{StartGrid: 0}, nil)
	play(t, g, 4) // nought in the centre of grid 0, crosses to grid 4
	play(t, g, 8) // cross at (4,8), noughts to grid 8

	lines := strings.Split(Text(NewView(g)), "\n")

	if lines[1] != " . o . │ . . . │ . . . " {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[7] != " . . . │ . . X │ . . . " {
		t.Errorf("row 7 = %q, want the last cross upper-case", lines[7])
	}
	if lines[13] != "   1   │   2   │  [3]  " {
		t.Errorf("row 13 = %q, want grid 8 bracketed", lines[13])
	}
	if strings.Contains(lines[3], "[") {
		t.Errorf("row 3 = %q, grid 0 is no longer active", lines[3])
	}
}

func TestTextDecidedGlyph(t *testing.T) {
	rec := mnac.Record{Version: mnac.RecordVersion, Phase: mnac.PhaseInner, Player: mnac.Nought}
	active := 1
	rec.ActiveGrid = &active
	rec.Grids[0] = [9]mnac.Mark{mnac.Cross, mnac.Cross, mnac.Cross}
	g, err := mnac.Deserialize(rec)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	lines := strings.Split(Text(NewView(g)), "\n")
	for i, want := range []string{" X X ", "  X  ", " X X "} {
		if got := lines[i][1:6]; got != want {
			t.Errorf("glyph row %d = %q, want %q", i, got, want)
		}
	}
}

func TestGridRectsFitBoard(t *testing.T) {
	bounds := core.NewRect(0, 0, Width, Height)
	for g := range 9 {
		r := GridRect(g)
		if !r.Inside(bounds) {
			t.Errorf("GridRect(%d) = %+v outside the board", g, r)
		}
		for other := g + 1; other < 9; other++ {
			o := GridRect(other)
			if r.Contains(o.X, o.Y) {
				t.Errorf("GridRect(%d) overlaps GridRect(%d)", g, other)
			}
		}
	}
}

func TestDrawColors(t *testing.T) {
	g := mnac.New(mnac.Config{StartGrid: 0}, nil)
	play(t, g, 0) // teleporter: grid 0 stays active

	s := core.NewScreen(Width, Height)
	Draw(NewView(g), s)

	if c := s.GetCell(1, 0); c.Rune != 'O' || c.Color != core.ColorBrightYellow {
		t.Errorf("last nought cell = %+v", c)
	}
	if c := s.GetCell(2, 3); c.Rune != '[' || c.Color != core.ColorGreen {
		t.Errorf("selector bracket = %+v", c)
	}
	if c := s.GetCell(7, 0); c.Color != core.ColorGray {
		t.Errorf("rule colour = %v", c.Color)
	}
}

func TestColorFor(t *testing.T) {
	tests := []struct {
		r    rune
		want core.Color
	}{
		{'o', core.ColorYellow},
		{'O', core.ColorBrightYellow},
		{'x', core.ColorCyan},
		{'X', core.ColorBrightCyan},
		{'.', core.ColorGray},
		{'5', core.ColorWhite},
		{']', core.ColorGreen},
		{' ', core.ColorDefault},
	}
	for _, tc := range tests {
		if got := ColorFor(tc.r); got != tc.want {
			t.Errorf("ColorFor(%q) = %v, want %v", tc.r, got, tc.want)
		}
	}
}
