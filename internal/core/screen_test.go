package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(23, 14)

	if s.Width() != 23 {
		t.Errorf("Width() = %d, expected 23", s.Width())
	}
	if s.Height() != 14 {
		t.Errorf("Height() = %d, expected 14", s.Height())
	}

	for y := range s.Height() {
		for x := range s.Width() {
			if c := s.GetCell(x, y); c != blank {
				t.Errorf("new screen should be blank, got %+v at (%d, %d)", c, x, y)
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.SetColored(5, 5, 'X', ColorCyan)
	if s.Get(5, 5) != 'X' {
		t.Errorf("Get(5, 5) = %q, expected 'X'", s.Get(5, 5))
	}
	if s.GetCell(5, 5).Color != ColorCyan {
		t.Errorf("GetCell(5, 5).Color = %v, expected ColorCyan", s.GetCell(5, 5).Color)
	}

	// Set keeps the colour
	s.Set(5, 5, 'x')
	if c := s.GetCell(5, 5); c.Rune != 'x' || c.Color != ColorCyan {
		t.Errorf("after Set, cell = %+v", c)
	}

	// Out of bounds is silent
	s.Set(-1, 0, 'A')
	s.Set(100, 0, 'A')
	s.SetColored(0, -1, 'A', ColorRed)
	s.SetColored(0, 100, 'A', ColorRed)

	if s.Get(-1, 0) != ' ' || s.Get(100, 0) != ' ' {
		t.Error("out of bounds Get should return space")
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(4, 4)
	s.DrawHLine(0, 1, 4, '#', ColorGray)
	s.Clear()

	if strings.TrimSpace(s.String()) != "" {
		t.Errorf("after Clear, screen = %q", s.String())
	}
	if s.GetCell(0, 1).Color != ColorDefault {
		t.Error("Clear should reset colours")
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawText(2, 1, "Hello")

	for i, ch := range "Hello" {
		if s.Get(2+i, 1) != ch {
			t.Errorf("DrawText: expected %q at (%d, 1), got %q", ch, 2+i, s.Get(2+i, 1))
		}
	}

	// Only "He" fits
	s.DrawText(18, 0, "Hello")
	if s.Get(18, 0) != 'H' || s.Get(19, 0) != 'e' {
		t.Error("text should be clipped at right boundary")
	}
}

func TestScreenDrawTextMultibyte(t *testing.T) {
	s := NewScreen(6, 1)
	s.DrawTextColored(0, 0, "─┼─x", ColorGray)

	if got := s.Row(0); got != "─┼─x  " {
		t.Errorf("Row(0) = %q", got)
	}
	if s.GetCell(3, 0).Color != ColorGray {
		t.Error("DrawTextColored should colour every rune")
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawTextCentered(2, "Hi")

	x := (20 - 2) / 2
	if s.Get(x, 2) != 'H' || s.Get(x+1, 2) != 'i' {
		t.Errorf("DrawTextCentered: row = %q", s.Row(2))
	}
}

func TestScreenLines(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawHLine(2, 2, 5, '─', ColorGray)
	s.DrawVLine(3, 0, 4, '│', ColorGray)

	for x := 2; x < 7; x++ {
		if x != 3 && s.Get(x, 2) != '─' {
			t.Errorf("DrawHLine: expected '─' at (%d, 2), got %q", x, s.Get(x, 2))
		}
	}
	for y := range 4 {
		if s.Get(3, y) != '│' {
			t.Errorf("DrawVLine: expected '│' at (3, %d), got %q", y, s.Get(3, y))
		}
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(5, 3)
	s.DrawText(0, 0, "AAAAA")
	s.DrawText(0, 1, "BBBBB")
	s.DrawText(0, 2, "CCCCC")

	expected := "AAAAA\nBBBBB\nCCCCC"
	if result := s.String(); result != expected {
		t.Errorf("String() = %q, expected %q", result, expected)
	}
}

func TestScreenRow(t *testing.T) {
	s := NewScreen(10, 5)
	s.DrawText(0, 2, "Test")

	row := s.Row(2)
	if !strings.HasPrefix(row, "Test") {
		t.Errorf("Row(2) should start with 'Test', got %q", row)
	}
	if len(row) != 10 {
		t.Errorf("Row length should be 10, got %d", len(row))
	}
	if s.Row(-1) != "          " {
		t.Errorf("out of bounds row should be spaces, got %q", s.Row(-1))
	}
}

func TestPaint(t *testing.T) {
	colorOf := func(r rune) Color {
		if r == 'o' {
			return ColorYellow
		}
		return ColorDefault
	}

	s := Paint("o.\n.o.", colorOf)
	if s.Width() != 3 || s.Height() != 2 {
		t.Fatalf("Paint size = %dx%d, expected 3x2", s.Width(), s.Height())
	}
	if s.String() != "o. \n.o." {
		t.Errorf("String() = %q", s.String())
	}
	if s.GetCell(0, 0).Color != ColorYellow || s.GetCell(1, 1).Color != ColorYellow {
		t.Error("Paint did not colour noughts")
	}
	if s.GetCell(1, 0).Color != ColorDefault {
		t.Error("Paint coloured a dot")
	}
}
