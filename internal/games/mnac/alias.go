package mnac

import (
	"strconv"
	"strings"
)

// directions lists the accepted words for each position, row-major.
// The first entry is the abbreviation and the second the long name.
var directions = [9][]string{
	{"nw", "northwest", "tl", "topleft"},
	{"n", "north", "t", "top"},
	{"ne", "northeast", "tr", "topright"},
	{"w", "west", "l", "left"},
	{"c", "centre", "center", "m", "middle"},
	{"e", "east", "r", "right"},
	{"sw", "southwest", "bl", "bottomleft"},
	{"s", "south", "b", "bottom"},
	{"se", "southeast", "br", "bottomright"},
}

var aliasIndex = func() map[string]int {
	m := make(map[string]int)
	for i, words := range directions {
		for _, w := range words {
			m[w] = i
		}
	}
	return m
}()

// normalizeAlias trims, lower-cases and removes hyphens and spaces.
func normalizeAlias(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return strings.NewReplacer("-", "", " ", "").Replace(text)
}

// ParseIndex resolves a compass word or a keypad digit to a board index.
//
// Digits follow keypad geometry: 7 8 9 are the top row and 1 2 3 the bottom.
func ParseIndex(text string) (int, bool) {
	text = normalizeAlias(text)
	if i, ok := aliasIndex[text]; ok {
		return i, true
	}

	d, err := strconv.Atoi(text)
	if err != nil || d < 1 || d > 9 {
		return 0, false
	}
	return FromKeypadDigit(d), true
}

// FromKeypadDigit maps a keypad digit 1..9 to a row-major index.
func FromKeypadDigit(d int) int {
	row := 2 - (d-1)/3
	col := (d - 1) % 3
	return row*3 + col
}

// ToKeypadDigit maps a row-major index to its keypad digit.
func ToKeypadDigit(i int) int {
	return (2-i/3)*3 + i%3 + 1
}

// DirectionName returns the long compass name of a position ("northwest",
// "centre", ...).
func DirectionName(i int) string {
	if i < 0 || i > 8 {
		return ""
	}
	return directions[i][1]
}
