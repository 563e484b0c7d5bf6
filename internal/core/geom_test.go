package core

import "testing"

func TestRectContains(t *testing.T) {
	r := NewRect(5, 5, 10, 10)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"inside", 10, 10, true},
		{"top-left corner", 5, 5, true},
		{"bottom-right corner", 14, 14, true},
		{"just outside right", 15, 10, false},
		{"just outside bottom", 10, 15, false},
		{"outside left", 4, 10, false},
		{"outside top", 10, 4, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if result := r.Contains(tc.x, tc.y); result != tc.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, result, tc.expected)
			}
		})
	}
}

func TestRectInside(t *testing.T) {
	outer := NewRect(0, 0, 23, 14)

	tests := []struct {
		name     string
		r        Rect
		expected bool
	}{
		{"same", outer, true},
		{"grid cell", NewRect(1, 0, 5, 4), true},
		{"overflow right", NewRect(20, 0, 5, 4), false},
		{"overflow bottom", NewRect(0, 12, 5, 4), false},
		{"negative", NewRect(-1, 0, 5, 4), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if result := tc.r.Inside(outer); result != tc.expected {
				t.Errorf("Inside() = %v, expected %v", result, tc.expected)
			}
		})
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(10, 20, 30, 40)

	if r.Right() != 40 {
		t.Errorf("Right() = %d, expected 40", r.Right())
	}
	if r.Bottom() != 60 {
		t.Errorf("Bottom() = %d, expected 60", r.Bottom())
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tc := range tests {
		if result := Clamp(tc.val, tc.lo, tc.hi); result != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.lo, tc.hi, result, tc.expected)
		}
	}
}
