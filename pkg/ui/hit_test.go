package ui

import "testing"

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 30, H: 16}
	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"inside", 20, 25, true},
		{"top left corner", 10, 20, true},
		{"bottom right corner", 40, 36, true},
		{"left of", 9, 25, false},
		{"below", 20, 37, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%d, %d) = %v; want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestLatch_OneClickPerPress(t *testing.T) {
	frames := []struct {
		over, down bool
		want       bool
	}{
		{true, false, false},
		{true, true, true},   // press
		{true, true, false},  // still held
		{false, true, false}, // dragged out
		{true, true, true},   // back over counts as a new press
		{true, false, false}, // released
		{true, true, true},
	}
	var l latch
	for i, f := range frames {
		if got := l.press(f.over, f.down); got != f.want {
			t.Errorf("frame %d: press(%v, %v) = %v; want %v", i, f.over, f.down, got, f.want)
		}
	}
}
