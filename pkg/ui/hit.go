package ui

import "github.com/hajimehoshi/ebiten/v2"

// Rect is a screen area in pixels.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y int) bool {
	return float64(x) >= r.X && float64(x) <= r.X+r.W &&
		float64(y) >= r.Y && float64(y) <= r.Y+r.H
}

// hovered reports whether the mouse cursor is over r.
func hovered(r Rect) bool {
	return r.Contains(ebiten.CursorPosition())
}

// latch turns a held mouse button into a single click.
type latch struct {
	held bool
}

// press returns true only on the first frame the button is down over the widget.
func (l *latch) press(over, down bool) bool {
	if !over || !down {
		l.held = false
		return false
	}
	if l.held {
		return false
	}
	l.held = true
	return true
}

func leftDown() bool {
	return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}
