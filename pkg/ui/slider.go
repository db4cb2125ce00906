package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a simple UI widget
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64

	changed bool
}

func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	s := &Slider{Label: label, Min: min, Max: max, X: x, Y: y, W: w, H: 14}
	s.Set(value)
	s.changed = false
	return s
}

// Set moves the slider to v, clamped to [Min, Max].
func (s *Slider) Set(v float64) {
	v = max(s.Min, min(s.Max, v))
	if v != s.Value {
		s.Value = v
		s.changed = true
	}
}

// Changed reports whether the value moved since the last call.
func (s *Slider) Changed() bool {
	c := s.changed
	s.changed = false
	return c
}

// Update drags the value while the button is held over the bar.
func (s *Slider) Update() {
	mx, my := ebiten.CursorPosition()
	if leftDown() && (Rect{X: s.X, Y: s.Y, W: s.W, H: s.H}).Contains(mx, my) {
		s.Set(s.Min + (float64(mx)-s.X)/s.W*(s.Max-s.Min))
	}
}

func (s *Slider) Height() float64 {
	return s.H + 20 // label above the bar
}

// Draw renders the slider
func (s *Slider) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: %.2f", s.Label, s.Value), int(s.X), int(s.Y-16))

	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := (s.Value - s.Min) / (s.Max - s.Min)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}
