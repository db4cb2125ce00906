package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	boxBorder = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	boxTick   = color.RGBA{R: 100, G: 200, B: 100, A: 255}
)

// Checkbox toggles a boolean; the label is part of the hit area.
type Checkbox struct {
	Label string
	Value bool
	X, Y  float64
	Size  float64

	click latch
}

func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{Label: label, Value: value, X: x, Y: y, Size: 16}
}

func (c *Checkbox) bounds() Rect {
	return Rect{X: c.X, Y: c.Y, W: c.Size + float64(len(c.Label)*6+8), H: c.Size}
}

func (c *Checkbox) Update() {
	if c.click.press(hovered(c.bounds()), leftDown()) {
		c.Value = !c.Value
	}
}

func (c *Checkbox) Height() float64 {
	return c.Size + 8
}

func (c *Checkbox) Draw(screen *ebiten.Image) {
	x, y, s := float32(c.X), float32(c.Y), float32(c.Size)
	vector.StrokeRect(screen, x, y, s, s, 2, boxBorder, true)
	if c.Value {
		// tick mark
		vector.StrokeLine(screen, x+3, y+s/2, x+s/2-1, y+s-4, 2, boxTick, true)
		vector.StrokeLine(screen, x+s/2-1, y+s-4, x+s-3, y+3, 2, boxTick, true)
	}
	ebitenutil.DebugPrintAt(screen, c.Label, int(c.X+c.Size+8), int(c.Y))
}
