package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button is a clickable UI button
type Button struct {
	Label   string
	X, Y    float64
	Width   float64
	H       float64
	OnClick func()
	click   latch

	BGColor    color.RGBA
	HoverColor color.RGBA
}

func NewButton(x, y, width float64, label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		X:          x,
		Y:          y,
		Width:      width,
		H:          20,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

func (b *Button) bounds() Rect {
	return Rect{X: b.X, Y: b.Y, W: b.Width, H: b.H}
}

// Update fires OnClick once per press.
func (b *Button) Update() {
	if b.click.press(hovered(b.bounds()), leftDown()) && b.OnClick != nil {
		b.OnClick()
	}
}

func (b *Button) Height() float64 {
	return b.H + 8
}

func (b *Button) Draw(screen *ebiten.Image) {
	bg := b.BGColor
	if hovered(b.bounds()) {
		bg = b.HoverColor
	}
	vector.FillRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.H),
		bg, true)
	vector.StrokeRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.H),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, b.Label, int(b.X+8), int(b.Y+3))
}
