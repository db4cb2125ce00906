package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is anything the panel can stack.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Height() float64
}

// Panel stacks widgets vertically under section headers.
type Panel struct {
	X, Y  float64
	Width float64
	Title string

	widgets []Widget
	next    float64 // y of the next widget

	BGColor     color.RGBA
	BorderColor color.RGBA
	headers     []header
}

type header struct {
	title string
	y     float64
}

const sectionHeight = 25

func NewPanel(x, y, width float64, title string) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Title:       title,
		next:        y + 25,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 200},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new header; following widgets go below it.
func (p *Panel) AddSection(title string) {
	p.headers = append(p.headers, header{title: title, y: p.next})
	p.next += sectionHeight
}

func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+10, p.next+18, p.Width-20, label, min, max, value)
	p.add(s)
	return s
}

func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, p.next+4, label, value)
	p.add(c)
	return c
}

func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, p.next+4, p.Width-20, label, onClick)
	p.add(b)
	return b
}

func (p *Panel) add(w Widget) {
	p.widgets = append(p.widgets, w)
	p.next += w.Height() + 4
}

// Height is the full panel height.
func (p *Panel) Height() float64 {
	return p.next - p.Y + 6
}

// Contains reports whether the point lies on the panel, so clicks on it are not
// taken as clicks on the scene below.
func (p *Panel) Contains(x, y int) bool {
	return Rect{X: p.X, Y: p.Y, W: p.Width, H: p.Height()}.Contains(x, y)
}

func (p *Panel) Update() {
	for _, w := range p.widgets {
		w.Update()
	}
}

func (p *Panel) Draw(screen *ebiten.Image) {
	h := p.Height()
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(h),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(h),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	for _, hd := range p.headers {
		vector.FillRect(screen,
			float32(p.X+5), float32(hd.y),
			float32(p.Width-10), 20,
			color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
		ebitenutil.DebugPrintAt(screen, hd.title, int(p.X+10), int(hd.y+3))
	}
	for _, w := range p.widgets {
		w.Draw(screen)
	}
}
