package scene

import (
	"context"
	"image/color"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/flock"
	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/geometry"
	"github.com/tochemey/goakt/v3/log"
)

// Radius is the drawn size of a boid: its separation distance plus a 3px rim.
func Radius(b flock.BoidState) float64 {
	return b.DesiredSeparation + 3
}

// GroupColor returns the fill of every boid in group: a fully saturated hue picked
// from the group id, half transparent. The same id always gives the same colour.
func GroupColor(group string) color.NRGBA {
	hue := float64(xxhash.Sum64String(group) % 360)
	r, g, b := hslToRGB(hue, 1, 0.5)
	return color.NRGBA{R: r, G: g, B: b, A: 128}
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - c/2
	to8 := func(v float64) uint8 { return uint8(math.Round((v + m) * 255)) }
	return to8(r), to8(g), to8(b)
}

// HitTest returns the index of the boid drawn under p, or -1.
// Boids are drawn in frame order so the last one containing p is on top.
func HitTest(fr flock.Frame, p geometry.Vector2D) int {
	for i := len(fr.Boids) - 1; i >= 0; i-- {
		b := fr.Boids[i]
		r := Radius(b)
		if b.Position.DistanceSquaredTo(p) <= r*r {
			return i
		}
	}
	return -1
}

// Tooltip returns the lines describing b, one per row.
func Tooltip(b flock.BoidState) []string {
	if t, ok := b.Payload.(interface{ Tooltip() []string }); ok {
		return t.Tooltip()
	}
	return []string{b.ID}
}

// Gate is the side of the simulation a hover talks to.
type Gate interface {
	Pause(ctx context.Context, id string) (bool, error)
	Resume(ctx context.Context, id string) (bool, error)
}

// HoverTracker turns cursor moves into gate calls: the boid under the cursor is
// paused while hovered and resumed as soon as the cursor leaves it.
type HoverTracker struct {
	gate    Gate
	logger  log.Logger
	hovered string
}

func NewHoverTracker(gate Gate, logger log.Logger) *HoverTracker {
	return &HoverTracker{gate: gate, logger: logger}
}

// Update moves the hover to whatever lies under cursor in fr. Pass inside=false
// when the cursor left the window.
func (h *HoverTracker) Update(ctx context.Context, fr flock.Frame, cursor geometry.Vector2D, inside bool) error {
	next := ""
	if inside {
		if i := HitTest(fr, cursor); i >= 0 {
			next = fr.Boids[i].ID
		}
	}
	if next == h.hovered {
		return nil
	}

	prev := h.hovered
	h.hovered = next
	if prev != "" {
		if _, err := h.gate.Resume(ctx, prev); err != nil {
			return err
		}
		h.logger.Debugf("hover out %s", prev)
	}
	if next != "" {
		if _, err := h.gate.Pause(ctx, next); err != nil {
			return err
		}
		h.logger.Debugf("hover in %s", next)
	}
	return nil
}

// Hovered returns the id of the hovered boid, empty when none.
func (h *HoverTracker) Hovered() string {
	return h.hovered
}
