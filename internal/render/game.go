package render

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-instance-flock/internal/scene"
	"github.com/lao-tseu-is-alive/go-instance-flock/internal/simulation"
	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/flock"
	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/ui"
	"github.com/tochemey/goakt/v3/log"
)

var (
	background   = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	pausedRim    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	separationOn = color.RGBA{R: 200, G: 200, B: 200, A: 90}
	tooltipBG    = color.RGBA{R: 20, G: 20, B: 20, A: 220}
)

// Game is the desktop viewer: it drives the engine from ebiten's update loop and
// draws the latest frame.
type Game struct {
	ctx       context.Context
	engine    *simulation.Engine
	cfg       *simulation.Config
	lastFrame flock.Frame
	hover     *scene.HoverTracker
	logger    log.Logger

	// UI Controls
	panel                *ui.Panel
	widgetNeighborRadius *ui.Slider
	widgetSeparation     *ui.Slider
	widgetAlignment      *ui.Slider
	widgetCohesion       *ui.Slider
	widgetShowSeparation *ui.Checkbox
	widgetFreeze         *ui.Checkbox

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64
}

func NewGame(ctx context.Context, engine *simulation.Engine, cfg *simulation.Config, logger log.Logger) *Game {
	g := &Game{
		ctx:       ctx,
		engine:    engine,
		cfg:       cfg,
		lastFrame: engine.Snapshot(),
		hover:     scene.NewHoverTracker(engine, logger),
		logger:    logger,
	}

	p := engine.Params()
	panel := ui.NewPanel(cfg.CanvasWidth-230, 10, 220, "Flock")
	panel.AddSection("Steering")
	g.widgetNeighborRadius = panel.AddSlider("Neighbor radius", 0, 200, p.NeighborRadius)
	g.widgetSeparation = panel.AddSlider("Separation", 0, 5, p.SeparationWeight)
	g.widgetAlignment = panel.AddSlider("Alignment", 0, 5, p.AlignmentWeight)
	g.widgetCohesion = panel.AddSlider("Cohesion", 0, 5, p.CohesionWeight)
	panel.AddButton("Reset", g.resetParams)
	panel.AddSection("Display")
	g.widgetShowSeparation = panel.AddCheckbox("Separation radii", cfg.ShowSeparation)
	g.widgetFreeze = panel.AddCheckbox("Freeze", false)
	g.panel = panel

	return g
}

func (g *Game) resetParams() {
	d := flock.DefaultParams()
	g.widgetNeighborRadius.Set(d.NeighborRadius)
	g.widgetSeparation.Set(d.SeparationWeight)
	g.widgetAlignment.Set(d.AlignmentWeight)
	g.widgetCohesion.Set(d.CohesionWeight)
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()

	// Keep only the most recent frame
drain:
	for {
		select {
		case fr := <-g.engine.Frames():
			g.lastFrame = fr
		default:
			break drain
		}
	}

	g.syncParams()
	g.updateHover()

	if !g.widgetFreeze.Value {
		if err := g.engine.Tick(g.ctx); err != nil {
			return err
		}
	}
	return nil
}

// syncParams sends the slider values to the flock when any of them moved.
func (g *Game) syncParams() {
	changed := false
	for _, s := range []*ui.Slider{g.widgetNeighborRadius, g.widgetSeparation, g.widgetAlignment, g.widgetCohesion} {
		if s.Changed() {
			changed = true
		}
	}
	if !changed {
		return
	}
	p := g.engine.Params()
	p.NeighborRadius = g.widgetNeighborRadius.Value
	p.SeparationWeight = g.widgetSeparation.Value
	p.AlignmentWeight = g.widgetAlignment.Value
	p.CohesionWeight = g.widgetCohesion.Value
	if err := g.engine.UpdateParams(g.ctx, p); err != nil {
		g.logger.Warnf("params rejected: %v", err)
	}
}

func (g *Game) updateHover() {
	mx, my := ebiten.CursorPosition()
	inside := mx >= 0 && my >= 0 &&
		float64(mx) < g.cfg.CanvasWidth && float64(my) < g.cfg.CanvasHeight &&
		!g.panel.Contains(mx, my)
	cursor := geometry.NewVector(float64(mx), float64(my))
	if err := g.hover.Update(g.ctx, g.lastFrame, cursor, inside); err != nil {
		g.logger.Warnf("hover: %v", err)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)

	var hovered *flock.BoidState
	for i := range g.lastFrame.Boids {
		b := &g.lastFrame.Boids[i]
		x, y := float32(b.Position.X), float32(b.Position.Y)
		vector.FillCircle(screen, x, y, float32(scene.Radius(*b)), scene.GroupColor(b.Group), true)
		if g.widgetShowSeparation.Value {
			vector.StrokeCircle(screen, x, y, float32(b.DesiredSeparation), 1, separationOn, true)
		}
		if b.Paused {
			vector.StrokeCircle(screen, x, y, float32(scene.Radius(*b)), 2, pausedRim, true)
		}
		if b.ID == g.hover.Hovered() {
			hovered = b
		}
	}
	if hovered != nil {
		drawTooltip(screen, *hovered)
	}

	g.panel.Draw(screen)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nFrame: %d\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.lastFrame.Seq,
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, 10, 10)
}

// drawTooltip prints the instance details above the boid.
func drawTooltip(screen *ebiten.Image, b flock.BoidState) {
	lines := scene.Tooltip(b)
	w := 0
	for _, l := range lines {
		w = max(w, len(l))
	}
	boxW := float32(w*6 + 12)
	boxH := float32(len(lines)*16 + 8)
	x := float32(b.Position.X) - boxW/2
	y := float32(b.Position.Y-scene.Radius(b)) - boxH - 6
	if y < 0 {
		y = float32(b.Position.Y+scene.Radius(b)) + 6
	}
	x = max(0, x)

	vector.FillRect(screen, x, y, boxW, boxH, tooltipBG, true)
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, int(x)+6, int(y)+4+i*16)
	}
}

func (g *Game) Layout(w, h int) (int, int) { return int(g.cfg.CanvasWidth), int(g.cfg.CanvasHeight) }
