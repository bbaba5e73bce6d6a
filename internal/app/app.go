//go:build ebiten

package app

import (
	"fmt"
	"time"

	"mycelium/internal/core"
	"mycelium/internal/render"
	"mycelium/internal/sims/fungus"
	"mycelium/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const paintStep = 5

// Game adapts a fungus world to the ebiten.Game interface. Frames run at the
// window TPS; simulation ticks follow the world's configured interval.
type Game struct {
	world   *fungus.World
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay
	ticker  *core.FixedStep

	scale    int
	hudWidth int
	seed     int64

	paintField fungus.Field
	paintValue float64
	message    string
}

// New constructs a Game for the provided world.
func New(world *fungus.World, scale, hudWidth int, seed int64) *Game {
	size := world.Size()
	interval := world.Config().TickInterval()
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Game{
		world:      world,
		painter:    render.NewGridPainter(size.W, size.H),
		hud:        ui.NewHUD(world, hudWidth),
		overlay:    ui.NewOverlay(world, scale),
		ticker:     core.NewFixedInterval(interval),
		scale:      scale,
		hudWidth:   hudWidth,
		seed:       seed,
		paintField: fungus.FieldTemperature,
		paintValue: world.Config().Environment.Temperature,
	}
}

// Reset reinitializes the world with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.world.Reset(seed)
	g.message = ""
}

// Update handles per-frame input and advances the world on its tick cadence.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.toggleRunning()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		g.report(g.world.RandomizeEnvironment())
	}
	g.handleDisplayKeys()
	g.handlePaintKeys()
	g.handleSpeedKeys()
	g.handleMouse()

	g.overlay.Update()
	g.hud.Update(g.gridWidth(), g.statusLines())

	if g.world.Running() && g.ticker.ShouldStep() {
		g.world.Step()
		if err := g.world.Err(); err != nil {
			g.message = err.Error()
		}
	}
	return nil
}

func (g *Game) toggleRunning() {
	if g.world.Running() {
		g.world.Stop()
		g.message = "stopped"
		return
	}
	if err := g.world.Start(); err != nil {
		g.message = err.Error()
		return
	}
	g.message = ""
}

func (g *Game) handleDisplayKeys() {
	modes := map[ebiten.Key]fungus.DisplayMode{
		ebiten.KeyD: fungus.DisplayDensity,
		ebiten.KeyT: fungus.DisplayTemperature,
		ebiten.KeyH: fungus.DisplayHumidity,
		ebiten.KeyN: fungus.DisplayNutrient,
	}
	for key, mode := range modes {
		if inpututil.IsKeyJustPressed(key) {
			g.world.SetDisplayMode(mode)
		}
	}
}

func (g *Game) handlePaintKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.paintField = (g.paintField + 1) % 3
		g.paintValue = min(g.paintValue, g.paintField.Max())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		g.paintValue = max(g.paintValue-paintStep, 0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		g.paintValue = min(g.paintValue+paintStep, g.paintField.Max())
	}
}

func (g *Game) handleSpeedKeys() {
	interval := g.ticker.Interval()
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.ticker.SetInterval(max(interval/2, time.Second/60))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		g.ticker.SetInterval(min(interval*2, 10*time.Second))
	}
}

func (g *Game) handleMouse() {
	row, col, ok := g.cellUnderCursor()
	if !ok {
		return
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if err := g.world.SelectSeed(row, col); err != nil {
			g.message = err.Error()
		} else {
			g.message = fmt.Sprintf("seed at (%d,%d)", row, col)
		}
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		g.report(g.world.Paint(row, col, g.paintField, g.paintValue))
	}
}

func (g *Game) cellUnderCursor() (row, col int, ok bool) {
	mx, my := ebiten.CursorPosition()
	size := g.world.Size()
	if mx < 0 || my < 0 || g.scale <= 0 {
		return 0, 0, false
	}
	row, col = my/g.scale, mx/g.scale
	if row >= size.H || col >= size.W {
		return 0, 0, false
	}
	return row, col, true
}

func (g *Game) report(err error) {
	if err != nil {
		g.message = err.Error()
	}
}

func (g *Game) statusLines() []string {
	lines := []string{
		"Space start/stop  R reset  X randomize",
		"View " + g.world.DisplayMode().String() + " (D/T/H/N)",
		fmt.Sprintf("Paint %s=%.0f (Tab, [ ], right mouse)", g.paintField, g.paintValue),
		fmt.Sprintf("Tick every %v (Up/Down)", g.ticker.Interval()),
		"G grid  V viability",
	}
	if row, col, ok := g.world.SeedCell(); ok {
		lines = append(lines, fmt.Sprintf("Seed (%d,%d)", row, col))
	} else {
		lines = append(lines, "Left click a cell to seed")
	}
	if g.message != "" {
		lines = append(lines, g.message)
	}
	return lines
}

func (g *Game) gridWidth() int { return g.world.Size().W * g.scale }

// Draw renders the current world state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.world.Cells(), g.world.Palette(), g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.gridWidth(), g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return WindowSize(g.world.Size(), g.scale, g.hudWidth)
}
