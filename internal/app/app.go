//go:build ebiten

package app

import (
	"image/color"
	"time"

	"biosim/internal/core"
	"biosim/internal/render"
	"biosim/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type paletteProvider interface {
	Palette() []color.RGBA
}

// Game adapts a core simulation to the ebiten.Game interface. The island is
// drawn on the left and the HUD panel on the right.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	clock   *core.FixedStep
	palette []color.RGBA

	scale    int
	hudWidth int
	paused   bool
	tickOnce bool
	seed     int64
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, cfg *Config) *Game {
	size := sim.Size()
	g := &Game{
		sim:      sim,
		painter:  render.NewGridPainter(size.W, size.H),
		overlay:  ui.NewOverlay(sim, cfg.Scale),
		hud:      ui.NewHUD(sim, cfg.HUDWidth),
		clock:    core.NewFixedStep(cfg.YearsPerSecond),
		scale:    cfg.Scale,
		hudWidth: cfg.HUDWidth,
		seed:     cfg.Seed,
	}
	if provider, ok := sim.(paletteProvider); ok {
		g.palette = provider.Palette()
	} else {
		g.palette = []color.RGBA{{A: 255}, {R: 255, G: 255, B: 255, A: 255}}
	}
	return g
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyQ), inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
		g.clock.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.paused = false
		g.clock.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.tickOnce = true
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.Reset(g.seed)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.Reset(time.Now().UnixNano())
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.setSpeed(g.clock.Rate() * 2)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.setSpeed(g.clock.Rate() / 2)
	}

	g.overlay.Update()
	g.hud.Update(g.islandWidth())

	if g.tickOnce {
		g.sim.Step()
		g.tickOnce = false
	} else if !g.paused && g.clock.ShouldStep() {
		g.sim.Step()
	}
	return nil
}

func (g *Game) setSpeed(yps int) {
	if yps < 1 {
		yps = 1
	}
	g.clock.SetRate(yps)
}

// Draw renders the island, the overlays and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	g.painter.Blit(screen, g.sim.Cells(), g.palette, g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.islandWidth(), g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return WindowSize(g.sim.Size(), g.scale, g.hudWidth)
}

func (g *Game) islandWidth() int { return g.sim.Size().W * g.scale }
