//go:build ebiten

package ui

import (
	"image/color"

	"biosim/internal/core"
	"biosim/internal/render"
	"biosim/internal/sims/biosim"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type densityProvider interface {
	DensityMask(biosim.Species) []float32
}

type foodProvider interface {
	FoodMask() []float32
}

// Overlay draws toggleable heat maps on top of the island.
type Overlay struct {
	sim     core.Sim
	scale   int
	painter *render.GridPainter

	showHerbivores bool
	showCarnivores bool
	showFood       bool
}

var (
	herbivoreTint = color.RGBA{R: 250, G: 230, B: 70}
	carnivoreTint = color.RGBA{R: 235, G: 50, B: 50}
	foodTint      = color.RGBA{R: 60, G: 200, B: 90}
)

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	return &Overlay{sim: sim, scale: scale}
}

// Update toggles layers: 1 herbivores, 2 carnivores, 3 fodder.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showHerbivores = !o.showHerbivores
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showCarnivores = !o.showCarnivores
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showFood = !o.showFood
	}
}

// Draw renders the enabled layers onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	if o.painter == nil {
		o.painter = render.NewGridPainter(size.W, size.H)
	} else if w, h := o.painter.Size(); w != size.W || h != size.H {
		o.painter = render.NewGridPainter(size.W, size.H)
	}

	if o.showFood {
		if provider, ok := o.sim.(foodProvider); ok {
			o.painter.BlitMask(screen, provider.FoodMask(), foodTint, o.scale)
		}
	}
	if provider, ok := o.sim.(densityProvider); ok {
		if o.showHerbivores {
			o.painter.BlitMask(screen, provider.DensityMask(biosim.Herbivore), herbivoreTint, o.scale)
		}
		if o.showCarnivores {
			o.painter.BlitMask(screen, provider.DensityMask(biosim.Carnivore), carnivoreTint, o.scale)
		}
	}
}
