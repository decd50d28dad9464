package biosim

import (
	"fmt"
	"image/color"
)

const (
	displayTerrainMask    = 0x03
	displayHerbivoreShift = 2
	displayHerbivoreMask  = 0x0c
	displayCarnivoreShift = 4
	displayCarnivoreMask  = 0x30

	densityLevels = 4
)

var biosimPalette = buildPalette()

// Palette exposes the colour palette used for rendering the island.
func (w *World) Palette() []color.RGBA {
	return biosimPalette
}

func buildPalette() []color.RGBA {
	palette := make([]color.RGBA, 64)
	for i := range palette {
		terrain := Terrain(i & displayTerrainMask)
		herbs := (i & displayHerbivoreMask) >> displayHerbivoreShift
		carns := (i & displayCarnivoreMask) >> displayCarnivoreShift
		palette[i] = toRGBA(paletteColorFor(terrain, herbs, carns))
	}
	return palette
}

func toRGBA(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func paletteColorFor(terrain Terrain, herbs, carns int) color.NRGBA {
	base := terrainColor(terrain)
	if terrain == Water {
		return base
	}
	if herbs > 0 {
		base = blendColors(base, color.NRGBA{R: 240, G: 220, B: 60, A: 255}, 0.25*float64(herbs))
	}
	if carns > 0 {
		base = blendColors(base, color.NRGBA{R: 200, G: 40, B: 40, A: 255}, 0.3*float64(carns))
	}
	return base
}

func terrainColor(t Terrain) color.NRGBA {
	switch t {
	case Water:
		return color.NRGBA{R: 40, G: 80, B: 170, A: 255}
	case Desert:
		return color.NRGBA{R: 220, G: 200, B: 140, A: 255}
	case Lowland:
		return color.NRGBA{R: 70, G: 160, B: 80, A: 255}
	case Highland:
		return color.NRGBA{R: 120, G: 140, B: 110, A: 255}
	default:
		return color.NRGBA{A: 255}
	}
}

func blendColors(base, overlay color.NRGBA, overlayWeight float64) color.NRGBA {
	if overlayWeight <= 0 {
		return base
	}
	if overlayWeight >= 1 {
		return overlay
	}
	br, bg, bb, ba := float64(base.R), float64(base.G), float64(base.B), float64(base.A)
	or, og, ob, oa := float64(overlay.R), float64(overlay.G), float64(overlay.B), float64(overlay.A)
	w := overlayWeight
	inv := 1 - w
	return color.NRGBA{
		R: uint8(br*inv + or*w + 0.5),
		G: uint8(bg*inv + og*w + 0.5),
		B: uint8(bb*inv + ob*w + 0.5),
		A: uint8(ba*inv + oa*w + 0.5),
	}
}

// densityLevel maps a head count to 0..3 relative to the colour limit cmax.
func densityLevel(n, cmax int) int {
	if n <= 0 {
		return 0
	}
	if cmax <= 0 || n >= cmax {
		return densityLevels - 1
	}
	level := 1 + n*(densityLevels-1)/cmax
	if level > densityLevels-1 {
		level = densityLevels - 1
	}
	return level
}

func encodeDisplayValue(terrain Terrain, herbLevel, carnLevel int) uint8 {
	value := uint8(terrain) & displayTerrainMask
	value |= (uint8(herbLevel) << displayHerbivoreShift) & displayHerbivoreMask
	value |= (uint8(carnLevel) << displayCarnivoreShift) & displayCarnivoreMask
	return value
}

func (w *World) rebuildDisplay() {
	if w.engine == nil || w.display == nil {
		return
	}
	cells := w.display.Cells()
	for _, cell := range w.engine.island.cells {
		cells[w.display.Index(cell.loc.Col-1, cell.loc.Row-1)] = encodeDisplayValue(
			cell.terrain,
			densityLevel(cell.Count(Herbivore), w.cfg.Display.CMaxHerbivore),
			densityLevel(cell.Count(Carnivore), w.cfg.Display.CMaxCarnivore),
		)
	}
}

// DensityMask returns per-cell head counts of s scaled to [0, 1] by the colour
// limit of the species, in row-major order.
func (w *World) DensityMask(s Species) []float32 {
	if w.engine == nil {
		return nil
	}
	cmax := w.cfg.Display.CMaxHerbivore
	if s == Carnivore {
		cmax = w.cfg.Display.CMaxCarnivore
	}
	mask := make([]float32, len(w.engine.island.cells))
	for i, cell := range w.engine.island.cells {
		n := cell.Count(s)
		switch {
		case n <= 0:
		case cmax <= 0 || n >= cmax:
			mask[i] = 1
		default:
			mask[i] = float32(n) / float32(cmax)
		}
	}
	return mask
}

// FoodMask returns the remaining fodder of every cell relative to its
// terrain's maximum.
func (w *World) FoodMask() []float32 {
	if w.engine == nil {
		return nil
	}
	mask := make([]float32, len(w.engine.island.cells))
	for i, cell := range w.engine.island.cells {
		if fmax := cell.FoodMax(); fmax > 0 {
			mask[i] = float32(cell.Food() / fmax)
		}
	}
	return mask
}

// Status summarises the current year for the viewer panel.
func (w *World) Status() []string {
	if w.engine == nil {
		if w.err != nil {
			return []string{"error: " + w.err.Error()}
		}
		return nil
	}
	last := w.engine.island.LastYear()
	return []string{
		fmt.Sprintf("Year %d  (%s)", w.engine.Year(), w.engine.State()),
		fmt.Sprintf("Herbivores %d", w.engine.island.Count(Herbivore)),
		fmt.Sprintf("Carnivores %d", w.engine.island.Count(Carnivore)),
		fmt.Sprintf("Births %d  Deaths %d", last.Births, last.Deaths),
		fmt.Sprintf("Kills %d  Moves %d", last.Kills, last.Migrations),
	}
}
