package render

import (
	"image/color"
	"math"
)

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(cells)])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

const (
	maskMaxAlpha      = 150.0
	maskGlowBase      = 0.35
	maskGlowRange     = 0.65
	maskIntensityBias = 0.75
)

// FillMaskRGBA tints a [0, 1] intensity mask into RGBA pixels. Zero cells stay
// fully transparent so the island shows through.
func FillMaskRGBA(buf []byte, mask []float32, tint color.RGBA) {
	for i, v := range mask {
		base := i * 4
		intensity := float64(v)
		if intensity <= 0 || math.IsNaN(intensity) {
			buf[base+0], buf[base+1], buf[base+2], buf[base+3] = 0, 0, 0, 0
			continue
		}
		if intensity > 1 {
			intensity = 1
		}
		glow := maskGlowBase + maskGlowRange*math.Sqrt(intensity)
		buf[base+0] = scaleComponent(tint.R, glow)
		buf[base+1] = scaleComponent(tint.G, glow)
		buf[base+2] = scaleComponent(tint.B, glow)
		buf[base+3] = uint8(math.Round(maskMaxAlpha * math.Pow(intensity, maskIntensityBias)))
	}
}

func scaleComponent(value uint8, factor float64) uint8 {
	scaled := math.Round(float64(value) * factor)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
