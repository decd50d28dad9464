package app

import "biosim/internal/core"

// minWindowHeight keeps the HUD readable on small islands.
const minWindowHeight = 480

// WindowSize returns the window dimensions for an island of the given size.
func WindowSize(size core.Size, scale, hudWidth int) (int, int) {
	if scale <= 0 {
		scale = 1
	}
	if hudWidth < 0 {
		hudWidth = 0
	}
	h := size.H * scale
	if hudWidth > 0 && h < minWindowHeight {
		h = minWindowHeight
	}
	return size.W*scale + hudWidth, h
}
