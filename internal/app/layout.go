package app

import "mycelium/internal/core"

const minWindowHeight = 480

// WindowSize returns the window dimensions for a grid drawn at scale with a
// side panel of hudWidth pixels.
func WindowSize(size core.Size, scale, hudWidth int) (w, h int) {
	scale = max(scale, 1)
	w = size.W*scale + max(hudWidth, 0)
	h = size.H * scale
	if hudWidth > 0 {
		h = max(h, minWindowHeight)
	}
	return w, h
}
