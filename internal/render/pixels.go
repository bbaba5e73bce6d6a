// Package render turns palette-indexed cell values into RGBA pixels.
package render

import "image/color"

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black. Values
// past the end of the palette use its last entry.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(cells)])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := min(int(c), last)
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// PaletteImage returns an RGBA pixel buffer of w*h cells, for callers that
// render without a GPU (snapshots, tests). It returns nil on a size mismatch.
func PaletteImage(w, h int, cells []uint8, palette []color.RGBA) []byte {
	if w <= 0 || h <= 0 || len(cells) != w*h {
		return nil
	}
	buf := make([]byte, 4*w*h)
	fillPaletteRGBA(buf, cells, palette)
	return buf
}
