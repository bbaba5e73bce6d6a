//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"mycelium/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type seedProvider interface {
	SeedCell() (row, col int, ok bool)
}

type viabilityProvider interface {
	ViabilityMask(dst []bool) []bool
}

// Overlay draws optional visuals on top of the grid: grid lines, a mask over
// cells that cannot sustain growth, the selected seed and the hovered cell.
type Overlay struct {
	sim   core.Sim
	scale int

	showGrid      bool
	showViability bool

	mask    []bool
	maskImg *ebiten.Image
	maskBuf []byte
	pixel   *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: max(scale, 1)}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles overlay layers: G for grid lines, V for the viability mask.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		o.showGrid = !o.showGrid
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		o.showViability = !o.showViability
	}
}

// Draw renders the enabled layers onto screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	if o.showViability {
		if provider, ok := o.sim.(viabilityProvider); ok {
			o.mask = provider.ViabilityMask(o.mask)
			o.drawMask(screen, o.mask, size)
		}
	}
	if o.showGrid && o.scale >= 4 {
		o.drawGridLines(screen, size)
	}
	if provider, ok := o.sim.(seedProvider); ok {
		if row, col, ok := provider.SeedCell(); ok {
			o.drawCellOutline(screen, row, col, 2, color.RGBA{R: 255, G: 64, B: 64, A: 255})
		}
	}
	mx, my := ebiten.CursorPosition()
	row, col := my/o.scale, mx/o.scale
	if mx >= 0 && my >= 0 && row < size.H && col < size.W {
		o.drawCellOutline(screen, row, col, 1, color.RGBA{R: 255, G: 255, B: 255, A: 160})
	}
}

func (o *Overlay) drawMask(screen *ebiten.Image, mask []bool, size core.Size) {
	total := size.W * size.H
	if len(mask) != total || total == 0 {
		return
	}
	if o.maskImg == nil || o.maskImg.Bounds().Dx() != size.W || o.maskImg.Bounds().Dy() != size.H {
		o.maskImg = ebiten.NewImage(size.W, size.H)
		o.maskBuf = make([]byte, total*4)
	}
	for i, viable := range mask {
		base := i * 4
		alpha := uint8(0)
		if !viable {
			alpha = 150
		}
		// Premultiplied black tint.
		o.maskBuf[base+0] = 0
		o.maskBuf[base+1] = 0
		o.maskBuf[base+2] = 0
		o.maskBuf[base+3] = alpha
	}
	o.maskImg.WritePixels(o.maskBuf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(o.scale), float64(o.scale))
	screen.DrawImage(o.maskImg, op)
}

func (o *Overlay) drawGridLines(screen *ebiten.Image, size core.Size) {
	col := color.RGBA{R: 0, G: 0, B: 0, A: 60}
	w := float64(size.W * o.scale)
	h := float64(size.H * o.scale)
	for x := 0; x <= size.W; x++ {
		fx := float64(x * o.scale)
		o.drawLine(screen, fx, 0, fx, h, 1, col)
	}
	for y := 0; y <= size.H; y++ {
		fy := float64(y * o.scale)
		o.drawLine(screen, 0, fy, w, fy, 1, col)
	}
}

func (o *Overlay) drawCellOutline(screen *ebiten.Image, row, col int, thickness float64, c color.RGBA) {
	s := float64(o.scale)
	x0, y0 := float64(col)*s, float64(row)*s
	x1, y1 := x0+s, y0+s
	o.drawLine(screen, x0, y0, x1, y0, thickness, c)
	o.drawLine(screen, x0, y1, x1, y1, thickness, c)
	o.drawLine(screen, x0, y0, x0, y1, thickness, c)
	o.drawLine(screen, x1, y0, x1, y1, thickness, c)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
