package core

// Offset is a relative grid step expressed in rows and columns.
type Offset struct {
	DRow, DCol int
}

// Orthogonal lists the four von Neumann neighbor offsets: up, down, left, right.
var Orthogonal = [4]Offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Grid stores a fixed-size 2D grid of values in row-major order.
type Grid[T any] struct {
	rows, cols int
	data       []T
}

// NewGrid allocates a grid with the given dimensions. Non-positive dimensions
// produce an empty grid; callers that need a hard failure validate first.
func NewGrid[T any](rows, cols int) *Grid[T] {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Grid[T]{rows: rows, cols: cols, data: make([]T, rows*cols)}
}

// Rows returns the number of rows.
func (g *Grid[T]) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid[T]) Cols() int { return g.cols }

// Size reports the grid dimensions with W as columns and H as rows.
func (g *Grid[T]) Size() Size { return Size{W: g.cols, H: g.rows} }

// Cells exposes the backing slice so callers can read/write values directly.
func (g *Grid[T]) Cells() []T { return g.data }

// Index returns the linear slice index for (row, col).
func (g *Grid[T]) Index(row, col int) int { return row*g.cols + col }

// InBounds reports whether (row, col) addresses a cell of the grid.
func (g *Grid[T]) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// At returns a pointer to the cell at (row, col). It panics when the
// coordinates are out of range, like a slice index would.
func (g *Grid[T]) At(row, col int) *T {
	if !g.InBounds(row, col) {
		panic("core: grid index out of range")
	}
	return &g.data[g.Index(row, col)]
}

// SameSize reports whether two grids have identical dimensions.
func SameSize[T, U any](a *Grid[T], b *Grid[U]) bool {
	return a.rows == b.rows && a.cols == b.cols
}

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}
