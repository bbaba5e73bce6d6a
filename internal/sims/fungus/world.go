package fungus

import (
	"fmt"

	"mycelium/internal/core"
)

// World runs the colony simulation on two grid buffers that swap roles each
// tick. It is not safe for concurrent use.
type World struct {
	cfg  Config
	rule Rule

	rows, cols int

	curr *Grid
	next *Grid

	display []uint8
	mode    DisplayMode

	baseline []Cell // environment restored by Reset; nil uses the config

	seedRow, seedCol int
	hasSeed          bool
	seeded           bool
	running          bool

	tick  int
	hours float64
	err   error

	rng *core.RNG
}

// New returns a fungus simulation with the provided dimensions using defaults.
func New(rows, cols int) *World {
	cfg := DefaultConfig()
	cfg.Rows = rows
	cfg.Cols = cols
	return NewWithConfig(cfg)
}

// NewWithConfig returns a world configured from the provided options, reset
// with the config seed. Configuration problems surface from Start.
func NewWithConfig(cfg Config) *World {
	w := &World{
		cfg:  cfg,
		rule: cfg.Rule(),
		rows: max(cfg.Rows, 0),
		cols: max(cfg.Cols, 0),
	}
	w.curr = core.NewGrid[Cell](w.rows, w.cols)
	w.next = core.NewGrid[Cell](w.rows, w.cols)
	w.display = make([]uint8, w.rows*w.cols)
	w.Reset(0)
	return w
}

// Name returns the simulation identifier.
func (w *World) Name() string { return "fungus" }

// Size reports the grid dimensions.
func (w *World) Size() core.Size { return core.Size{W: w.cols, H: w.rows} }

// Cells exposes the current display buffer, one palette index per cell.
func (w *World) Cells() []uint8 { return w.display }

// Config returns the active configuration.
func (w *World) Config() Config { return w.cfg }

// Rule returns the active density rule.
func (w *World) Rule() Rule { return w.rule }

// Grid returns the current tick's grid. Callers must treat it as read-only.
func (w *World) Grid() *Grid { return w.curr }

// Tick returns the number of completed ticks.
func (w *World) Tick() int { return w.tick }

// Hours returns the simulated time elapsed since the colony was seeded.
func (w *World) Hours() float64 { return w.hours }

// Running reports whether Step advances the simulation.
func (w *World) Running() bool { return w.running }

// Err returns the error that halted stepping, if any.
func (w *World) Err() error { return w.err }

// SeedCell returns the selected seed coordinate.
func (w *World) SeedCell() (row, col int, ok bool) {
	return w.seedRow, w.seedCol, w.hasSeed
}

// Densities copies the current densities into dst, growing it as needed.
func (w *World) Densities(dst []float64) []float64 {
	cells := w.curr.Cells()
	if cap(dst) < len(cells) {
		dst = make([]float64, len(cells))
	}
	dst = dst[:len(cells)]
	for i, c := range cells {
		dst[i] = c.Density
	}
	return dst
}

// ViabilityMask reports, per cell in row-major order, whether the current
// environment can sustain growth under the active rule.
func (w *World) ViabilityMask(dst []bool) []bool {
	cells := w.curr.Cells()
	if cap(dst) < len(cells) {
		dst = make([]bool, len(cells))
	}
	dst = dst[:len(cells)]
	for i, c := range cells {
		dst[i] = w.rule.GrowthRate(c) >= w.rule.Threshold
	}
	return dst
}

// Reset restores the initial environment and clears all colonization. The
// initial environment is the kept one, if any, or the configured fill. A
// zero seed reuses the configured seed for random environment fills.
func (w *World) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = w.cfg.Seed
	}
	w.rng = core.NewRNG(effective)
	w.running = false
	w.hasSeed = false
	w.seeded = false
	w.tick = 0
	w.hours = 0
	w.err = nil

	w.next.Fill(Cell{})
	if w.baseline != nil {
		copy(w.curr.Cells(), w.baseline)
		w.rebuildDisplay()
		return
	}
	env := w.cfg.Environment
	w.curr.Fill(Cell{Temperature: env.Temperature, Humidity: env.Humidity, Nutrient: env.Nutrient})
	if env.Randomize {
		w.randomize()
	}
	w.rebuildDisplay()
}

// KeepEnvironment makes the current environment the one Reset restores in
// place of the configured fill. Densities are not kept.
func (w *World) KeepEnvironment() {
	cells := w.curr.Cells()
	w.baseline = make([]Cell, len(cells))
	for i, c := range cells {
		w.baseline[i] = Cell{Temperature: c.Temperature, Humidity: c.Humidity, Nutrient: c.Nutrient}
	}
}

// SelectSeed chooses the cell that will be colonized when the simulation
// starts. The seed can be moved until the colony is seeded.
func (w *World) SelectSeed(row, col int) error {
	if w.running {
		return ErrRunning
	}
	if w.seeded {
		return ErrAlreadySeeded
	}
	if err := checkBounds(w.curr, row, col); err != nil {
		return err
	}
	w.seedRow, w.seedCol, w.hasSeed = row, col, true
	return nil
}

// Start validates the configuration and seed, colonizes the seed cell on the
// first start and enables stepping. Starting a stopped world resumes it.
func (w *World) Start() error {
	if w.running {
		return nil
	}
	if err := w.cfg.Validate(); err != nil {
		return err
	}
	if err := w.rule.Validate(); err != nil {
		return err
	}
	if !w.hasSeed {
		return ErrNoSeed
	}
	ok, err := w.rule.Viable(w.curr, w.seedRow, w.seedCol)
	if err != nil {
		return err
	}
	if !ok {
		rate := w.rule.GrowthRate(*w.curr.At(w.seedRow, w.seedCol))
		return fmt.Errorf("%w: cell (%d,%d) growth rate %.3f below %.2f", ErrNotViable, w.seedRow, w.seedCol, rate, w.rule.Threshold)
	}
	if c := w.curr.At(w.seedRow, w.seedCol); c.Density == 0 {
		c.Density = w.cfg.Params.InitialDensity
	}
	w.seeded = true
	w.running = true
	w.err = nil
	w.rebuildDisplay()
	return nil
}

// Stop pauses stepping. Start resumes without reseeding.
func (w *World) Stop() { w.running = false }

// Step advances the simulation by one tick when running.
func (w *World) Step() {
	if !w.running {
		return
	}
	if err := StepGrid(w.curr, w.next, w.rule); err != nil {
		w.err = err
		w.running = false
		return
	}
	w.curr, w.next = w.next, w.curr
	w.tick++
	w.hours += w.rule.DT
	w.rebuildDisplay()
}

func init() {
	core.Register("fungus", func(kv map[string]string) (core.Sim, error) {
		cfg, err := ConfigFromMap(kv)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return NewWithConfig(cfg), nil
	})
}
