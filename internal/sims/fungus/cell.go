// Package fungus simulates fungal-colony growth on a fixed-size grid. Each
// cell carries its environment and a colonization density that evolves under
// a reaction-diffusion rule, one synchronous tick at a time.
package fungus

import (
	"errors"
	"fmt"

	"mycelium/internal/core"
)

// Domain maxima used to normalize the environment to a 0-1 scale.
const (
	MaxTemperature = 30.0
	MaxHumidity    = 100.0
	MaxNutrient    = 100.0
)

var (
	// ErrOutOfRange reports coordinates outside the grid.
	ErrOutOfRange = errors.New("coordinates out of range")
	// ErrSizeMismatch reports grids whose dimensions do not agree.
	ErrSizeMismatch = errors.New("grid size mismatch")
	// ErrInvalidConfig reports configuration that must be fixed before stepping.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidEnvironment reports environment values outside their domain.
	ErrInvalidEnvironment = errors.New("invalid environment value")
	// ErrNoSeed reports a start request without a selected seed cell.
	ErrNoSeed = errors.New("no seed cell selected")
	// ErrNotViable reports a seed cell whose environment cannot sustain growth.
	ErrNotViable = errors.New("seed cell cannot sustain growth")
	// ErrAlreadySeeded reports an attempt to move the seed after colonization began.
	ErrAlreadySeeded = errors.New("colony already seeded")
	// ErrRunning reports an edit attempted while the simulation is running.
	ErrRunning = errors.New("simulation is running")
)

// Cell is the state of one grid location. Temperature, Humidity and Nutrient
// are environment inputs and are never modified by stepping.
type Cell struct {
	Temperature float64 // °C, 0-30
	Humidity    float64 // %, 0-100
	Nutrient    float64 // 0-100
	Density     float64 // colonized fraction, 0-1
}

// Grid is a rows × cols field of cells.
type Grid = core.Grid[Cell]

// NewGrid allocates a grid with every cell zeroed.
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid dimensions %dx%d must be positive", ErrInvalidConfig, rows, cols)
	}
	return core.NewGrid[Cell](rows, cols), nil
}

func checkBounds(g *Grid, row, col int) error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrOutOfRange)
	}
	if !g.InBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d grid", ErrOutOfRange, row, col, g.Rows(), g.Cols())
	}
	return nil
}

func validateEnvironment(temperature, humidity, nutrient float64) error {
	var errs []error
	if !inRange(temperature, 0, MaxTemperature) {
		errs = append(errs, fmt.Errorf("%w: temperature %v outside [0,%v]", ErrInvalidEnvironment, temperature, MaxTemperature))
	}
	if !inRange(humidity, 0, MaxHumidity) {
		errs = append(errs, fmt.Errorf("%w: humidity %v outside [0,%v]", ErrInvalidEnvironment, humidity, MaxHumidity))
	}
	if !inRange(nutrient, 0, MaxNutrient) {
		errs = append(errs, fmt.Errorf("%w: nutrient %v outside [0,%v]", ErrInvalidEnvironment, nutrient, MaxNutrient))
	}
	return errors.Join(errs...)
}

// inRange also rejects NaN.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
