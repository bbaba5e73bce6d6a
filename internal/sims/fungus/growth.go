package fungus

import (
	"errors"
	"fmt"
	"math"

	"mycelium/internal/core"
)

// Defaults for the growth rule.
const (
	DefaultDiffusion      = 0.5
	DefaultRMax           = 0.84
	DefaultDT             = 1.0
	DefaultThreshold      = 0.25
	DefaultDiffusionScale = 0.01
)

// Weights sets how much each normalized environment factor contributes to
// the growth rate. Only their ratios matter.
type Weights struct {
	Temperature float64 `yaml:"temperature"`
	Humidity    float64 `yaml:"humidity"`
	Nutrient    float64 `yaml:"nutrient"`
}

// DefaultWeights returns the standard weighting where nutrient dominates.
func DefaultWeights() Weights {
	return Weights{Temperature: 0.2, Humidity: 0.3, Nutrient: 0.5}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Temperature + w.Humidity + w.Nutrient
}

// Validate rejects negative weights and an all-zero weighting.
func (w Weights) Validate() error {
	var errs []error
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"temperature", w.Temperature},
		{"humidity", w.Humidity},
		{"nutrient", w.Nutrient},
	} {
		if !(f.v >= 0) || math.IsInf(f.v, 0) {
			errs = append(errs, fmt.Errorf("%w: %s weight %v must be a finite non-negative number", ErrInvalidConfig, f.name, f.v))
		}
	}
	if len(errs) == 0 && w.Sum() <= 0 {
		errs = append(errs, fmt.Errorf("%w: weights must not all be zero", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// GrowthRate returns the weighted, normalized growth rate of a cell.
func GrowthRate(c Cell, rMax float64, w Weights) float64 {
	t := c.Temperature / MaxTemperature
	h := c.Humidity / MaxHumidity
	n := c.Nutrient / MaxNutrient
	return rMax * (w.Temperature*t + w.Humidity*h + w.Nutrient*n) / w.Sum()
}

// IsViable reports whether the cell at (row, col) has an environment that can
// ever sustain colonization under the default threshold.
func IsViable(g *Grid, row, col int, rMax float64, w Weights) (bool, error) {
	if err := checkBounds(g, row, col); err != nil {
		return false, err
	}
	if err := w.Validate(); err != nil {
		return false, err
	}
	return GrowthRate(*g.At(row, col), rMax, w) >= DefaultThreshold, nil
}

// Rule holds the constants of the density update.
type Rule struct {
	Diffusion      float64 // D
	RMax           float64
	DT             float64 // hours per tick
	Threshold      float64 // growth rates below this force density to zero
	DiffusionScale float64
	Weights        Weights
}

// DefaultRule returns the rule used by the interactive application.
func DefaultRule() Rule {
	return Rule{
		Diffusion:      DefaultDiffusion,
		RMax:           DefaultRMax,
		DT:             DefaultDT,
		Threshold:      DefaultThreshold,
		DiffusionScale: DefaultDiffusionScale,
		Weights:        DefaultWeights(),
	}
}

// Validate checks the rule constants.
func (r Rule) Validate() error {
	var errs []error
	if !(r.DT > 0) || math.IsInf(r.DT, 0) {
		errs = append(errs, fmt.Errorf("%w: dt %v must be positive", ErrInvalidConfig, r.DT))
	}
	if !inRange(r.Diffusion, 0, 1) {
		errs = append(errs, fmt.Errorf("%w: diffusion coefficient %v outside [0,1]", ErrInvalidConfig, r.Diffusion))
	}
	if !(r.RMax >= 0) || math.IsInf(r.RMax, 0) {
		errs = append(errs, fmt.Errorf("%w: r_max %v must be non-negative", ErrInvalidConfig, r.RMax))
	}
	if !(r.Threshold >= 0) {
		errs = append(errs, fmt.Errorf("%w: viability threshold %v must be non-negative", ErrInvalidConfig, r.Threshold))
	}
	if !(r.DiffusionScale >= 0) {
		errs = append(errs, fmt.Errorf("%w: diffusion scale %v must be non-negative", ErrInvalidConfig, r.DiffusionScale))
	}
	if err := r.Weights.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GrowthRate returns the cell's growth rate under this rule.
func (r Rule) GrowthRate(c Cell) float64 {
	return GrowthRate(c, r.RMax, r.Weights)
}

// Viable reports whether the cell at (row, col) reaches the rule's threshold.
func (r Rule) Viable(g *Grid, row, col int) (bool, error) {
	if err := checkBounds(g, row, col); err != nil {
		return false, err
	}
	if err := r.Weights.Validate(); err != nil {
		return false, err
	}
	return r.GrowthRate(*g.At(row, col)) >= r.Threshold, nil
}

// StepCellDensity returns the next-tick density of the cell at (row, col),
// reading only the current snapshot g. The result is not capped at 1; the
// caller saturates after collecting a full tick.
func StepCellDensity(g *Grid, r Rule, row, col int) (float64, error) {
	if err := checkBounds(g, row, col); err != nil {
		return 0, err
	}
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return r.nextDensity(g, row, col), nil
}

// nextDensity assumes (row, col) is in bounds and r is valid.
func (r Rule) nextDensity(g *Grid, row, col int) float64 {
	cell := g.At(row, col)
	rate := r.GrowthRate(*cell)
	if rate < r.Threshold {
		return 0
	}

	// Missing neighbors count as zero and the divisor stays 4, so edge and
	// corner cells diffuse less than interior ones.
	var sum float64
	for _, o := range core.Orthogonal {
		nr, nc := row+o.DRow, col+o.DCol
		if g.InBounds(nr, nc) {
			sum += g.At(nr, nc).Density
		}
	}
	density := cell.Density
	laplacian := sum/4 - density

	growth := rate * density * (1 - density)
	diffusion := r.Diffusion * laplacian * r.DiffusionScale

	next := density + r.DT*(growth+diffusion)
	if next < density {
		return density
	}
	return next
}

// StepGrid computes a full tick from src into dst. Every read comes from src,
// so no update is visible to another cell within the same tick. Densities at
// or above 1 are saturated to exactly 1.
func StepGrid(src, dst *Grid, r Rule) error {
	if src == nil || dst == nil {
		return fmt.Errorf("%w: nil grid", ErrSizeMismatch)
	}
	if src == dst {
		return fmt.Errorf("%w: source and destination must be distinct buffers", ErrSizeMismatch)
	}
	if !core.SameSize(src, dst) {
		return fmt.Errorf("%w: source %dx%d, destination %dx%d", ErrSizeMismatch, src.Rows(), src.Cols(), dst.Rows(), dst.Cols())
	}
	if err := r.Validate(); err != nil {
		return err
	}

	in, out := src.Cells(), dst.Cells()
	for row := 0; row < src.Rows(); row++ {
		for col := 0; col < src.Cols(); col++ {
			idx := src.Index(row, col)
			next := in[idx]
			next.Density = r.nextDensity(src, row, col)
			if next.Density >= 1 {
				next.Density = 1
			}
			out[idx] = next
		}
	}
	return nil
}
