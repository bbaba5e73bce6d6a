package fungus

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mycelium/internal/core"

	qt "github.com/frankban/quicktest"
)

func smallConfig(rows, cols int) Config {
	cfg := DefaultConfig()
	cfg.Rows = rows
	cfg.Cols = cols
	return cfg
}

func TestStartRequiresSeed(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	c.Assert(w.Start(), qt.ErrorIs, ErrNoSeed)
	c.Assert(w.Running(), qt.IsFalse)
}

func TestStartRejectsNonViableSeed(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	c.Assert(w.SetEnvironment(1, 1, 0, 0, 0), qt.IsNil)
	c.Assert(w.SelectSeed(1, 1), qt.IsNil)

	err := w.Start()
	c.Assert(err, qt.ErrorIs, ErrNotViable)
	c.Assert(w.Running(), qt.IsFalse)
	c.Assert(w.Grid().At(1, 1).Density, qt.Equals, 0.0)
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	c := qt.New(t)
	cfg := smallConfig(3, 3)
	cfg.Params.DT = 0
	w := NewWithConfig(cfg)
	c.Assert(w.SelectSeed(1, 1), qt.IsNil)
	c.Assert(w.Start(), qt.ErrorIs, ErrInvalidConfig)
	c.Assert(w.Running(), qt.IsFalse)
}

func TestSelectSeedRejectsOutOfRange(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	c.Assert(w.SelectSeed(3, 0), qt.ErrorIs, ErrOutOfRange)
	_, _, ok := w.SeedCell()
	c.Assert(ok, qt.IsFalse)
}

func TestStartSeedsOnlyTheSelectedCell(t *testing.T) {
	c := qt.New(t)
	w := New(4, 5)
	c.Assert(w.SelectSeed(2, 3), qt.IsNil)
	c.Assert(w.Start(), qt.IsNil)
	c.Assert(w.Running(), qt.IsTrue)

	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			want := 0.0
			if row == 2 && col == 3 {
				want = 0.01
			}
			c.Assert(w.Grid().At(row, col).Density, qt.Equals, want)
		}
	}
	c.Assert(w.Tick(), qt.Equals, 0)
}

func TestStepMatchesThreeByThreeScenario(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	c.Assert(w.SelectSeed(1, 1), qt.IsNil)
	c.Assert(w.Start(), qt.IsNil)

	w.Step()

	c.Assert(w.Tick(), qt.Equals, 1)
	c.Assert(w.Hours(), qt.Equals, 1.0)
	want := []float64{
		0, 0.0000125, 0,
		0.0000125, 0.014108, 0.0000125,
		0, 0.0000125, 0,
	}
	c.Assert(w.Densities(nil), approx, want)
}

func TestStepIsNoOpWhenStopped(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	w.Step()
	c.Assert(w.Tick(), qt.Equals, 0)

	c.Assert(w.SelectSeed(0, 0), qt.IsNil)
	c.Assert(w.Start(), qt.IsNil)
	w.Step()
	w.Stop()
	before := w.Densities(nil)
	w.Step()
	c.Assert(w.Tick(), qt.Equals, 1)
	c.Assert(w.Densities(nil), qt.DeepEquals, before)
}

func TestStepSwapsBuffers(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	c.Assert(w.SelectSeed(1, 1), qt.IsNil)
	c.Assert(w.Start(), qt.IsNil)

	first := w.Grid()
	w.Step()
	second := w.Grid()
	c.Assert(second == first, qt.IsFalse)
	w.Step()
	c.Assert(w.Grid() == first, qt.IsTrue)
}

func TestDensityStaysBoundedAndMonotonic(t *testing.T) {
	c := qt.New(t)
	cfg := smallConfig(12, 12)
	cfg.Environment.Randomize = true
	cfg.Params.DT = 5
	cfg.Seed = 4242
	w := NewWithConfig(cfg)

	viable := make([]bool, 12*12)
	for row := 0; row < 12; row++ {
		for col := 0; col < 12; col++ {
			ok, err := w.Rule().Viable(w.Grid(), row, col)
			c.Assert(err, qt.IsNil)
			viable[w.Grid().Index(row, col)] = ok
		}
	}
	seed := -1
	for i, ok := range viable {
		if ok {
			seed = i
			break
		}
	}
	c.Assert(seed >= 0, qt.IsTrue, qt.Commentf("randomized environment has no viable cell"))
	c.Assert(w.SelectSeed(seed/12, seed%12), qt.IsNil)
	c.Assert(w.Start(), qt.IsNil)

	prev := w.Densities(nil)
	var curr []float64
	for step := 0; step < 200; step++ {
		w.Step()
		curr = w.Densities(curr)
		for i, d := range curr {
			c.Assert(d >= 0 && d <= 1, qt.IsTrue, qt.Commentf("step %d cell %d density %v", step, i, d))
			if viable[i] {
				c.Assert(d >= prev[i], qt.IsTrue, qt.Commentf("step %d cell %d decreased", step, i))
			} else {
				c.Assert(d, qt.Equals, 0.0)
			}
		}
		copy(prev, curr)
	}
	c.Assert(w.Grid().At(seed/12, seed%12).Density > 0.9, qt.IsTrue)
}

func TestEnvironmentLockedWhileRunning(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	c.Assert(w.SelectSeed(1, 1), qt.IsNil)
	c.Assert(w.Start(), qt.IsNil)

	c.Assert(w.Paint(0, 0, FieldTemperature, 10), qt.ErrorIs, ErrRunning)
	c.Assert(w.SetEnvironment(0, 0, 10, 10, 10), qt.ErrorIs, ErrRunning)
	c.Assert(w.RandomizeEnvironment(), qt.ErrorIs, ErrRunning)
	c.Assert(w.SelectSeed(0, 0), qt.ErrorIs, ErrRunning)
	_, err := w.LoadEnvironment(strings.NewReader("row,col,temperature,humidity,nutrient\n0,0,1,1,1\n"))
	c.Assert(err, qt.ErrorIs, ErrRunning)
	c.Assert(w.SetFloatParameter("diffusion", 0.1), qt.IsFalse)
}

func TestResumeDoesNotReseed(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	c.Assert(w.SelectSeed(1, 1), qt.IsNil)
	c.Assert(w.Start(), qt.IsNil)
	w.Step()
	w.Step()
	w.Stop()

	seeded := w.Grid().At(1, 1).Density
	c.Assert(w.SelectSeed(0, 0), qt.ErrorIs, ErrAlreadySeeded)
	c.Assert(w.Paint(2, 2, FieldNutrient, 90), qt.IsNil)
	c.Assert(w.Start(), qt.IsNil)
	c.Assert(w.Grid().At(1, 1).Density, qt.Equals, seeded)
	c.Assert(w.Tick(), qt.Equals, 2)
}

func TestResetClearsColonyAndSeed(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	c.Assert(w.Paint(0, 0, FieldHumidity, 90), qt.IsNil)
	c.Assert(w.SelectSeed(1, 1), qt.IsNil)
	c.Assert(w.Start(), qt.IsNil)
	w.Step()

	w.Reset(0)
	c.Assert(w.Running(), qt.IsFalse)
	c.Assert(w.Tick(), qt.Equals, 0)
	c.Assert(w.Hours(), qt.Equals, 0.0)
	_, _, ok := w.SeedCell()
	c.Assert(ok, qt.IsFalse)
	for _, cell := range w.Grid().Cells() {
		c.Assert(cell, qt.Equals, Cell{Temperature: 15, Humidity: 50, Nutrient: 50})
	}
	c.Assert(w.SelectSeed(2, 2), qt.IsNil)
}

func TestRandomizedResetDeterministic(t *testing.T) {
	c := qt.New(t)
	cfg := smallConfig(8, 8)
	cfg.Environment.Randomize = true

	a := NewWithConfig(cfg)
	b := NewWithConfig(cfg)
	c.Assert(a.Grid().Cells(), qt.DeepEquals, b.Grid().Cells())

	a.Reset(99)
	b.Reset(99)
	c.Assert(a.Grid().Cells(), qt.DeepEquals, b.Grid().Cells())

	b.Reset(100)
	c.Assert(a.Grid().Cells(), qt.Not(qt.DeepEquals), b.Grid().Cells())

	for _, cell := range a.Grid().Cells() {
		c.Assert(validateEnvironment(cell.Temperature, cell.Humidity, cell.Nutrient), qt.IsNil)
		c.Assert(cell.Density, qt.Equals, 0.0)
	}
}

func TestPaintValidatesField(t *testing.T) {
	c := qt.New(t)
	w := New(2, 2)
	c.Assert(w.Paint(0, 1, FieldNutrient, 80), qt.IsNil)
	c.Assert(w.Grid().At(0, 1).Nutrient, qt.Equals, 80.0)
	c.Assert(w.Grid().At(0, 1).Humidity, qt.Equals, 50.0)

	c.Assert(w.Paint(0, 1, FieldTemperature, 31), qt.ErrorIs, ErrInvalidEnvironment)
	c.Assert(w.Paint(0, 1, FieldHumidity, -1), qt.ErrorIs, ErrInvalidEnvironment)
	c.Assert(w.Paint(0, 1, Field(9), 1), qt.ErrorIs, ErrInvalidEnvironment)
	c.Assert(w.Paint(5, 1, FieldHumidity, 1), qt.ErrorIs, ErrOutOfRange)
	c.Assert(w.SetEnvironment(0, 0, 10, 101, 10), qt.ErrorIs, ErrInvalidEnvironment)
}

func TestViabilityMask(t *testing.T) {
	c := qt.New(t)
	w := New(1, 3)
	c.Assert(w.SetEnvironment(0, 0, 0, 0, 0), qt.IsNil)
	c.Assert(w.SetEnvironment(0, 2, 30, 100, 100), qt.IsNil)

	mask := w.ViabilityMask(nil)
	c.Assert(mask, qt.DeepEquals, []bool{false, true, true})
	for col, viable := range mask {
		ok, err := w.Rule().Viable(w.Grid(), 0, col)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.Equals, viable)
	}
}

func TestParseField(t *testing.T) {
	c := qt.New(t)
	for name, want := range map[string]Field{
		"temperature": FieldTemperature,
		"Humidity":    FieldHumidity,
		"food":        FieldNutrient,
	} {
		got, err := ParseField(name)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want)
	}
	_, err := ParseField("wind")
	c.Assert(err, qt.ErrorMatches, `unknown environment field "wind"`)
	c.Assert(FieldNutrient.String(), qt.Equals, "nutrient")
}

func TestLoadEnvironment(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	csv := "row,col,temperature,humidity,nutrient\n0,0,30,100,100\n2,1,5,20,10\n"
	n, err := w.LoadEnvironment(strings.NewReader(csv))
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 2)
	c.Assert(*w.Grid().At(0, 0), qt.Equals, Cell{Temperature: 30, Humidity: 100, Nutrient: 100})
	c.Assert(*w.Grid().At(2, 1), qt.Equals, Cell{Temperature: 5, Humidity: 20, Nutrient: 10})
	c.Assert(*w.Grid().At(1, 1), qt.Equals, Cell{Temperature: 15, Humidity: 50, Nutrient: 50})
}

func TestLoadEnvironmentIsAllOrNothing(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	csv := "row,col,temperature,humidity,nutrient\n0,0,1,1,1\n3,0,1,1,1\n1,1,40,1,1\n"
	n, err := w.LoadEnvironment(strings.NewReader(csv))
	c.Assert(n, qt.Equals, 0)
	c.Assert(err, qt.ErrorIs, ErrOutOfRange)
	c.Assert(err, qt.ErrorIs, ErrInvalidEnvironment)
	c.Assert(*w.Grid().At(0, 0), qt.Equals, Cell{Temperature: 15, Humidity: 50, Nutrient: 50})
}

func TestExportEnvironmentFeedsLoad(t *testing.T) {
	c := qt.New(t)
	src := New(2, 3)
	c.Assert(src.SetEnvironment(1, 2, 7, 8, 9), qt.IsNil)
	var buf strings.Builder
	c.Assert(src.ExportEnvironment(&buf), qt.IsNil)

	dst := New(2, 3)
	c.Assert(dst.RandomizeEnvironment(), qt.IsNil)
	n, err := dst.LoadEnvironment(strings.NewReader(buf.String()))
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 6)
	c.Assert(dst.Grid().Cells(), qt.DeepEquals, src.Grid().Cells())
}

func TestDisplayEncodesSelectedLayer(t *testing.T) {
	c := qt.New(t)
	w := New(2, 2)
	c.Assert(w.Cells(), qt.DeepEquals, []uint8{0, 0, 0, 0})
	c.Assert(w.Palette(), qt.HasLen, 256)
	c.Assert(w.Palette()[0], qt.Equals, DensityColor(0))

	w.SetDisplayMode(DisplayTemperature)
	c.Assert(w.Cells()[0], qt.Equals, uint8(128))
	c.Assert(w.Palette()[255], qt.Equals, TemperatureColor(MaxTemperature))

	w.SetDisplayMode(DisplayDensity)
	c.Assert(w.SelectSeed(0, 0), qt.IsNil)
	c.Assert(w.Start(), qt.IsNil)
	c.Assert(w.Cells()[0], qt.Equals, encodeDisplayValue(0.01, 1))
}

func TestColorMaps(t *testing.T) {
	c := qt.New(t)
	c.Assert(DensityColor(0), qt.Equals, densityStopColor[0])
	c.Assert(DensityColor(1), qt.Equals, densityStopColor[3])
	c.Assert(TemperatureColor(0).B, qt.Equals, uint8(255))
	c.Assert(TemperatureColor(30).R, qt.Equals, uint8(255))
	c.Assert(TemperatureColor(30).G, qt.Equals, uint8(0))
	c.Assert(NutrientColor(100).R, qt.Equals, uint8(128))
	c.Assert(HumidityColor(0).G, qt.Equals, uint8(228))
}

func TestParameters(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	snap := w.Parameters()
	p, ok := snap.Lookup("diffusion")
	c.Assert(ok, qt.IsTrue)
	c.Assert(p.Value, qt.Equals, "0.5")
	p, ok = snap.Lookup("weight_nutrient")
	c.Assert(ok, qt.IsTrue)
	c.Assert(p.Value, qt.Equals, "0.5")

	c.Assert(w.SetFloatParameter("diffusion", 2), qt.IsTrue)
	c.Assert(w.Rule().Diffusion, qt.Equals, 1.0)
	c.Assert(w.SetFloatParameter("dt", 0), qt.IsTrue)
	c.Assert(w.Rule().DT, qt.Equals, 0.1)
	c.Assert(w.SetFloatParameter("r_max", 1), qt.IsFalse)

	var _ core.FloatParameterSetter = w
	var _ core.ParameterControlsProvider = w
}

func TestRegisteredFactory(t *testing.T) {
	c := qt.New(t)
	factory, ok := core.Sims()["fungus"]
	c.Assert(ok, qt.IsTrue)
	sim, err := factory(map[string]string{"rows": "5", "cols": "7"})
	c.Assert(err, qt.IsNil)
	c.Assert(sim.Name(), qt.Equals, "fungus")
	c.Assert(sim.Size(), qt.Equals, core.Size{W: 7, H: 5})
	c.Assert(sim.Cells(), qt.HasLen, 35)

	_, err = factory(map[string]string{"rows": "x"})
	c.Assert(err, qt.ErrorMatches, `applying overrides: rows="x": .*`)
	_, err = factory(map[string]string{"dt": "0"})
	c.Assert(err, qt.ErrorIs, ErrInvalidConfig)
}

func TestResetRestoresKeptEnvironment(t *testing.T) {
	c := qt.New(t)
	w := New(3, 3)
	c.Assert(w.SetEnvironment(0, 0, 5, 10, 15), qt.IsNil)
	w.KeepEnvironment()

	c.Assert(w.SelectSeed(1, 1), qt.IsNil)
	c.Assert(w.Start(), qt.IsNil)
	w.Step()
	w.Stop()
	c.Assert(w.Paint(2, 2, FieldNutrient, 1), qt.IsNil)

	w.Reset(0)
	c.Assert(*w.Grid().At(0, 0), qt.Equals, Cell{Temperature: 5, Humidity: 10, Nutrient: 15})
	c.Assert(w.Grid().At(2, 2).Nutrient, qt.Equals, DefaultConfig().Environment.Nutrient)
	for _, cell := range w.Grid().Cells() {
		c.Assert(cell.Density, qt.Equals, 0.0)
	}
}

func TestStartIgnoresConfiguredSeedCell(t *testing.T) {
	c := qt.New(t)
	cfg := smallConfig(3, 3)
	cfg.Run.SeedRow = 40
	w := NewWithConfig(cfg)
	c.Assert(w.SelectSeed(1, 1), qt.IsNil)
	c.Assert(w.Start(), qt.IsNil)
	c.Assert(w.Grid().At(1, 1).Density, qt.Equals, cfg.Params.InitialDensity)
}

func TestRunStopsAfterMaxTicks(t *testing.T) {
	c := qt.New(t)
	w := New(5, 5)
	c.Assert(w.SelectSeed(2, 2), qt.IsNil)

	var ticks []int
	err := w.Run(context.Background(), RunOptions{MaxTicks: 4}, func(info TickInfo) error {
		ticks = append(ticks, info.Tick)
		c.Assert(info.Hours, qt.Equals, float64(info.Tick))
		c.Assert(info.Grid, qt.Equals, w.Grid())
		return nil
	})
	c.Assert(err, qt.IsNil)
	c.Assert(ticks, qt.DeepEquals, []int{1, 2, 3, 4})
	c.Assert(w.Running(), qt.IsFalse)
}

func TestRunHonoursCancellation(t *testing.T) {
	c := qt.New(t)
	w := New(5, 5)
	c.Assert(w.SelectSeed(2, 2), qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	err := w.Run(ctx, RunOptions{}, func(info TickInfo) error {
		if info.Tick == 3 {
			cancel()
		}
		return nil
	})
	c.Assert(err, qt.ErrorIs, context.Canceled)
	c.Assert(w.Tick(), qt.Equals, 3)
}

func TestRunPacesTicksAndPropagatesErrors(t *testing.T) {
	c := qt.New(t)
	w := New(5, 5)
	c.Assert(w.SelectSeed(2, 2), qt.IsNil)

	stop := errors.New("stop")
	err := w.Run(context.Background(), RunOptions{TickInterval: time.Millisecond}, func(info TickInfo) error {
		if info.Tick == 2 {
			return stop
		}
		return nil
	})
	c.Assert(err, qt.Equals, stop)
	c.Assert(w.Tick(), qt.Equals, 2)
}

func TestRunRefusesToStart(t *testing.T) {
	c := qt.New(t)
	w := New(5, 5)
	called := false
	err := w.Run(context.Background(), RunOptions{MaxTicks: 1}, func(TickInfo) error {
		called = true
		return nil
	})
	c.Assert(err, qt.ErrorIs, ErrNoSeed)
	c.Assert(called, qt.IsFalse)
}
