// Command diffusion-sweep measures how fast a colony establishes itself
// across a grid of diffusion coefficients and time steps.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"mycelium/internal/sims/fungus"
	"mycelium/internal/telemetry"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"
)

type scenarioResult struct {
	Diffusion     float64 `csv:"diffusion"`
	DT            float64 `csv:"dt"`
	TicksToTarget int     `csv:"ticks_to_target"` // -1 when never reached
	Ticks         int     `csv:"ticks"`
	Hours         float64 `csv:"hours"`
	Coverage      float64 `csv:"coverage"`
	Mean          float64 `csv:"mean"`
	Saturated     int     `csv:"saturated"`
}

func (r scenarioResult) String() string {
	reached := "never"
	if r.TicksToTarget >= 0 {
		reached = strconv.Itoa(r.TicksToTarget)
	}
	return fmt.Sprintf("D=%.2f dt=%.2f target@%s coverage=%.3f mean=%.3f saturated=%d",
		r.Diffusion, r.DT, reached, r.Coverage, r.Mean, r.Saturated)
}

type floatList []float64

func (l *floatList) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (l *floatList) Set(value string) error {
	var out []float64
	for _, part := range strings.Split(value, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return err
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("diffusion-sweep", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config.yaml (empty = use defaults)")
	steps := fs.Int("steps", 200, "ticks to simulate per scenario")
	target := fs.Float64("target", 0.5, "mean density that counts as established")
	workers := fs.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	outPath := fs.String("out", "", "write every result as CSV to this file")
	diffusions := floatList{0.1, 0.25, 0.5, 0.75, 1}
	dts := floatList{0.5, 1, 2, 4}
	fs.Var(&diffusions, "diffusion", "comma-separated diffusion coefficients")
	fs.Var(&dts, "dt", "comma-separated time steps in hours")
	if err := fs.Parse(args); err != nil {
		return err
	}

	base, err := fungus.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Sweeping %d parameter sets (%d workers, %d steps)\n", len(diffusions)*len(dts), *workers, *steps)
	start := time.Now()
	results, err := sweep(ctx, base, diffusions, dts, *steps, *target, *workers)
	if err != nil {
		return err
	}

	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return err
		}
		if err := gocsv.Marshal(results, f); err != nil {
			f.Close()
			return fmt.Errorf("writing results: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	ranked := rank(results)
	fmt.Fprintf(stdout, "\nTop 5 results (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for i := 0; i < len(ranked) && i < 5; i++ {
		fmt.Fprintf(stdout, "%2d) %s\n", i+1, ranked[i])
	}
	return nil
}

// sweep runs one world per (diffusion, dt) pair. Results keep input order,
// diffusion-major.
func sweep(ctx context.Context, base fungus.Config, diffusions, dts []float64, steps int, target float64, workers int) ([]scenarioResult, error) {
	results := make([]scenarioResult, len(diffusions)*len(dts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, d := range diffusions {
		for j, dt := range dts {
			idx := i*len(dts) + j
			cfg := base
			cfg.Params.Diffusion = d
			cfg.Params.DT = dt
			g.Go(func() error {
				res, err := runScenario(ctx, cfg, steps, target)
				if err != nil {
					return fmt.Errorf("D=%v dt=%v: %w", d, dt, err)
				}
				results[idx] = res
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runScenario(ctx context.Context, cfg fungus.Config, steps int, target float64) (scenarioResult, error) {
	res := scenarioResult{Diffusion: cfg.Params.Diffusion, DT: cfg.Params.DT, TicksToTarget: -1}
	if err := cfg.Validate(); err != nil {
		return res, err
	}
	if err := cfg.ValidateSeed(); err != nil {
		return res, err
	}
	world := fungus.NewWithConfig(cfg)
	if err := world.SelectSeed(cfg.SeedCell()); err != nil {
		return res, err
	}

	var (
		collector telemetry.Collector
		densities []float64
		last      telemetry.TickStats
	)
	err := world.Run(ctx, fungus.RunOptions{MaxTicks: steps}, func(info fungus.TickInfo) error {
		densities = world.Densities(densities)
		last = collector.Collect(info.Tick, info.Hours, densities)
		if res.TicksToTarget < 0 && last.Mean >= target {
			res.TicksToTarget = info.Tick
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	res.Ticks = last.Tick
	res.Hours = last.Hours
	res.Coverage = last.Coverage
	res.Mean = last.Mean
	res.Saturated = last.Saturated
	return res, nil
}

// rank orders results by simulated hours to reach the target, unreached
// scenarios last by final coverage.
func rank(results []scenarioResult) []scenarioResult {
	ranked := append([]scenarioResult(nil), results...)
	hoursToTarget := func(r scenarioResult) float64 { return float64(r.TicksToTarget) * r.DT }
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		aHit, bHit := a.TicksToTarget >= 0, b.TicksToTarget >= 0
		switch {
		case aHit && bHit:
			return hoursToTarget(a) < hoursToTarget(b)
		case aHit != bHit:
			return aHit
		default:
			return a.Coverage > b.Coverage
		}
	})
	return ranked
}
