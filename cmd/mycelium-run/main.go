// Command mycelium-run steps a fungal colony without a window, logging
// density statistics as JSON and optionally writing CSV telemetry.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mycelium/internal/app"
	"mycelium/internal/sims/fungus"
	"mycelium/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("mycelium-run", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config.yaml (empty = use defaults)")
	envPath := fs.String("env", "", "Environment CSV with row,col,temperature,humidity,nutrient columns")
	outputDir := fs.String("output-dir", "", "Output directory for ticks.csv and config snapshot")
	ticks := fs.Int("ticks", -1, "Stop after N ticks (-1 = use config, 0 = unlimited)")
	interval := fs.Duration("interval", -1, "Wall-clock time between ticks (-1 = use config, 0 = no pacing)")
	rngSeed := fs.Int64("rng-seed", 0, "Seed for random environment fills (0 = use config)")
	randomEnv := fs.Bool("random-env", false, "Fill the environment with random values")
	printParams := fs.Bool("print-params", false, "Print the resolved parameters and exit")
	var overrides app.KVList
	fs.Var(&overrides, "set", "parameter override in key=value form (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(stdout, nil))

	cfg, err := fungus.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	kv, err := overrides.Map()
	if err != nil {
		return err
	}
	if err := cfg.Apply(kv); err != nil {
		return fmt.Errorf("applying overrides: %w", err)
	}
	if *ticks >= 0 {
		cfg.Run.MaxTicks = *ticks
	}
	if *interval >= 0 {
		if *interval%time.Millisecond != 0 {
			return fmt.Errorf("interval %s is not a whole number of milliseconds", *interval)
		}
		cfg.Run.TickIntervalMS = int(interval.Milliseconds())
	}
	if *randomEnv {
		cfg.Environment.Randomize = true
	}
	if err := errors.Join(cfg.Validate(), cfg.ValidateSeed()); err != nil {
		return fmt.Errorf("refusing to start: %w", err)
	}

	world := fungus.NewWithConfig(cfg)
	world.Reset(*rngSeed)
	if *envPath != "" {
		n, err := loadEnvironment(world, *envPath)
		if err != nil {
			return err
		}
		logger.Info("environment loaded", "path", *envPath, "cells", n)
	}

	if *printParams {
		printParameters(stdout, world)
		return nil
	}

	row, col := cfg.SeedCell()
	if err := world.SelectSeed(row, col); err != nil {
		return err
	}
	// Refuse before any output exists; Run resumes the started world.
	if err := world.Start(); err != nil {
		return fmt.Errorf("refusing to start: %w", err)
	}

	out, err := telemetry.NewOutput(*outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}
	if err := out.WriteEnvironment(world); err != nil {
		return err
	}

	logger.Info("starting simulation",
		"rows", cfg.Rows,
		"cols", cfg.Cols,
		"seed_row", row,
		"seed_col", col,
		"max_ticks", cfg.Run.MaxTicks,
		"tick_interval", cfg.TickInterval().String(),
		"output_dir", out.Dir(),
	)

	var (
		collector telemetry.Collector
		densities []float64
		last      telemetry.TickStats
	)
	start := time.Now()
	opts := fungus.RunOptions{MaxTicks: cfg.Run.MaxTicks, TickInterval: cfg.TickInterval()}
	err = world.Run(ctx, opts, func(info fungus.TickInfo) error {
		densities = world.Densities(densities)
		last = collector.Collect(info.Tick, info.Hours, densities)
		if err := out.WriteTick(last); err != nil {
			return err
		}
		if every := cfg.Run.LogEvery; every > 0 && info.Tick%every == 0 {
			logger.Info("tick", "stats", last)
		}
		return nil
	})
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("interrupted", "tick", world.Tick())
	case err != nil:
		return err
	}

	logger.Info("finished",
		"ticks", world.Tick(),
		"hours", world.Hours(),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
		"stats", last,
	)
	return nil
}

func loadEnvironment(world *fungus.World, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening environment: %w", err)
	}
	defer f.Close()
	return world.LoadEnvironment(f)
}

func printParameters(w io.Writer, world *fungus.World) {
	for _, group := range world.Parameters().Groups {
		fmt.Fprintf(w, "%s:\n", group.Name)
		for _, p := range group.Params {
			fmt.Fprintf(w, "  %-20s %s\n", p.Key, p.Value)
		}
	}
}
