// Package telemetry summarizes colony density per tick and records the
// summaries for later analysis.
package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TickStats summarizes the density field after one tick.
type TickStats struct {
	Tick  int     `csv:"tick"`
	Hours float64 `csv:"hours"`

	Colonized int     `csv:"colonized"` // cells with density > 0
	Saturated int     `csv:"saturated"` // cells at density 1
	Coverage  float64 `csv:"coverage"`  // colonized / total cells

	Mean  float64 `csv:"mean"`
	Std   float64 `csv:"std"`
	P50   float64 `csv:"p50"`
	P90   float64 `csv:"p90"`
	Max   float64 `csv:"max"`
	Total float64 `csv:"total"`
}

// Collector computes TickStats, reusing its scratch buffer between ticks.
type Collector struct {
	sorted []float64
}

// Collect summarizes densities. The input slice is not modified.
func (c *Collector) Collect(tick int, hours float64, densities []float64) TickStats {
	s := TickStats{Tick: tick, Hours: hours}
	n := len(densities)
	if n == 0 {
		return s
	}

	for _, d := range densities {
		if d > 0 {
			s.Colonized++
		}
		if d >= 1 {
			s.Saturated++
		}
	}
	s.Coverage = float64(s.Colonized) / float64(n)
	s.Total = floats.Sum(densities)
	s.Max = floats.Max(densities)

	if n > 1 {
		s.Mean, s.Std = stat.MeanStdDev(densities, nil)
	} else {
		s.Mean = densities[0]
	}

	c.sorted = append(c.sorted[:0], densities...)
	slices.Sort(c.sorted)
	s.P50 = stat.Quantile(0.5, stat.Empirical, c.sorted, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, c.sorted, nil)
	return s
}

// Collect summarizes densities with a throwaway Collector.
func Collect(tick int, hours float64, densities []float64) TickStats {
	var c Collector
	return c.Collect(tick, hours, densities)
}

// LogValue implements slog.LogValuer for structured logging.
func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", s.Tick),
		slog.Float64("hours", s.Hours),
		slog.Int("colonized", s.Colonized),
		slog.Int("saturated", s.Saturated),
		slog.Float64("coverage", s.Coverage),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("max", s.Max),
		slog.Float64("total", s.Total),
	)
}
