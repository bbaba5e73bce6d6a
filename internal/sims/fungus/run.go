package fungus

import (
	"context"
	"time"
)

// RunOptions controls Run.
type RunOptions struct {
	MaxTicks     int           // 0 runs until ctx is done
	TickInterval time.Duration // 0 steps as fast as possible
}

// TickInfo describes the state after a completed tick.
type TickInfo struct {
	Tick  int
	Hours float64
	Grid  *Grid // valid until the next tick
}

// Run starts the world and advances it once per tick interval until
// MaxTicks is reached, ctx is done or onTick returns an error. Halting
// between ticks leaves no partial state. The world is stopped on return.
func (w *World) Run(ctx context.Context, opts RunOptions, onTick func(TickInfo) error) error {
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	var tick <-chan time.Time
	if opts.TickInterval > 0 {
		ticker := time.NewTicker(opts.TickInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for n := 0; opts.MaxTicks <= 0 || n < opts.MaxTicks; n++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		w.Step()
		if err := w.Err(); err != nil {
			return err
		}
		if onTick != nil {
			if err := onTick(TickInfo{Tick: w.tick, Hours: w.hours, Grid: w.curr}); err != nil {
				return err
			}
		}
	}
	return nil
}
