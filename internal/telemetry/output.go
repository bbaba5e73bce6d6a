package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"mycelium/internal/sims/fungus"

	"github.com/gocarina/gocsv"
)

// Output writes run artifacts into a directory: the configuration, the
// starting environment and one CSV row per recorded tick.
type Output struct {
	dir       string
	ticksFile *os.File

	headerWritten bool
}

// NewOutput creates dir and opens ticks.csv inside it. An empty dir
// disables output and returns a nil *Output, whose methods are no-ops.
func NewOutput(dir string) (*Output, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "ticks.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating ticks.csv: %w", err)
	}
	return &Output{dir: dir, ticksFile: f}, nil
}

// WriteConfig saves cfg as config.yaml.
func (o *Output) WriteConfig(cfg fungus.Config) error {
	if o == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(o.dir, "config.yaml"))
}

// WriteEnvironment saves the world's environment layers as environment.csv.
func (o *Output) WriteEnvironment(w *fungus.World) error {
	if o == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(o.dir, "environment.csv"))
	if err != nil {
		return fmt.Errorf("creating environment.csv: %w", err)
	}
	if err := w.ExportEnvironment(f); err != nil {
		f.Close()
		return fmt.Errorf("writing environment: %w", err)
	}
	return f.Close()
}

// WriteTick appends one row to ticks.csv.
func (o *Output) WriteTick(s TickStats) error {
	if o == nil {
		return nil
	}
	records := []TickStats{s}
	if !o.headerWritten {
		if err := gocsv.Marshal(records, o.ticksFile); err != nil {
			return fmt.Errorf("writing ticks: %w", err)
		}
		o.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, o.ticksFile); err != nil {
		return fmt.Errorf("writing ticks: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (o *Output) Dir() string {
	if o == nil {
		return ""
	}
	return o.dir
}

// Close closes ticks.csv.
func (o *Output) Close() error {
	if o == nil || o.ticksFile == nil {
		return nil
	}
	return o.ticksFile.Close()
}
