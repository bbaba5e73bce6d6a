package app

import (
	"fmt"
	"os"

	"mycelium/internal/core"
	"mycelium/internal/sims/fungus"
)

// NewWorld resolves the configured simulation through the registry and
// prepares it for the viewer. An environment file becomes the state the
// world returns to on reset.
func NewWorld(cfg *Config) (*fungus.World, error) {
	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		return nil, fmt.Errorf("unknown sim %q", cfg.Sim)
	}
	kv, err := cfg.Overrides.Map()
	if err != nil {
		return nil, err
	}
	if cfg.ConfigFile != "" {
		kv[fungus.ConfigKey] = cfg.ConfigFile
	}
	sim, err := factory(kv)
	if err != nil {
		return nil, err
	}
	world, ok := sim.(*fungus.World)
	if !ok {
		return nil, fmt.Errorf("sim %q cannot be shown by this viewer", cfg.Sim)
	}

	world.Reset(cfg.Seed)
	if cfg.EnvFile == "" {
		return world, nil
	}
	f, err := os.Open(cfg.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("opening environment: %w", err)
	}
	defer f.Close()
	if _, err := world.LoadEnvironment(f); err != nil {
		return nil, err
	}
	world.KeepEnvironment()
	return world, nil
}
