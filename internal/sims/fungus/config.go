package fungus

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// EnvironmentConfig sets the environment every cell starts with on Reset.
type EnvironmentConfig struct {
	Temperature float64 `yaml:"temperature"`
	Humidity    float64 `yaml:"humidity"`
	Nutrient    float64 `yaml:"nutrient"`
	Randomize   bool    `yaml:"randomize"` // fill with random values instead
}

// Params holds the tunable constants of the density update.
type Params struct {
	Diffusion          float64 `yaml:"diffusion"`
	RMax               float64 `yaml:"r_max"`
	DT                 float64 `yaml:"dt"`
	ViabilityThreshold float64 `yaml:"viability_threshold"`
	DiffusionScale     float64 `yaml:"diffusion_scale"`
	InitialDensity     float64 `yaml:"initial_density"`
}

// RunConfig controls the tick loop driven by the command-line tools.
type RunConfig struct {
	SeedRow        int `yaml:"seed_row"`
	SeedCol        int `yaml:"seed_col"`
	TickIntervalMS int `yaml:"tick_interval_ms"`
	MaxTicks       int `yaml:"max_ticks"`
	LogEvery       int `yaml:"log_every"`
}

// Config controls the fungus simulation.
type Config struct {
	Rows int   `yaml:"rows"`
	Cols int   `yaml:"cols"`
	Seed int64 `yaml:"seed"`

	Environment EnvironmentConfig `yaml:"environment"`
	Params      Params            `yaml:"params"`
	Weights     Weights           `yaml:"weights"`
	Run         RunConfig         `yaml:"run"`
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() Config {
	var c Config
	if err := yaml.Unmarshal(defaultsYAML, &c); err != nil {
		panic(fmt.Sprintf("fungus: parsing embedded defaults: %v", err))
	}
	return c
}

// LoadConfig reads a YAML file over the embedded defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parsing config file: %w", err)
	}
	return c, nil
}

// WriteYAML saves the configuration to path.
func (c Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Rule builds the density update rule from the configuration.
func (c Config) Rule() Rule {
	return Rule{
		Diffusion:      c.Params.Diffusion,
		RMax:           c.Params.RMax,
		DT:             c.Params.DT,
		Threshold:      c.Params.ViabilityThreshold,
		DiffusionScale: c.Params.DiffusionScale,
		Weights:        c.Weights,
	}
}

// SeedCell resolves the configured seed coordinate; -1 selects the center.
func (c Config) SeedCell() (row, col int) {
	row, col = c.Run.SeedRow, c.Run.SeedCol
	if row == -1 {
		row = c.Rows / 2
	}
	if col == -1 {
		col = c.Cols / 2
	}
	return row, col
}

// TickInterval returns the wall-clock time between ticks.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.Run.TickIntervalMS) * time.Millisecond
}

// Validate reports every problem that must be fixed before stepping.
func (c Config) Validate() error {
	var errs []error
	if c.Rows <= 0 || c.Cols <= 0 {
		errs = append(errs, fmt.Errorf("%w: grid dimensions %dx%d must be positive", ErrInvalidConfig, c.Rows, c.Cols))
	}
	if err := c.Rule().Validate(); err != nil {
		errs = append(errs, err)
	}
	if !(c.Params.InitialDensity > 0 && c.Params.InitialDensity <= 1) {
		errs = append(errs, fmt.Errorf("%w: initial density %v outside (0,1]", ErrInvalidConfig, c.Params.InitialDensity))
	}
	if !c.Environment.Randomize {
		if err := validateEnvironment(c.Environment.Temperature, c.Environment.Humidity, c.Environment.Nutrient); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
		}
	}
	if c.Run.TickIntervalMS < 0 {
		errs = append(errs, fmt.Errorf("%w: tick interval %dms must not be negative", ErrInvalidConfig, c.Run.TickIntervalMS))
	}
	if c.Run.MaxTicks < 0 {
		errs = append(errs, fmt.Errorf("%w: max ticks %d must not be negative", ErrInvalidConfig, c.Run.MaxTicks))
	}
	return errors.Join(errs...)
}

// ValidateSeed checks the configured seed coordinate used by the headless
// tools. Seeds picked with World.SelectSeed are checked there instead.
func (c Config) ValidateSeed() error {
	row, col := c.SeedCell()
	if row < 0 || row >= c.Rows || col < 0 || col >= c.Cols {
		return fmt.Errorf("%w: seed cell (%d,%d) outside %dx%d grid", ErrInvalidConfig, row, col, c.Rows, c.Cols)
	}
	return nil
}

// ConfigKey names the map entry ConfigFromMap reads as a YAML file path.
const ConfigKey = "config"

// ConfigFromMap builds a config from flag-style key/value pairs. The
// ConfigKey entry, when present, names a YAML file loaded over the defaults
// before the remaining pairs are applied.
func ConfigFromMap(kv map[string]string) (Config, error) {
	c, err := LoadConfig(kv[ConfigKey])
	if err != nil {
		return c, err
	}
	overrides := make(map[string]string, len(kv))
	for k, v := range kv {
		if k != ConfigKey {
			overrides[k] = v
		}
	}
	if err := c.Apply(overrides); err != nil {
		return c, fmt.Errorf("applying overrides: %w", err)
	}
	return c, nil
}

// Apply overrides fields from key/value pairs and reports unknown keys and
// unparseable values. Valid pairs are applied even when others fail.
func (c *Config) Apply(kv map[string]string) error {
	var errs []error
	for key, v := range kv {
		if err := c.set(key, v); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) set(key, v string) error {
	intField := map[string]*int{
		"rows":             &c.Rows,
		"cols":             &c.Cols,
		"w":                &c.Cols,
		"h":                &c.Rows,
		"seed_row":         &c.Run.SeedRow,
		"seed_col":         &c.Run.SeedCol,
		"tick_interval_ms": &c.Run.TickIntervalMS,
		"max_ticks":        &c.Run.MaxTicks,
		"log_every":        &c.Run.LogEvery,
	}
	floatField := map[string]*float64{
		"temperature":         &c.Environment.Temperature,
		"humidity":            &c.Environment.Humidity,
		"nutrient":            &c.Environment.Nutrient,
		"diffusion":           &c.Params.Diffusion,
		"r_max":               &c.Params.RMax,
		"dt":                  &c.Params.DT,
		"viability_threshold": &c.Params.ViabilityThreshold,
		"diffusion_scale":     &c.Params.DiffusionScale,
		"initial_density":     &c.Params.InitialDensity,
		"weight_temperature":  &c.Weights.Temperature,
		"weight_humidity":     &c.Weights.Humidity,
		"weight_nutrient":     &c.Weights.Nutrient,
	}

	switch key {
	case "seed":
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.Seed = parsed
		return nil
	case "randomize":
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Environment.Randomize = parsed
		return nil
	}
	if p, ok := intField[key]; ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	if p, ok := floatField[key]; ok {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	return errors.New("unknown parameter")
}
