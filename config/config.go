// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/polymini/control"
	"github.com/pthm-cable/polymini/evaluation"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation  SimulationConfig  `yaml:"simulation"`
	Environment EnvironmentConfig `yaml:"environment"`
	Thermal     ThermalConfig     `yaml:"thermal"`
	Genome      GenomeConfig      `yaml:"genome"`
	Control     ControlConfig     `yaml:"control"`
	Evolution   EvolutionConfig   `yaml:"evolution"`
	Species     []SpeciesConfig   `yaml:"species"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Storage     StorageConfig     `yaml:"storage"`
	Tune        TuneConfig        `yaml:"tune"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds run-level parameters.
type SimulationConfig struct {
	Seed          int64 `yaml:"seed"`
	MaxSteps      int   `yaml:"max_steps"`      // ticks per epoch
	Epochs        int   `yaml:"epochs"`         // epochs per run (0 = until cancelled)
	SpeciesSlots  int   `yaml:"species_slots"`  // species an epoch accepts before it is full
	SpawnAttempts int   `yaml:"spawn_attempts"` // random placements tried before scanning
}

// EnvironmentConfig holds the physical world parameters.
type EnvironmentConfig struct {
	Width          int      `yaml:"width"`
	Height         int      `yaml:"height"`
	DefaultSensors []string `yaml:"default_sensors"`
}

// ThermalConfig holds heat field parameters.
type ThermalConfig struct {
	GridLen    int     `yaml:"grid_len"`
	Sources    int     `yaml:"sources"`     // static heat sources per environment
	Intensity  float64 `yaml:"intensity"`   // peak source intensity
	NoiseScale float64 `yaml:"noise_scale"` // OpenSimplex frequency for source intensity
}

// GenomeConfig holds genome parameters.
type GenomeConfig struct {
	Length int `yaml:"length"`
}

// ControlConfig holds decision network parameters.
type ControlConfig struct {
	Hidden    int      `yaml:"hidden"`
	Threshold float64  `yaml:"threshold"`
	Actuators []string `yaml:"actuators"`
}

// EvolutionConfig holds genetic algorithm parameters.
type EvolutionConfig struct {
	Elite              int     `yaml:"elite"`
	CrossoverRate      float64 `yaml:"crossover_rate"`
	Selector           string  `yaml:"selector"`
	TournamentSize     int     `yaml:"tournament_size"`
	GeneMutationRate   float64 `yaml:"gene_mutation_rate"`   // per-bit flip probability
	WeightMutationRate float64 `yaml:"weight_mutation_rate"` // per-weight probability
	WeightSigma        float64 `yaml:"weight_sigma"`
	BigMutationRate    float64 `yaml:"big_mutation_rate"`
	BigMutationSigma   float64 `yaml:"big_mutation_sigma"`
}

// SpeciesConfig defines one seeded species.
type SpeciesConfig struct {
	Name              string             `yaml:"name"`
	Size              int                `yaml:"size"`
	Instincts         []string           `yaml:"instincts"`
	Weights           map[string]float64 `yaml:"weights"`
	Evaluators        []string           `yaml:"evaluators"`
	TargetTemperature float64            `yaml:"target_temperature"`
}

// TelemetryConfig holds output parameters.
type TelemetryConfig struct {
	OutputDir       string `yaml:"output_dir"` // empty disables CSV output
	LogIndividuals  bool   `yaml:"log_individuals"`
	LogEveryNEpochs int    `yaml:"log_every_n_epochs"`
}

// StorageConfig selects where epoch results are persisted.
type StorageConfig struct {
	Driver string `yaml:"driver"` // none, memory, sqlite
	Path   string `yaml:"path"`
}

// TuneConfig holds CMA-ES tuner parameters.
type TuneConfig struct {
	Iterations int     `yaml:"iterations"`
	Population int     `yaml:"population"`
	StepSize   float64 `yaml:"step_size"`
	Epochs     int     `yaml:"epochs"`      // epochs simulated per candidate
	LastEpochs int     `yaml:"last_epochs"` // trailing epochs averaged into the score
}

// SpeciesDerived holds the parsed tags of one species.
type SpeciesDerived struct {
	Instincts  []evaluation.Instinct
	Weights    map[evaluation.Instinct]float64
	Evaluators []evaluation.EvaluatorKind
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Sensors   []control.SensorTag
	Actuators []control.ActuatorTag
	Species   []SpeciesDerived // index-aligned with Config.Species
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Environment.Width <= 0 || c.Environment.Height <= 0:
		return fmt.Errorf("environment size %dx%d must be positive", c.Environment.Width, c.Environment.Height)
	case c.Simulation.MaxSteps <= 0:
		return fmt.Errorf("simulation.max_steps %d must be positive", c.Simulation.MaxSteps)
	case c.Simulation.SpeciesSlots <= 0:
		return fmt.Errorf("simulation.species_slots %d must be positive", c.Simulation.SpeciesSlots)
	case c.Thermal.GridLen <= 0:
		return fmt.Errorf("thermal.grid_len %d must be positive", c.Thermal.GridLen)
	case c.Genome.Length <= 0:
		return fmt.Errorf("genome.length %d must be positive", c.Genome.Length)
	}
	for i, s := range c.Species {
		if s.Size <= 0 {
			return fmt.Errorf("species[%d] %q: size %d must be positive", i, s.Name, s.Size)
		}
	}
	return nil
}

// computeDerived parses tag names. Unknown tags are skipped with a warning.
func (c *Config) computeDerived() {
	c.Derived.Sensors = c.Derived.Sensors[:0]
	for _, name := range c.Environment.DefaultSensors {
		tag, ok := control.ParseSensor(name)
		if !ok {
			slog.Warn("skipping unknown sensor", "tag", name)
			continue
		}
		c.Derived.Sensors = append(c.Derived.Sensors, tag)
	}

	c.Derived.Actuators = c.Derived.Actuators[:0]
	for _, name := range c.Control.Actuators {
		tag, ok := control.ParseActuator(name)
		if !ok {
			slog.Warn("skipping unknown actuator", "tag", name)
			continue
		}
		c.Derived.Actuators = append(c.Derived.Actuators, tag)
	}
	if len(c.Derived.Actuators) == 0 {
		c.Derived.Actuators = append(c.Derived.Actuators, control.AllActuators...)
	}

	c.Derived.Species = make([]SpeciesDerived, len(c.Species))
	for i, s := range c.Species {
		d := SpeciesDerived{Weights: make(map[evaluation.Instinct]float64, len(s.Weights))}
		for _, name := range s.Instincts {
			inst, ok := evaluation.ParseInstinct(name)
			if !ok {
				slog.Warn("skipping unknown instinct", "species", s.Name, "tag", name)
				continue
			}
			d.Instincts = append(d.Instincts, inst)
		}
		for name, w := range s.Weights {
			inst, ok := evaluation.ParseInstinct(name)
			if !ok {
				slog.Warn("skipping unknown instinct weight", "species", s.Name, "tag", name)
				continue
			}
			d.Weights[inst] = w
		}
		for _, name := range s.Evaluators {
			kind, ok := evaluation.ParseEvaluator(name)
			if !ok {
				slog.Warn("skipping unknown evaluator", "species", s.Name, "tag", name)
				continue
			}
			d.Evaluators = append(d.Evaluators, kind)
		}
		c.Derived.Species[i] = d
	}
}

// HasSensor reports whether the default sensor set includes tag.
func (c *Config) HasSensor(tag control.SensorTag) bool {
	for _, s := range c.Derived.Sensors {
		if s == tag {
			return true
		}
	}
	return false
}

// YAML renders the configuration as YAML.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	return string(data), nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
