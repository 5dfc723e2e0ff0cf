package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/polymini/config"
	"github.com/pthm-cable/polymini/evaluation"
	"github.com/pthm-cable/polymini/evolve"
	"github.com/pthm-cable/polymini/individual"
	"github.com/pthm-cable/polymini/snapshot"
	"github.com/pthm-cable/polymini/species"
)

// EpochReport is handed to every Recorder when an epoch finishes.
type EpochReport struct {
	Epoch    int
	Steps    int
	Results  []Result
	Snapshot map[string]any // full projection taken before the species advanced
}

// Recorder receives finished epochs.
type Recorder interface {
	RecordEpoch(ctx context.Context, r EpochReport) error
}

// Simulation owns the identity generator, the random source and the current epoch.
type Simulation struct {
	cfg       *config.Config
	rng       *rand.Rand
	ids       *individual.Counter
	epoch     *Epoch
	epochs    int
	recorders []Recorder
}

// New creates a simulation with an empty first epoch. Call Seed to populate it.
func New(cfg *config.Config, rng *rand.Rand) *Simulation {
	s := &Simulation{
		cfg: cfg,
		rng: rng,
		ids: individual.NewCounter(0),
	}
	s.epoch = NewEpoch(0, NewEnvironment(EnvironmentParamsFromConfig(cfg), rng), cfg.Simulation.MaxSteps, rng)
	return s
}

// EnvironmentParamsFromConfig builds environment parameters from cfg.
func EnvironmentParamsFromConfig(cfg *config.Config) EnvironmentParams {
	return EnvironmentParams{
		Width:         cfg.Environment.Width,
		Height:        cfg.Environment.Height,
		Slots:         cfg.Simulation.SpeciesSlots,
		Sensors:       cfg.Derived.Sensors,
		SpawnAttempts: cfg.Simulation.SpawnAttempts,
		GridLen:       cfg.Thermal.GridLen,
		Sources:       cfg.Thermal.Sources,
		Intensity:     float32(cfg.Thermal.Intensity),
		NoiseScale:    cfg.Thermal.NoiseScale,
	}
}

// AddRecorder registers a sink for finished epochs.
func (s *Simulation) AddRecorder(r Recorder) {
	s.recorders = append(s.recorders, r)
}

// SetTimer installs a phase timer on the current and every later epoch.
func (s *Simulation) SetTimer(t PhaseTimer) {
	s.epoch.SetTimer(t)
}

// Epoch returns the current epoch.
func (s *Simulation) Epoch() *Epoch {
	return s.epoch
}

// Epochs returns how many epochs have finished.
func (s *Simulation) Epochs() int {
	return s.epochs
}

// IDs returns the identity generator.
func (s *Simulation) IDs() individual.IDGenerator {
	return s.ids
}

// Seed creates every configured species with a random population and adds it
// to the current epoch. Species beyond the slot count are dropped by the epoch.
func (s *Simulation) Seed() error {
	cfg := s.cfg
	tmpl := individual.Template{
		GenomeLength: cfg.Genome.Length,
		Sensors:      cfg.Derived.Sensors,
		Actuators:    cfg.Derived.Actuators,
		Hidden:       cfg.Control.Hidden,
		Threshold:    float32(cfg.Control.Threshold),
	}

	selector, err := evolve.NewSelector(cfg.Evolution.Selector, cfg.Evolution.Elite, cfg.Evolution.TournamentSize)
	if err != nil {
		return fmt.Errorf("seeding: %w", err)
	}
	params := evolve.Params{
		Elite:         cfg.Evolution.Elite,
		CrossoverRate: cfg.Evolution.CrossoverRate,
		Selector:      selector,
		Mutation: individual.MutationParams{
			GeneRate:   cfg.Evolution.GeneMutationRate,
			WeightRate: float32(cfg.Evolution.WeightMutationRate),
			Sigma:      float32(cfg.Evolution.WeightSigma),
			BigRate:    float32(cfg.Evolution.BigMutationRate),
			BigSigma:   float32(cfg.Evolution.BigMutationSigma),
		},
	}

	for i, sc := range cfg.Species {
		derived := cfg.Derived.Species[i]
		pop := make([]*individual.Individual, sc.Size)
		for j := range pop {
			pop[j] = individual.Random(s.ids, s.rng, tmpl)
		}
		sp, err := species.New(sc.Name, pop, evolve.NewGeneticEvolver(s.ids, params), species.Scoring{
			Instincts:  derived.Instincts,
			Weights:    derived.Weights,
			Evaluators: derived.Evaluators,
			Params:     evaluation.Params{TargetTemperature: float32(sc.TargetTemperature)},
		})
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		if err := s.epoch.AddSpecies(sp); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	}

	slog.Info("seeded",
		"species", len(s.epoch.Species()),
		"sensors", len(tmpl.Sensors),
		"actuators", len(tmpl.Actuators),
		"genome_length", tmpl.GenomeLength,
	)
	return nil
}

// Step runs one tick, or finishes the epoch once it is done.
func (s *Simulation) Step(ctx context.Context) error {
	if !s.epoch.Done() {
		s.epoch.Step()
		return nil
	}
	return s.finishEpoch(ctx)
}

// Run completes the given number of epochs, or runs until ctx is cancelled
// when epochs is 0.
func (s *Simulation) Run(ctx context.Context, epochs int) error {
	for epochs == 0 || s.epochs < epochs {
		if err := s.epoch.Run(ctx); err != nil {
			return err
		}
		if err := s.finishEpoch(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulation) finishEpoch(ctx context.Context) error {
	finished := s.epoch
	snap := finished.Snapshot(snapshot.All)
	next, results, err := finished.Advance(s.rng)
	if err != nil {
		return fmt.Errorf("advancing epoch %d: %w", finished.Number(), err)
	}

	report := EpochReport{Epoch: finished.Number(), Steps: finished.Steps(), Results: results, Snapshot: snap}
	for _, r := range s.recorders {
		if err := r.RecordEpoch(ctx, report); err != nil {
			return fmt.Errorf("recording epoch %d: %w", finished.Number(), err)
		}
	}

	slog.Debug("epoch finished", "epoch", finished.Number(), "steps", finished.Steps(), "species", len(results))
	s.epoch = next
	s.epochs++
	return nil
}
