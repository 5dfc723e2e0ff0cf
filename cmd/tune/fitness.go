package main

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/polymini/config"
	"github.com/pthm-cable/polymini/sim"
	"github.com/pthm-cable/polymini/telemetry"
)

// meanRecorder keeps the mean fitness of every species for every epoch.
type meanRecorder struct {
	means [][]float64 // [epoch][species]
}

func (m *meanRecorder) RecordEpoch(_ context.Context, r sim.EpochReport) error {
	stats := telemetry.ComputeEpochStats(r)
	row := make([]float64, len(stats))
	for i, s := range stats {
		row[i] = s.FitnessMean
	}
	m.means = append(m.means, row)
	return nil
}

// FitnessEvaluator runs short simulations and scores a parameter vector.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	baseConfig *config.Config
	epochs     int
	lastEpochs int

	bestScore float64
	best      []float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	epochs := max(baseCfg.Tune.Epochs, 1)
	return &FitnessEvaluator{
		params:     params,
		seeds:      seeds,
		baseConfig: baseCfg,
		epochs:     epochs,
		lastEpochs: min(max(baseCfg.Tune.LastEpochs, 1), epochs),
		bestScore:  math.Inf(1),
	}
}

// Best returns the best clamped parameter values and their score.
func (fe *FitnessEvaluator) Best() ([]float64, float64) {
	return fe.best, fe.bestScore
}

// copyConfig returns a config whose tunable fields can be changed without
// touching the base. Slices are shared and must stay read-only.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Simulation.Epochs = fe.epochs
	return &cfg
}

// Evaluate computes the score of raw parameter values (lower = better).
// The score is the negated mean species fitness over the trailing epochs,
// averaged across seeds. A run that fails scores +Inf.
func (fe *FitnessEvaluator) Evaluate(ctx context.Context, raw []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, raw)

	scores := make([]float64, 0, len(fe.seeds))
	for _, seed := range fe.seeds {
		score, err := fe.runSeed(ctx, cfg, seed)
		if err != nil {
			return math.Inf(1)
		}
		scores = append(scores, score)
	}

	score := -stat.Mean(scores, nil)
	if score < fe.bestScore {
		fe.bestScore = score
		fe.best = fe.params.Clamp(raw)
	}
	return score
}

func (fe *FitnessEvaluator) runSeed(ctx context.Context, cfg *config.Config, seed int64) (float64, error) {
	s := sim.New(cfg, rand.New(rand.NewSource(seed)))
	rec := &meanRecorder{}
	s.AddRecorder(rec)
	if err := s.Seed(); err != nil {
		return 0, err
	}
	if err := s.Run(ctx, fe.epochs); err != nil {
		return 0, err
	}

	var tail []float64
	for _, row := range rec.means[len(rec.means)-fe.lastEpochs:] {
		tail = append(tail, row...)
	}
	return stat.Mean(tail, nil), nil
}
