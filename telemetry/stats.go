// Package telemetry turns finished epochs into statistics, CSV files and logs.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/polymini/sim"
)

// EpochStats summarises one species over one epoch.
type EpochStats struct {
	Epoch      int    `csv:"epoch"`
	Species    string `csv:"species"`
	Generation int    `csv:"generation"`
	Size       int    `csv:"size"`
	Steps      int    `csv:"steps"`

	// Weighted fitness distribution
	FitnessMean float64 `csv:"fitness_mean"`
	FitnessStd  float64 `csv:"fitness_std"`
	FitnessMin  float64 `csv:"fitness_min"`
	FitnessP10  float64 `csv:"fitness_p10"`
	FitnessP50  float64 `csv:"fitness_p50"`
	FitnessP90  float64 `csv:"fitness_p90"`
	FitnessMax  float64 `csv:"fitness_max"`

	RawMean      float64 `csv:"raw_mean"`
	SegmentsMean float64 `csv:"segments_mean"`

	BestID     uint64 `csv:"best_id"`
	BestGenome string `csv:"best_genome"`
}

// IndividualRecord is one individual's score in one epoch.
type IndividualRecord struct {
	Epoch    int     `csv:"epoch"`
	Species  string  `csv:"species"`
	ID       uint64  `csv:"id"`
	Fitness  float64 `csv:"fitness"`
	Raw      float64 `csv:"raw"`
	Segments int     `csv:"segments"`
	Width    int     `csv:"width"`
	Height   int     `csv:"height"`
	Genome   string  `csv:"genome"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFitnessStats calculates mean, sample std, and percentiles.
func ComputeFitnessStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}
	if n == 1 {
		return values[0], 0, values[0], values[0], values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	return mean, std, p10, p50, p90
}

// ComputeEpochStats summarises every species in a report.
func ComputeEpochStats(r sim.EpochReport) []EpochStats {
	out := make([]EpochStats, 0, len(r.Results))
	for _, res := range r.Results {
		s := EpochStats{
			Epoch:      r.Epoch,
			Species:    res.Species,
			Generation: res.Generation,
			Size:       len(res.Scored),
			Steps:      r.Steps,
		}
		if len(res.Scored) == 0 {
			out = append(out, s)
			continue
		}

		fitness := make([]float64, len(res.Scored))
		segments := make([]float64, len(res.Scored))
		for i, sc := range res.Scored {
			fitness[i] = sc.Fitness
			segments[i] = float64(sc.Individual.Morphology().Len())
		}
		s.FitnessMean, s.FitnessStd, s.FitnessP10, s.FitnessP50, s.FitnessP90 = ComputeFitnessStats(fitness)
		s.FitnessMin = floats.Min(fitness)
		s.FitnessMax = floats.Max(fitness)
		s.RawMean = stat.Mean(res.Raw, nil)
		s.SegmentsMean = stat.Mean(segments, nil)

		best := res.Scored[floats.MaxIdx(fitness)].Individual
		s.BestID = best.ID()
		s.BestGenome = best.Genome().Hex()

		out = append(out, s)
	}
	return out
}

// IndividualRecords flattens every scored individual in a report.
func IndividualRecords(r sim.EpochReport) []IndividualRecord {
	var out []IndividualRecord
	for _, res := range r.Results {
		for i, sc := range res.Scored {
			ind := sc.Individual
			w, h := ind.Morphology().Dimensions()
			out = append(out, IndividualRecord{
				Epoch:    r.Epoch,
				Species:  res.Species,
				ID:       ind.ID(),
				Fitness:  sc.Fitness,
				Raw:      res.Raw[i],
				Segments: ind.Morphology().Len(),
				Width:    w,
				Height:   h,
				Genome:   ind.Genome().Hex(),
			})
		}
	}
	return out
}

// LogValue implements slog.LogValuer for structured logging.
func (s EpochStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("epoch", s.Epoch),
		slog.String("species", s.Species),
		slog.Int("generation", s.Generation),
		slog.Int("size", s.Size),
		slog.Float64("fitness_mean", s.FitnessMean),
		slog.Float64("fitness_std", s.FitnessStd),
		slog.Float64("fitness_p50", s.FitnessP50),
		slog.Float64("fitness_max", s.FitnessMax),
		slog.Float64("raw_mean", s.RawMean),
		slog.Float64("segments_mean", s.SegmentsMean),
		slog.Uint64("best_id", s.BestID),
	)
}

// LogStats logs the epoch stats using slog.
func (s EpochStats) LogStats() {
	slog.Info("epoch", "stats", s)
}
