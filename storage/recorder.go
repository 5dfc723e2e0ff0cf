package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/polymini/sim"
	"github.com/pthm-cable/polymini/telemetry"
)

// Recorder is a sim.Recorder writing one EpochRecord per species to a Store.
type Recorder struct {
	store Store
	runID string
}

// StartRun registers a new run under a fresh identifier and returns a
// recorder bound to it.
func StartRun(ctx context.Context, store Store, seed int64, configYAML string) (*Recorder, error) {
	run := Run{
		ID:      uuid.NewString(),
		Started: time.Now(),
		Seed:    seed,
		Config:  configYAML,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return &Recorder{store: store, runID: run.ID}, nil
}

// RunID returns the identifier of the recorded run.
func (r *Recorder) RunID() string {
	return r.runID
}

// RecordEpoch implements sim.Recorder.
func (r *Recorder) RecordEpoch(ctx context.Context, rep sim.EpochReport) error {
	for _, s := range telemetry.ComputeEpochStats(rep) {
		rec := EpochRecord{
			RunID:       r.runID,
			Epoch:       s.Epoch,
			Species:     s.Species,
			Generation:  s.Generation,
			Size:        s.Size,
			FitnessMean: s.FitnessMean,
			FitnessMax:  s.FitnessMax,
			RawMean:     s.RawMean,
			BestID:      s.BestID,
			BestGenome:  s.BestGenome,
		}
		if err := r.store.SaveEpoch(ctx, rec); err != nil {
			return fmt.Errorf("saving %s epoch %d: %w", s.Species, s.Epoch, err)
		}
	}
	return nil
}
