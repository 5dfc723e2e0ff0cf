// Package storage persists runs and their per-species epoch summaries.
package storage

import (
	"context"
	"fmt"
	"time"
)

// Run identifies one simulation run.
type Run struct {
	ID      string
	Started time.Time
	Seed    int64
	Config  string // YAML of the effective configuration
}

// EpochRecord summarises one species over one epoch of a run.
type EpochRecord struct {
	RunID       string
	Epoch       int
	Species     string
	Generation  int
	Size        int
	FitnessMean float64
	FitnessMax  float64
	RawMean     float64
	BestID      uint64
	BestGenome  string
}

// Store defines persistence operations for runs and epoch records.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	SaveEpoch(ctx context.Context, rec EpochRecord) error
	ListEpochs(ctx context.Context, runID string) ([]EpochRecord, error)
	Close() error
}

// NewStore builds a store for driver: "memory", "sqlite" or "none" (nil store).
func NewStore(driver, path string) (Store, error) {
	switch driver {
	case "none":
		return nil, nil
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", driver)
	}
}
