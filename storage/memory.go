package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryStore keeps everything in maps. It is the default backend.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]Run
	epochs      map[string][]EpochRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]Run)
	s.epochs = make(map[string][]EpochRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

// SaveEpoch replaces any record with the same run, epoch and species.
func (s *MemoryStore) SaveEpoch(_ context.Context, rec EpochRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	recs := s.epochs[rec.RunID]
	for i, r := range recs {
		if r.Epoch == rec.Epoch && r.Species == rec.Species {
			recs[i] = rec
			return nil
		}
	}
	s.epochs[rec.RunID] = append(recs, rec)
	return nil
}

// ListEpochs returns a run's records ordered by epoch, then species.
func (s *MemoryStore) ListEpochs(_ context.Context, runID string) ([]EpochRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]EpochRecord(nil), s.epochs[runID]...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Epoch != out[j].Epoch {
			return out[i].Epoch < out[j].Epoch
		}
		return out[i].Species < out[j].Species
	})
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
