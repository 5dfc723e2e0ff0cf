package telemetry

import (
	"encoding/json"
	"sort"

	"github.com/pthm-cable/polymini/control"
	"github.com/pthm-cable/polymini/sim"
)

// HallEntry records one high-scoring individual.
type HallEntry struct {
	ID      uint64               `json:"id"`
	Epoch   int                  `json:"epoch"`
	Species string               `json:"species"`
	Fitness float64              `json:"fitness"`
	Genome  string               `json:"genome"`
	Weights control.BrainWeights `json:"brain"`
}

// HallOfFame keeps the best individuals seen so far, one hall per species.
type HallOfFame struct {
	halls   map[string][]HallEntry
	maxSize int
}

// NewHallOfFame creates a hall of fame with the given capacity per species.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		halls:   make(map[string][]HallEntry),
		maxSize: maxSize,
	}
}

// Consider offers every scored individual in a report to the halls.
// Returns the number of entries added.
func (hof *HallOfFame) Consider(r sim.EpochReport) int {
	added := 0
	for _, res := range r.Results {
		for _, sc := range res.Scored {
			ind := sc.Individual
			entry := HallEntry{
				ID:      ind.ID(),
				Epoch:   r.Epoch,
				Species: res.Species,
				Fitness: sc.Fitness,
				Genome:  ind.Genome().Hex(),
				Weights: ind.Control().Brain().MarshalWeights(),
			}
			var ok bool
			hof.halls[res.Species], ok = hof.insertEntry(hof.halls[res.Species], entry)
			if ok {
				added++
			}
		}
	}
	return added
}

// insertEntry adds an entry to the hall, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) ([]HallEntry, bool) {
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall, false
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	return hall, true
}

// Entries returns the hall for a species, best first.
func (hof *HallOfFame) Entries(species string) []HallEntry {
	return hof.halls[species]
}

// Size returns the number of entries for a species.
func (hof *HallOfFame) Size(species string) int {
	return len(hof.halls[species])
}

// TopFitness returns the highest fitness in a species' hall, or 0 if empty.
func (hof *HallOfFame) TopFitness(species string) float64 {
	hall := hof.halls[species]
	if len(hall) == 0 {
		return 0
	}
	return hall[0].Fitness
}

// MarshalJSON serializes the halls keyed by species name.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.halls, "", "  ")
}
