// Package evolve turns a scored population into the next generation.
package evolve

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/pthm-cable/polymini/individual"
)

// Scored pairs an individual with its weighted fitness.
type Scored struct {
	Individual *individual.Individual
	Fitness    float64
}

// Rank sorts a copy of pop by descending fitness. Ties keep population order.
func Rank(pop []Scored) []Scored {
	ranked := append([]Scored(nil), pop...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})
	return ranked
}

// Selector chooses parents from a ranked population.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, ranked []Scored) (*individual.Individual, error)
}

// EliteSelector picks uniformly from the top Count.
type EliteSelector struct {
	Count int
}

func (EliteSelector) Name() string {
	return "elite"
}

func (s EliteSelector) PickParent(rng *rand.Rand, ranked []Scored) (*individual.Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if s.Count <= 0 || s.Count > len(ranked) {
		return nil, fmt.Errorf("invalid elite count: %d", s.Count)
	}
	return ranked[rng.Intn(s.Count)].Individual, nil
}

// TournamentSelector samples Size candidates and keeps the fittest.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, ranked []Scored) (*individual.Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("empty population")
	}

	size := s.Size
	if size <= 0 {
		size = 3
	}
	if size > len(ranked) {
		size = len(ranked)
	}

	best := ranked[rng.Intn(len(ranked))]
	for i := 1; i < size; i++ {
		candidate := ranked[rng.Intn(len(ranked))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best.Individual, nil
}

// NewSelector returns the selector registered under name.
func NewSelector(name string, eliteCount, tournamentSize int) (Selector, error) {
	switch name {
	case "elite":
		return EliteSelector{Count: eliteCount}, nil
	case "", "tournament":
		return TournamentSelector{Size: tournamentSize}, nil
	}
	return nil, fmt.Errorf("unknown selector %q", name)
}
