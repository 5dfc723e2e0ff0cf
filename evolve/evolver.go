package evolve

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/polymini/individual"
)

// Evolver produces the next generation of a species.
type Evolver interface {
	Crossover(a, b *individual.Individual, rng *rand.Rand) (*individual.Individual, error)
	Mutate(ind *individual.Individual, rng *rand.Rand)
	AdvanceGeneration(pop []Scored, rng *rand.Rand) ([]*individual.Individual, error)
}

// Params configures a GeneticEvolver.
type Params struct {
	Elite         int
	CrossoverRate float64
	Selector      Selector
	Mutation      individual.MutationParams
}

// GeneticEvolver keeps the best individuals unchanged and breeds the rest from
// selected parents.
type GeneticEvolver struct {
	ids    individual.IDGenerator
	params Params
}

// NewGeneticEvolver creates an evolver that issues child identities from ids.
func NewGeneticEvolver(ids individual.IDGenerator, p Params) *GeneticEvolver {
	if p.Selector == nil {
		p.Selector = TournamentSelector{}
	}
	return &GeneticEvolver{ids: ids, params: p}
}

// Params returns the evolver configuration.
func (e *GeneticEvolver) Params() Params {
	return e.params
}

func (e *GeneticEvolver) Crossover(a, b *individual.Individual, rng *rand.Rand) (*individual.Individual, error) {
	return individual.Crossover(e.ids, a, b, rng)
}

func (e *GeneticEvolver) Mutate(ind *individual.Individual, rng *rand.Rand) {
	ind.Mutate(rng, e.params.Mutation)
}

// AdvanceGeneration returns a population of the same size: the top Elite
// individuals carried over as-is, then children of selected parents.
func (e *GeneticEvolver) AdvanceGeneration(pop []Scored, rng *rand.Rand) ([]*individual.Individual, error) {
	if len(pop) == 0 {
		return nil, nil
	}
	ranked := Rank(pop)

	elite := min(max(e.params.Elite, 0), len(ranked))
	next := make([]*individual.Individual, 0, len(ranked))
	for _, s := range ranked[:elite] {
		next = append(next, s.Individual)
	}

	for len(next) < len(ranked) {
		a, err := e.params.Selector.PickParent(rng, ranked)
		if err != nil {
			return nil, fmt.Errorf("selecting parent: %w", err)
		}

		var child *individual.Individual
		if rng.Float64() < e.params.CrossoverRate {
			b, err := e.params.Selector.PickParent(rng, ranked)
			if err != nil {
				return nil, fmt.Errorf("selecting parent: %w", err)
			}
			child, err = e.Crossover(a, b, rng)
			if err != nil {
				return nil, err
			}
		} else {
			child = a.Clone(e.ids)
		}
		e.Mutate(child, rng)
		next = append(next, child)
	}
	return next, nil
}
