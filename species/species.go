// Package species groups a population with the rules used to score and breed it.
package species

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/polymini/evaluation"
	"github.com/pthm-cable/polymini/evolve"
	"github.com/pthm-cable/polymini/individual"
	"github.com/pthm-cable/polymini/snapshot"
)

// Species is a named population sharing an evolver and a scoring scheme.
type Species struct {
	Name       string
	Population []*individual.Individual
	Generation int

	evolver    evolve.Evolver
	instincts  []evaluation.Instinct
	weights    map[evaluation.Instinct]float64
	evaluators []evaluation.EvaluatorKind
	params     evaluation.Params
}

// Scoring configures how a species is evaluated.
type Scoring struct {
	Instincts  []evaluation.Instinct
	Weights    map[evaluation.Instinct]float64
	Evaluators []evaluation.EvaluatorKind
	Params     evaluation.Params
}

// New creates a species. Instincts must be non-empty and cover every instinct
// the evaluators feed.
func New(name string, pop []*individual.Individual, ev evolve.Evolver, s Scoring) (*Species, error) {
	if len(s.Instincts) == 0 {
		return nil, fmt.Errorf("species %q: no instincts", name)
	}
	registered := make(map[evaluation.Instinct]bool, len(s.Instincts))
	for _, i := range s.Instincts {
		registered[i] = true
	}
	for _, k := range s.Evaluators {
		inst, _ := evaluation.NewEvaluator(k, s.Params).Evaluate(nil)
		if !registered[inst] {
			return nil, fmt.Errorf("species %q: evaluator %s feeds unregistered instinct %s", name, k, inst)
		}
	}
	return &Species{
		Name:       name,
		Population: pop,
		evolver:    ev,
		instincts:  s.Instincts,
		weights:    s.Weights,
		evaluators: s.Evaluators,
		params:     s.Params,
	}, nil
}

// Instincts returns the scored instincts.
func (s *Species) Instincts() []evaluation.Instinct {
	return s.instincts
}

// Weights returns the per-instinct fitness weights.
func (s *Species) Weights() map[evaluation.Instinct]float64 {
	return s.weights
}

// NewEvaluationCtx creates a fresh scoring context for one individual.
func (s *Species) NewEvaluationCtx() *evaluation.EvaluationCtx {
	evs := make([]evaluation.Evaluator, len(s.evaluators))
	for i, k := range s.evaluators {
		evs[i] = evaluation.NewEvaluator(k, s.params)
	}
	return evaluation.NewEvaluationCtx(evs, s.instincts)
}

// AdvanceGeneration replaces the population with the evolver's next generation.
func (s *Species) AdvanceGeneration(scored []evolve.Scored, rng *rand.Rand) error {
	next, err := s.evolver.AdvanceGeneration(scored, rng)
	if err != nil {
		return fmt.Errorf("species %q generation %d: %w", s.Name, s.Generation, err)
	}
	s.Population = next
	s.Generation++
	return nil
}

// Snapshot returns a plain key-value projection of the species.
func (s *Species) Snapshot(flags snapshot.Flags) map[string]any {
	out := map[string]any{"name": s.Name}
	if flags.Has(snapshot.Static) {
		instincts := make([]string, len(s.instincts))
		for i, inst := range s.instincts {
			instincts[i] = inst.String()
		}
		evaluators := make([]string, len(s.evaluators))
		for i, k := range s.evaluators {
			evaluators[i] = k.String()
		}
		out["instincts"] = instincts
		out["evaluators"] = evaluators
	}
	if flags.Has(snapshot.Dynamic) {
		out["generation"] = s.Generation
		out["size"] = len(s.Population)
	}
	pop := make([]map[string]any, len(s.Population))
	for i, ind := range s.Population {
		pop[i] = ind.Snapshot(flags)
	}
	out["population"] = pop
	return out
}
