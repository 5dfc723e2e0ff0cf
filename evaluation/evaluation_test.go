package evaluation

import (
	"math"
	"testing"

	"github.com/pthm-cable/polymini/morphology"
)

func TestParseTags(t *testing.T) {
	for _, i := range AllInstincts {
		if got, ok := ParseInstinct(i.String()); !ok || got != i {
			t.Errorf("ParseInstinct(%q) = %v, %v", i.String(), got, ok)
		}
	}
	for _, k := range AllEvaluators {
		if got, ok := ParseEvaluator(k.String()); !ok || got != k {
			t.Errorf("ParseEvaluator(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseInstinct("hunger"); ok {
		t.Error("ParseInstinct accepted an unknown tag")
	}
	if _, ok := ParseEvaluator("speed"); ok {
		t.Error("ParseEvaluator accepted an unknown tag")
	}
}

func TestAccumulatorAdditivity(t *testing.T) {
	a := NewAccumulator([]Instinct{Nomadic})
	a.Add(Nomadic, 1.5)
	a.Add(Nomadic, 2.25)

	b := NewAccumulator([]Instinct{Nomadic})
	b.Add(Nomadic, 1.5+2.25)

	av, _ := a.Get(Nomadic)
	bv, _ := b.Get(Nomadic)
	if av != bv {
		t.Errorf("sequential adds = %f, single add = %f", av, bv)
	}
}

func TestAccumulatorStartsAtZero(t *testing.T) {
	a := NewAccumulator(AllInstincts)
	for _, i := range AllInstincts {
		if v, ok := a.Get(i); !ok || v != 0 {
			t.Errorf("Get(%v) = %f, %v, want 0, true", i, v, ok)
		}
	}
}

func TestFitnessWeights(t *testing.T) {
	a := NewAccumulator([]Instinct{Nomadic, Explorer})
	a.Add(Nomadic, 3)
	a.Add(Explorer, 5)

	tests := []struct {
		name    string
		weights map[Instinct]float64
		want    float64
	}{
		{"nil weights", nil, 8},
		{"all ones", map[Instinct]float64{Nomadic: 1, Explorer: 1}, 8},
		{"partial", map[Instinct]float64{Nomadic: 2}, 11},
		{"zeroed", map[Instinct]float64{Nomadic: 0, Explorer: 0}, 0},
		{"unrelated weight ignored", map[Instinct]float64{Basking: 100}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Fitness(tt.weights); got != tt.want {
				t.Errorf("Fitness() = %f, want %f", got, tt.want)
			}
		})
	}

	if a.Raw() != a.Fitness(map[Instinct]float64{Nomadic: 1, Explorer: 1}) {
		t.Error("Raw() differs from unit-weighted fitness")
	}
}

func TestAccumulatorPanics(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("NewAccumulator(nil) did not panic")
			}
		}()
		NewAccumulator(nil)
	})
	t.Run("unregistered", func(t *testing.T) {
		a := NewAccumulator([]Instinct{Nomadic})
		defer func() {
			if recover() == nil {
				t.Error("Add on unregistered instinct did not panic")
			}
		}()
		a.Add(Basking, 1)
	})
}

func track(coords ...morphology.Coord) []Observation {
	obs := make([]Observation, len(coords))
	for i, c := range coords {
		obs[i] = Observation{Tick: i, Position: c, Moved: i > 0 && c != coords[i-1]}
	}
	return obs
}

func TestEvaluators(t *testing.T) {
	path := track(
		morphology.Coord{X: 0, Y: 0},
		morphology.Coord{X: 1, Y: 0},
		morphology.Coord{X: 1, Y: 0},
		morphology.Coord{X: 2, Y: 0},
		morphology.Coord{X: 3, Y: 4},
	)

	tests := []struct {
		kind     EvaluatorKind
		instinct Instinct
		want     float64
	}{
		{OverallMovement, Nomadic, 3},
		{DistanceTravelled, Nomadic, 5},
		{PositionsVisited, Explorer, 4},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			e := NewEvaluator(tt.kind, Params{})
			if e.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", e.Kind(), tt.kind)
			}
			inst, got := e.Evaluate(path)
			if inst != tt.instinct {
				t.Errorf("instinct = %v, want %v", inst, tt.instinct)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("delta = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestThermalComfort(t *testing.T) {
	obs := []Observation{{Temperature: 0.5}, {Temperature: 1}, {Temperature: 3}}
	inst, got := NewEvaluator(ThermalComfort, Params{TargetTemperature: 0.5}).Evaluate(obs)
	if inst != Basking {
		t.Errorf("instinct = %v, want basking", inst)
	}
	if got != 1.5 {
		t.Errorf("comfort = %f, want 1.5", got)
	}
}

func TestEvaluationCtxOrderIndependent(t *testing.T) {
	path := track(morphology.Coord{}, morphology.Coord{X: 1}, morphology.Coord{X: 2, Y: 1})
	kinds := []EvaluatorKind{OverallMovement, DistanceTravelled, PositionsVisited}

	forward := make([]Evaluator, len(kinds))
	backward := make([]Evaluator, len(kinds))
	for i, k := range kinds {
		forward[i] = NewEvaluator(k, Params{})
		backward[len(kinds)-1-i] = NewEvaluator(k, Params{})
	}

	a := NewEvaluationCtx(forward, []Instinct{Nomadic, Explorer})
	b := NewEvaluationCtx(backward, []Instinct{Explorer, Nomadic})
	a.Evaluate(path)
	b.Evaluate(path)

	for _, i := range []Instinct{Nomadic, Explorer} {
		av, _ := a.Accumulator().Get(i)
		bv, _ := b.Accumulator().Get(i)
		if av != bv {
			t.Errorf("%v: forward %f, backward %f", i, av, bv)
		}
	}
	if a.Raw() == 0 {
		t.Error("Raw() = 0 for a moving individual")
	}
}

func TestEvaluationCtxUnregisteredPanics(t *testing.T) {
	c := NewEvaluationCtx([]Evaluator{NewEvaluator(PositionsVisited, Params{})}, []Instinct{Nomadic})
	defer func() {
		if recover() == nil {
			t.Error("evaluator feeding an unregistered instinct did not panic")
		}
	}()
	c.Evaluate(nil)
}
