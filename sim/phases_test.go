package sim

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/polymini/control"
	"github.com/pthm-cable/polymini/evaluation"
	"github.com/pthm-cable/polymini/evolve"
	"github.com/pthm-cable/polymini/genetics"
	"github.com/pthm-cable/polymini/individual"
	"github.com/pthm-cable/polymini/morphology"
	"github.com/pthm-cable/polymini/physics"
	"github.com/pthm-cable/polymini/species"
)

// phaseHook calls fn at the start of every phase and with "end" after each tick.
type phaseHook struct {
	fn func(phase string)
}

func (h phaseHook) StartTick()             {}
func (h phaseHook) StartPhase(name string) { h.fn(name) }
func (h phaseHook) EndTick()               { h.fn("end") }

// scripted builds a one-cell individual whose network ignores its inputs and
// always emits biases, one per actuator in control.AllActuators order.
func scripted(ids individual.IDGenerator, rng *rand.Rand, biases ...float32) *individual.Individual {
	ctrl := control.New(rng, control.AllSensors, control.AllActuators, 2, 0.5)
	setBiases(ctrl, biases...)
	return individual.New(ids.Next(), genetics.Genome{genetics.NewGene(0, 0, 0)}, ctrl)
}

func setBiases(ctrl *control.Control, biases ...float32) {
	nn := ctrl.Brain()
	for i := range nn.W1 {
		for j := range nn.W1[i] {
			nn.W1[i][j] = 0
		}
		nn.B1[i] = 0
	}
	for i := range nn.W2 {
		for j := range nn.W2[i] {
			nn.W2[i][j] = 0
		}
		nn.B2[i] = 0
	}
	copy(nn.B2, biases)
}

func addPopulation(t *testing.T, e *Epoch, ids individual.IDGenerator, pop ...*individual.Individual) {
	t.Helper()
	s, err := species.New("scripted", pop, evolve.NewGeneticEvolver(ids, evolve.Params{Elite: 1}), species.Scoring{
		Instincts:  []evaluation.Instinct{evaluation.Nomadic},
		Evaluators: []evaluation.EvaluatorKind{evaluation.OverallMovement},
	})
	if err != nil {
		t.Fatalf("species.New failed: %v", err)
	}
	if err := e.AddSpecies(s); err != nil {
		t.Fatal(err)
	}
}

// towardCentre returns a bias that moves away from the nearer edge.
func towardCentre(v, size int) float32 {
	if v < size/2 {
		return 4
	}
	return -4
}

func movement(obs []evaluation.Observation) float64 {
	_, v := evaluation.NewEvaluator(evaluation.OverallMovement, evaluation.Params{}).Evaluate(obs)
	return v
}

func TestIdleTicksAreNotMovement(t *testing.T) {
	e, ids, rng := newEpoch(t, 1, 10)
	ind := scripted(ids, rng)
	addPopulation(t, e, ids, ind)

	w, _ := e.Environment().Physics.Dimensions()
	start := ind.Position()
	setBiases(ind.Control(), towardCentre(start.X, w))

	// Move on the first tick only.
	e.SetTimer(phaseHook{func(phase string) {
		if phase == "end" {
			setBiases(ind.Control())
		}
	}})
	for !e.Done() {
		e.Step()
	}

	obs := e.Observations(ind.ID())
	if len(obs) != 10 {
		t.Fatalf("observations = %d, want 10", len(obs))
	}
	if !obs[0].Moved {
		t.Fatal("first tick did not move")
	}
	for _, o := range obs[1:] {
		if o.Moved {
			t.Errorf("idle tick %d recorded as a move", o.Tick)
		}
	}
	if ind.LastMove() {
		t.Error("last move sensor still set after idle ticks")
	}
	if d := ind.Position().X - start.X; d != 1 && d != -1 {
		t.Errorf("x moved by %d, want 1 cell", d)
	}
	if got := movement(obs); got != 1 {
		t.Errorf("overall_movement = %v, want 1", got)
	}
}

func TestEveryActuatorResolvesInOneTick(t *testing.T) {
	e, ids, rng := newEpoch(t, 1, 1)
	ind := scripted(ids, rng)
	addPopulation(t, e, ids, ind)

	w, h := e.Environment().Physics.Dimensions()
	start := ind.Position()
	dx, dy := towardCentre(start.X, w), towardCentre(start.Y, h)
	setBiases(ind.Control(), dx, dy, 4)
	e.Step()

	want := start
	if dx > 0 {
		want.X++
	} else {
		want.X--
	}
	if dy > 0 {
		want.Y++
	} else {
		want.Y--
	}
	if ind.Position() != want {
		t.Errorf("position = %v, want %v", ind.Position(), want)
	}
	if ind.Orientation() != physics.Right {
		t.Errorf("orientation = %v, want right", ind.Orientation())
	}
	if got := movement(e.Observations(ind.ID())); got != 1 {
		t.Errorf("overall_movement = %v, want 1", got)
	}
}

func TestSenseSeesPreviousTick(t *testing.T) {
	e, ids, rng := newEpoch(t, 1, 6)
	mover := scripted(ids, rng)
	watcher := scripted(ids, rng)
	addPopulation(t, e, ids, mover, watcher)

	phys := e.Environment().Physics
	w, h := phys.Dimensions()
	setBiases(mover.Control(), towardCentre(mover.Position().X, w))

	where := func(ind *individual.Individual) morphology.Coord {
		x, y := phys.QueryPosition(ind.ID())
		return morphology.Coord{X: x, Y: y}
	}

	pop := []*individual.Individual{mover, watcher}
	var before map[uint64]morphology.Coord
	moves := 0
	e.SetTimer(phaseHook{func(phase string) {
		switch phase {
		case PhaseInit:
			before = map[uint64]morphology.Coord{}
			for _, ind := range pop {
				before[ind.ID()] = where(ind)
			}
		case PhaseThink, PhaseAct, PhaseConsequence:
			// Actions are queued during act and only resolve in consequence.
			for _, ind := range pop {
				if got := where(ind); got != before[ind.ID()] {
					t.Errorf("tick %d %s: individual %d at %v, want %v", e.Steps(), phase, ind.ID(), got, before[ind.ID()])
				}
				in := ind.Control().Inputs()
				wantX := float32(before[ind.ID()].X) / float32(w)
				wantY := float32(before[ind.ID()].Y) / float32(h)
				if in[0] != wantX || in[1] != wantY {
					t.Errorf("tick %d %s: individual %d sensed (%v, %v), want (%v, %v)",
						e.Steps(), phase, ind.ID(), in[0], in[1], wantX, wantY)
				}
			}
		case "end":
			if where(mover) != before[mover.ID()] {
				moves++
			}
			if where(watcher) != before[watcher.ID()] {
				t.Errorf("tick %d: watcher moved", e.Steps())
			}
		}
	}})
	for !e.Done() {
		e.Step()
	}

	if moves == 0 {
		t.Fatal("mover never moved")
	}
	if got := movement(e.Observations(mover.ID())); got != float64(moves) {
		t.Errorf("mover overall_movement = %v, want %d", got, moves)
	}
	if got := movement(e.Observations(watcher.ID())); got != 0 {
		t.Errorf("watcher overall_movement = %v, want 0", got)
	}
}
