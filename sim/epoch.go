package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/polymini/control"
	"github.com/pthm-cable/polymini/evaluation"
	"github.com/pthm-cable/polymini/evolve"
	"github.com/pthm-cable/polymini/individual"
	"github.com/pthm-cable/polymini/physics"
	"github.com/pthm-cable/polymini/snapshot"
	"github.com/pthm-cable/polymini/species"
)

// State is the lifecycle stage of an epoch.
type State uint8

const (
	Building State = iota // species may be added
	Stepping              // population fixed, ticks execute
	Done                  // step ceiling reached
)

func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case Stepping:
		return "stepping"
	case Done:
		return "done"
	}
	return "unknown"
}

// Phase names reported to a PhaseTimer.
const (
	PhaseInit        = "init"
	PhaseSense       = "sense"
	PhaseThink       = "think"
	PhaseAct         = "act"
	PhaseConsequence = "consequence"
)

// PhaseTimer measures the phases of each tick.
type PhaseTimer interface {
	StartTick()
	StartPhase(name string)
	EndTick()
}

type noTimer struct{}

func (noTimer) StartTick()        {}
func (noTimer) StartPhase(string) {}
func (noTimer) EndTick()          {}

// orientationValue maps an orientation onto the sensory range.
var orientationValue = map[physics.Orientation]float32{
	physics.Up:    0,
	physics.Right: 0.25,
	physics.Down:  0.5,
	physics.Left:  0.75,
}

// Epoch runs a fixed set of species for a bounded number of ticks.
type Epoch struct {
	number   int
	env      *Environment
	rng      *rand.Rand
	species  []*species.Species
	steps    int
	maxSteps int
	state    State
	timer    PhaseTimer

	observations map[uint64][]evaluation.Observation
}

// NewEpoch creates an empty epoch in the Building state.
func NewEpoch(number int, env *Environment, maxSteps int, rng *rand.Rand) *Epoch {
	return &Epoch{
		number:       number,
		env:          env,
		rng:          rng,
		maxSteps:     maxSteps,
		timer:        noTimer{},
		observations: make(map[uint64][]evaluation.Observation),
	}
}

// Number is the epoch's position in the run, starting at 0.
func (e *Epoch) Number() int { return e.number }

func (e *Epoch) Environment() *Environment { return e.env }

func (e *Epoch) Species() []*species.Species { return e.species }

func (e *Epoch) Steps() int { return e.steps }

func (e *Epoch) MaxSteps() int { return e.maxSteps }

func (e *Epoch) State() State { return e.state }

// SetTimer installs a phase timer. A nil timer disables timing.
func (e *Epoch) SetTimer(t PhaseTimer) {
	if t == nil {
		t = noTimer{}
	}
	e.timer = t
}

// IsFull reports whether every species slot is taken.
func (e *Epoch) IsFull() bool {
	return len(e.species) >= e.env.params.Slots
}

// Done reports whether the step ceiling was reached.
func (e *Epoch) Done() bool {
	return e.steps == e.maxSteps
}

// Observations returns the observation log of one individual.
func (e *Epoch) Observations(id uint64) []evaluation.Observation {
	return e.observations[id]
}

// AddSpecies registers every individual of s with the environment and appends
// s. A full epoch, or one that has started stepping, ignores the call.
func (e *Epoch) AddSpecies(s *species.Species) error {
	if e.IsFull() || e.state != Building {
		slog.Debug("species rejected", "species", s.Name, "epoch", e.number, "state", e.state.String(), "full", e.IsFull())
		return nil
	}
	for _, ind := range s.Population {
		if err := e.env.Place(ind, e.rng); err != nil {
			return fmt.Errorf("adding species %q: %w", s.Name, err)
		}
	}
	e.species = append(e.species, s)
	return nil
}

// each visits every individual, species-major in registration order.
func (e *Epoch) each(fn func(ind *individual.Individual)) {
	for _, s := range e.species {
		for _, ind := range s.Population {
			fn(ind)
		}
	}
}

// Step runs one tick. It does nothing once the epoch is done.
func (e *Epoch) Step() {
	if e.Done() {
		e.state = Done
		return
	}
	e.state = Stepping

	e.timer.StartTick()
	e.timer.StartPhase(PhaseInit)
	e.initPhase()
	e.timer.StartPhase(PhaseSense)
	e.sensePhase()
	e.timer.StartPhase(PhaseThink)
	e.each((*individual.Individual).Think)
	e.timer.StartPhase(PhaseAct)
	e.actPhase()
	e.timer.StartPhase(PhaseConsequence)
	e.consequencePhase()
	e.timer.EndTick()

	e.steps++
	if e.Done() {
		e.state = Done
	}
}

// initPhase is the per-tick environment setup hook. Nothing needs it yet.
func (e *Epoch) initPhase() {}

func (e *Epoch) sensePhase() {
	w, h := e.env.Physics.Dimensions()
	withTemp := e.env.HasSensor(control.SensorTemperature)
	e.each(func(ind *individual.Individual) {
		pos := ind.Position()
		payload := map[control.SensorTag]float32{
			control.SensorPositionX:   float32(pos.X) / float32(w),
			control.SensorPositionY:   float32(pos.Y) / float32(h),
			control.SensorLastMove:    0,
			control.SensorOrientation: orientationValue[ind.Orientation()],
		}
		if ind.LastMove() {
			payload[control.SensorLastMove] = 1
		}
		if withTemp {
			payload[control.SensorTemperature] = ind.Stats.Temperature
		}
		ind.Sense(payload)
	})
}

func (e *Epoch) actPhase() {
	e.each(func(ind *individual.Individual) {
		ind.ActOn(e.env.Physics)
	})
}

func (e *Epoch) consequencePhase() {
	e.env.Physics.Step()
	e.each(func(ind *individual.Individual) {
		pos, _ := e.env.Physics.QueryPlacement(ind.ID())
		e.env.Thermal.Move(ind.ID(), toPoint(pos))
	})
	e.env.Thermal.Step()

	tick := e.steps
	e.each(func(ind *individual.Individual) {
		ind.ApplyConsequence(e.env.Physics)
		ind.ApplyTemperature(e.env.Thermal)
		e.observations[ind.ID()] = append(e.observations[ind.ID()], ind.Observe(tick))
	})
}

// Run steps until the epoch is done or ctx is cancelled between ticks.
func (e *Epoch) Run(ctx context.Context) error {
	for !e.Done() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("epoch %d at step %d: %w", e.number, e.steps, err)
		}
		e.Step()
	}
	e.state = Done
	return nil
}

// Result is the evaluation of one species.
type Result struct {
	Species    string
	Generation int
	Scored     []evolve.Scored // weighted fitness, population order
	Raw        []float64       // unweighted fitness, index-aligned with Scored
}

// Evaluate scores every individual from its observations.
func (e *Epoch) Evaluate() []Result {
	results := make([]Result, len(e.species))
	for i, s := range e.species {
		r := Result{
			Species:    s.Name,
			Generation: s.Generation,
			Scored:     make([]evolve.Scored, len(s.Population)),
			Raw:        make([]float64, len(s.Population)),
		}
		for j, ind := range s.Population {
			ec := s.NewEvaluationCtx()
			ec.Evaluate(e.observations[ind.ID()])
			r.Scored[j] = evolve.Scored{Individual: ind, Fitness: ec.Fitness(s.Weights())}
			r.Raw[j] = ec.Raw()
		}
		results[i] = r
	}
	return results
}

// Advance evaluates the epoch, breeds the next generation of every species and
// returns a new epoch over a fresh environment. The species move on to the
// successor; the receiver should not be stepped again.
func (e *Epoch) Advance(rng *rand.Rand) (*Epoch, []Result, error) {
	results := e.Evaluate()
	for i, s := range e.species {
		if err := s.AdvanceGeneration(results[i].Scored, rng); err != nil {
			return nil, results, err
		}
	}

	next := NewEpoch(e.number+1, e.env.Renew(rng), e.maxSteps, rng)
	next.timer = e.timer
	for _, s := range e.species {
		if err := next.AddSpecies(s); err != nil {
			return nil, results, err
		}
	}
	return next, results, nil
}

// Snapshot returns a plain key-value projection of the epoch.
func (e *Epoch) Snapshot(flags snapshot.Flags) map[string]any {
	out := map[string]any{"number": e.number}
	if flags.Has(snapshot.Static) {
		p := e.env.Params()
		out["max_steps"] = e.maxSteps
		out["slots"] = p.Slots
		out["width"] = p.Width
		out["height"] = p.Height
	}
	if flags.Has(snapshot.Dynamic) {
		out["steps"] = e.steps
		out["state"] = e.state.String()
	}
	sp := make([]map[string]any, len(e.species))
	for i, s := range e.species {
		sp[i] = s.Snapshot(flags)
	}
	out["species"] = sp
	return out
}
