// Package individual is the evolvable creature: genome, body, decision unit and
// the cached physical state the simulation reads between ticks.
package individual

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/polymini/control"
	"github.com/pthm-cable/polymini/evaluation"
	"github.com/pthm-cable/polymini/genetics"
	"github.com/pthm-cable/polymini/morphology"
	"github.com/pthm-cable/polymini/physics"
	"github.com/pthm-cable/polymini/snapshot"
)

// Statistics are running values updated by the consequence phase.
type Statistics struct {
	Health      float32
	Energy      float32
	Temperature float32
}

// ActionSink receives actions on behalf of an individual.
type ActionSink interface {
	Apply(id uint64, a control.Action)
}

// PositionSource reports where a body is and how its last step resolved.
type PositionSource interface {
	QueryPlacement(id uint64) (morphology.Coord, physics.Orientation)
	QueryLastMove(id uint64) bool
	QueryTranslated(id uint64) bool
}

// TemperatureSource reports a body's temperature.
type TemperatureSource interface {
	QueryTemperature(id uint64) float32
}

// Individual is one creature.
type Individual struct {
	id      uint64
	genome  genetics.Genome
	morph   *morphology.Morphology
	control *control.Control

	position    morphology.Coord
	orientation physics.Orientation
	lastMove    bool
	translated  bool

	Stats Statistics
}

// New assembles an individual and builds its body from the genome.
func New(id uint64, genome genetics.Genome, ctrl *control.Control) *Individual {
	return &Individual{
		id:      id,
		genome:  genome,
		morph:   morphology.FromGenome(genome),
		control: ctrl,
		Stats:   Statistics{Health: 1, Energy: 1},
	}
}

// Template describes the shape of a freshly seeded individual.
type Template struct {
	GenomeLength int
	Sensors      []control.SensorTag
	Actuators    []control.ActuatorTag
	Hidden       int
	Threshold    float32
}

// Random creates an individual with a random genome and network.
func Random(ids IDGenerator, rng *rand.Rand, t Template) *Individual {
	genome := genetics.RandomGenome(rng, t.GenomeLength)
	ctrl := control.New(rng, t.Sensors, t.Actuators, t.Hidden, t.Threshold)
	return New(ids.Next(), genome, ctrl)
}

// ID returns the individual's identity.
func (ind *Individual) ID() uint64 { return ind.id }

func (ind *Individual) Genome() genetics.Genome { return ind.genome }

func (ind *Individual) Morphology() *morphology.Morphology { return ind.morph }

func (ind *Individual) Control() *control.Control { return ind.control }

// Position returns the body origin cached at the last consequence phase.
func (ind *Individual) Position() morphology.Coord { return ind.position }

func (ind *Individual) Orientation() physics.Orientation { return ind.orientation }

// LastMove reports whether the last action resolved in the previous tick succeeded.
func (ind *Individual) LastMove() bool { return ind.lastMove }

// Translated reports whether the body changed cell in the previous tick.
func (ind *Individual) Translated() bool { return ind.translated }

// Spawn resets the cached physical state for a new epoch.
func (ind *Individual) Spawn(pos morphology.Coord, o physics.Orientation) {
	ind.position = pos
	ind.orientation = o
	ind.lastMove = false
	ind.translated = false
	ind.Stats = Statistics{Health: 1, Energy: 1}
}

// Sense delivers a sensory payload to the control unit.
func (ind *Individual) Sense(payload map[control.SensorTag]float32) {
	ind.control.Sense(payload)
}

// Think evaluates the control unit.
func (ind *Individual) Think() {
	ind.control.Think()
}

// Act returns the actions the control unit decided on.
func (ind *Individual) Act() []control.Action {
	return ind.control.Act()
}

// ActOn applies the decided actions to sink and returns how many there were.
func (ind *Individual) ActOn(sink ActionSink) int {
	actions := ind.control.Act()
	for _, a := range actions {
		sink.Apply(ind.id, a)
	}
	return len(actions)
}

// ApplyConsequence refreshes the cached placement and move results.
// The source panics if the individual was never registered with it.
func (ind *Individual) ApplyConsequence(src PositionSource) {
	ind.position, ind.orientation = src.QueryPlacement(ind.id)
	ind.lastMove = src.QueryLastMove(ind.id)
	ind.translated = src.QueryTranslated(ind.id)
}

// ApplyTemperature refreshes the temperature statistic.
func (ind *Individual) ApplyTemperature(src TemperatureSource) {
	ind.Stats.Temperature = src.QueryTemperature(ind.id)
}

// Observe records the cached state for the given tick.
func (ind *Individual) Observe(tick int) evaluation.Observation {
	return evaluation.Observation{
		Tick:        tick,
		Position:    ind.position,
		Orientation: uint8(ind.orientation),
		Moved:       ind.translated,
		Temperature: ind.Stats.Temperature,
	}
}

// Crossover creates a child with a fresh identity from two parents.
func Crossover(ids IDGenerator, a, b *Individual, rng *rand.Rand) (*Individual, error) {
	genome, err := genetics.Crossover(a.genome, b.genome, rng)
	if err != nil {
		return nil, fmt.Errorf("crossing %d and %d: %w", a.id, b.id, err)
	}
	ctrl, err := control.Crossover(a.control, b.control, rng)
	if err != nil {
		return nil, fmt.Errorf("crossing %d and %d: %w", a.id, b.id, err)
	}
	return New(ids.Next(), genome, ctrl), nil
}

// Clone copies an individual under a fresh identity.
func (ind *Individual) Clone(ids IDGenerator) *Individual {
	return New(ids.Next(), ind.genome.Clone(), ind.control.Clone())
}

// MutationParams configures Mutate.
type MutationParams struct {
	GeneRate   float64 // per-bit flip probability
	WeightRate float32
	Sigma      float32
	BigRate    float32
	BigSigma   float32
}

// Mutate perturbs the genome and network in place and rebuilds the body.
func (ind *Individual) Mutate(rng *rand.Rand, p MutationParams) {
	if ind.genome.Mutate(rng, p.GeneRate) > 0 {
		ind.morph = morphology.FromGenome(ind.genome)
	}
	ind.control.Mutate(rng, p.WeightRate, p.Sigma, p.BigRate, p.BigSigma)
}

// Snapshot returns a plain key-value projection of the individual.
func (ind *Individual) Snapshot(flags snapshot.Flags) map[string]any {
	out := map[string]any{"id": ind.id}
	if flags.Has(snapshot.Static) {
		out["genome"] = ind.genome.Hex()
		out["morphology"] = ind.morph.Snapshot(snapshot.Static)
		sensors := make([]string, len(ind.control.Sensors()))
		for i, s := range ind.control.Sensors() {
			sensors[i] = s.String()
		}
		out["sensors"] = sensors
		actuators := make([]string, len(ind.control.Actuators()))
		for i, a := range ind.control.Actuators() {
			actuators[i] = a.String()
		}
		out["actuators"] = actuators
	}
	if flags.Has(snapshot.Dynamic) {
		out["x"] = ind.position.X
		out["y"] = ind.position.Y
		out["orientation"] = ind.orientation.String()
		out["last_move"] = ind.lastMove
		out["health"] = ind.Stats.Health
		out["energy"] = ind.Stats.Energy
		out["temperature"] = ind.Stats.Temperature
	}
	return out
}
