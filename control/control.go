package control

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/polymini/genetics"
)

// ActionKind selects what an Action does.
type ActionKind uint8

const (
	ActionMove   ActionKind = iota // translate one cell in Direction
	ActionRotate                   // turn 90° (Clockwise or counter-clockwise)
)

// Action is one decision emitted by the control unit.
type Action struct {
	Kind      ActionKind
	Direction genetics.Direction // ActionMove only
	Clockwise bool               // ActionRotate only
}

func (a Action) String() string {
	switch a.Kind {
	case ActionMove:
		return "move " + a.Direction.String()
	case ActionRotate:
		if a.Clockwise {
			return "rotate cw"
		}
		return "rotate ccw"
	}
	return "unknown"
}

// DefaultActionThreshold is the output magnitude an actuator must exceed to act.
const DefaultActionThreshold = 0.5

// Control owns the decision network and its current input and output state.
type Control struct {
	sensors   []SensorTag
	actuators []ActuatorTag
	brain     *FFNN
	threshold float32

	inputs  []float32
	outputs []float32
}

// New creates a control unit with a freshly initialized network.
func New(rng *rand.Rand, sensors []SensorTag, actuators []ActuatorTag, hidden int, threshold float32) *Control {
	return withBrain(sensors, actuators, NewFFNN(rng, len(sensors), hidden, len(actuators)), threshold)
}

func withBrain(sensors []SensorTag, actuators []ActuatorTag, brain *FFNN, threshold float32) *Control {
	return &Control{
		sensors:   append([]SensorTag(nil), sensors...),
		actuators: append([]ActuatorTag(nil), actuators...),
		brain:     brain,
		threshold: threshold,
		inputs:    make([]float32, len(sensors)),
		outputs:   make([]float32, len(actuators)),
	}
}

// Sensors returns the sensor layout.
func (c *Control) Sensors() []SensorTag {
	return c.sensors
}

// Actuators returns the actuator layout.
func (c *Control) Actuators() []ActuatorTag {
	return c.actuators
}

// Brain returns the decision network.
func (c *Control) Brain() *FFNN {
	return c.brain
}

// Inputs returns the current input state.
func (c *Control) Inputs() []float32 {
	return c.inputs
}

// Outputs returns the output state produced by the last Think.
func (c *Control) Outputs() []float32 {
	return c.outputs
}

// Sense copies payload values into the input state. Values outside [-1, 1]
// are clamped; sensors missing from the payload read 0.
func (c *Control) Sense(payload map[SensorTag]float32) {
	for i, tag := range c.sensors {
		v, ok := payload[tag]
		if !ok {
			c.inputs[i] = 0
			continue
		}
		c.inputs[i] = clamp32(v, -1, 1)
	}
}

// Think evaluates the network on the current inputs.
func (c *Control) Think() {
	c.brain.Forward(c.inputs, c.outputs)
}

// Act translates the current outputs into zero or more actions.
func (c *Control) Act() []Action {
	var actions []Action
	for i, tag := range c.actuators {
		v := c.outputs[i]
		if abs32(v) <= c.threshold {
			continue
		}
		positive := v > 0
		switch tag {
		case ActuatorMoveHorizontal:
			dir := genetics.Left
			if positive {
				dir = genetics.Right
			}
			actions = append(actions, Action{Kind: ActionMove, Direction: dir})
		case ActuatorMoveVertical:
			dir := genetics.Up
			if positive {
				dir = genetics.Down
			}
			actions = append(actions, Action{Kind: ActionMove, Direction: dir})
		case ActuatorRotate:
			actions = append(actions, Action{Kind: ActionRotate, Clockwise: positive})
		}
	}
	return actions
}

// Clone returns an independent copy with reset input and output state.
func (c *Control) Clone() *Control {
	return withBrain(c.sensors, c.actuators, c.brain.Clone(), c.threshold)
}

// Crossover combines the networks of two parents with identical layouts.
func Crossover(a, b *Control, rng *rand.Rand) (*Control, error) {
	brain, err := CrossoverFFNN(a.brain, b.brain, rng)
	if err != nil {
		return nil, fmt.Errorf("crossing control units: %w", err)
	}
	return withBrain(a.sensors, a.actuators, brain, a.threshold), nil
}

// Mutate perturbs the network in place and returns the mean absolute delta.
func (c *Control) Mutate(rng *rand.Rand, rate, sigma, bigRate, bigSigma float32) float32 {
	return c.brain.MutateSparse(rng, rate, sigma, bigRate, bigSigma)
}

// clamp32 clamps x to [lo, hi].
func clamp32(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
