package evaluation

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/polymini/morphology"
)

// EvaluatorKind selects a fitness evaluation strategy.
type EvaluatorKind uint8

const (
	OverallMovement EvaluatorKind = iota
	DistanceTravelled
	PositionsVisited
	ThermalComfort
)

// AllEvaluators lists every evaluator kind.
var AllEvaluators = []EvaluatorKind{OverallMovement, DistanceTravelled, PositionsVisited, ThermalComfort}

func (k EvaluatorKind) String() string {
	switch k {
	case OverallMovement:
		return "overall_movement"
	case DistanceTravelled:
		return "distance_travelled"
	case PositionsVisited:
		return "positions_visited"
	case ThermalComfort:
		return "thermal_comfort"
	}
	return "unknown"
}

// ParseEvaluator parses an evaluator name. Unknown names return false.
func ParseEvaluator(s string) (EvaluatorKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range AllEvaluators {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Evaluator consumes every observation of one individual for one epoch and
// contributes a single delta to one instinct.
type Evaluator interface {
	Kind() EvaluatorKind
	Evaluate(obs []Observation) (Instinct, float64)
}

// Params tunes the evaluators that need a reference value.
type Params struct {
	TargetTemperature float32
}

// NewEvaluator returns the strategy for kind.
func NewEvaluator(kind EvaluatorKind, p Params) Evaluator {
	switch kind {
	case OverallMovement:
		return overallMovement{}
	case DistanceTravelled:
		return distanceTravelled{}
	case PositionsVisited:
		return positionsVisited{}
	case ThermalComfort:
		return thermalComfort{target: p.TargetTemperature}
	}
	panic("evaluation: unknown evaluator kind " + kind.String())
}

// overallMovement counts ticks with a successful translation.
type overallMovement struct{}

func (overallMovement) Kind() EvaluatorKind { return OverallMovement }

func (overallMovement) Evaluate(obs []Observation) (Instinct, float64) {
	var n float64
	for _, o := range obs {
		if o.Moved {
			n++
		}
	}
	return Nomadic, n
}

// distanceTravelled is the straight-line distance between the first and last position.
type distanceTravelled struct{}

func (distanceTravelled) Kind() EvaluatorKind { return DistanceTravelled }

func (distanceTravelled) Evaluate(obs []Observation) (Instinct, float64) {
	if len(obs) < 2 {
		return Nomadic, 0
	}
	first, last := obs[0].Position, obs[len(obs)-1].Position
	return Nomadic, floats.Distance(
		[]float64{float64(first.X), float64(first.Y)},
		[]float64{float64(last.X), float64(last.Y)},
		2,
	)
}

// positionsVisited counts distinct cells occupied by the body origin.
type positionsVisited struct{}

func (positionsVisited) Kind() EvaluatorKind { return PositionsVisited }

func (positionsVisited) Evaluate(obs []Observation) (Instinct, float64) {
	seen := make(map[morphology.Coord]struct{}, len(obs))
	for _, o := range obs {
		seen[o.Position] = struct{}{}
	}
	return Explorer, float64(len(seen))
}

// thermalComfort rewards ticks spent near the target temperature.
type thermalComfort struct {
	target float32
}

func (thermalComfort) Kind() EvaluatorKind { return ThermalComfort }

func (e thermalComfort) Evaluate(obs []Observation) (Instinct, float64) {
	var sum float64
	for _, o := range obs {
		sum += math.Max(0, 1-math.Abs(float64(o.Temperature-e.target)))
	}
	return Basking, sum
}
