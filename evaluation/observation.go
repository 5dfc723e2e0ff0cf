package evaluation

import "github.com/pthm-cable/polymini/morphology"

// Observation is what one individual did and felt during one tick, recorded
// after the consequence phase.
type Observation struct {
	Tick        int
	Position    morphology.Coord
	Orientation uint8
	Moved       bool // a move changed the body's cell; rotations do not count
	Temperature float32
}
