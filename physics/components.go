// Package physics is a discrete grid world that resolves body moves and rotations
// against world bounds and other bodies.
package physics

import (
	"github.com/pthm-cable/polymini/control"
	"github.com/pthm-cable/polymini/morphology"
)

// Orientation indexes a morphology rotation. Each successive rotation turns the
// body a quarter counter-clockwise, so 0=Up, 1=Left, 2=Down, 3=Right.
type Orientation uint8

const (
	Up Orientation = iota
	Left
	Down
	Right
)

func (o Orientation) String() string {
	switch o {
	case Up:
		return "up"
	case Left:
		return "left"
	case Down:
		return "down"
	case Right:
		return "right"
	}
	return "unknown"
}

// Turn returns the orientation after a quarter turn.
func (o Orientation) Turn(clockwise bool) Orientation {
	if clockwise {
		return (o + 3) % 4
	}
	return (o + 1) % 4
}

// Body identifies the individual and its shape.
type Body struct {
	ID    uint64
	Morph *morphology.Morphology
}

// Placement is the body's origin cell and orientation.
type Placement struct {
	Pos         morphology.Coord
	Orientation Orientation
}

// Motion holds the actions queued for the next step and the outcome of the
// most recent step. Both outcomes are false for a body that queued nothing.
type Motion struct {
	Pending    []control.Action
	LastMoved  bool // the last action resolved this step succeeded
	Translated bool // at least one move succeeded this step
}
