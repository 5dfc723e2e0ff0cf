// Package genetics provides the fixed-width gene encoding that drives body plans.
package genetics

import "strings"

// Gene is an opaque 32-bit value made of three fixed fields:
//
//	bits 24-31  control payload
//	bits 16-23  adjacency payload (bit0 up, bit1 down, bit2 left, bit3 right)
//	bits  0-15  genetic payload
type Gene uint32

// Bit layout of a Gene.
const (
	controlShift   = 24
	adjacencyShift = 16
	byteMask       = 0xFF
	geneticMask    = 0xFFFF
)

// NewGene composes a gene from its three fields.
func NewGene(control, adjacency uint8, genetic uint16) Gene {
	return Gene(uint32(control)<<controlShift | uint32(adjacency)<<adjacencyShift | uint32(genetic))
}

// Control returns the control payload byte.
func (g Gene) Control() uint8 {
	return uint8(uint32(g) >> controlShift & byteMask)
}

// Adjacency returns the adjacency payload byte.
func (g Gene) Adjacency() uint8 {
	return uint8(uint32(g) >> adjacencyShift & byteMask)
}

// Genetic returns the 16-bit genetic payload.
func (g Gene) Genetic() uint16 {
	return uint16(uint32(g) & geneticMask)
}

// Direction is one of the four cardinal directions.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists the cardinal directions in decode order.
var Directions = [4]Direction{Up, Down, Left, Right}

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Bit returns the adjacency bit assigned to the direction.
func (d Direction) Bit() uint8 {
	return 1 << uint8(d)
}

// ParseDirection parses a direction name. Unknown names return false.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return 0, false
}

// AdjacencyInfo is the set of directions in which a neighbouring segment must exist.
type AdjacencyInfo struct {
	bits uint8
}

// NewAdjacency builds an AdjacencyInfo from a list of directions.
func NewAdjacency(dirs ...Direction) AdjacencyInfo {
	var a AdjacencyInfo
	for _, d := range dirs {
		a.bits |= d.Bit()
	}
	return a
}

// Has reports whether the direction is part of the set.
func (a AdjacencyInfo) Has(d Direction) bool {
	return a.bits&d.Bit() != 0
}

// Empty reports whether no direction is set.
func (a AdjacencyInfo) Empty() bool {
	return a.bits == 0
}

// Directions returns the set members in decode order.
func (a AdjacencyInfo) Directions() []Direction {
	var out []Direction
	for _, d := range Directions {
		if a.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Bits returns the set as an adjacency byte.
func (a AdjacencyInfo) Bits() uint8 {
	return a.bits
}

// Decode extracts the adjacency set from a gene. Every input is valid.
func Decode(g Gene) AdjacencyInfo {
	payload := g.Adjacency()
	var a AdjacencyInfo
	for _, d := range Directions {
		if payload&d.Bit() != 0 {
			a.bits |= d.Bit()
		}
	}
	return a
}
