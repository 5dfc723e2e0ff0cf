// Package morphology builds spatially connected body plans from decoded genes.
package morphology

import (
	"github.com/pthm-cable/polymini/genetics"
	"github.com/pthm-cable/polymini/snapshot"
)

// NumRotations is the number of canonical 90° representations kept per body.
const NumRotations = 4

// Coord is an integer grid position. Row 0 is the top edge; Y grows downward.
type Coord struct {
	X int
	Y int
}

// Step returns the coordinate one cell away in the given direction.
func (c Coord) Step(d genetics.Direction) Coord {
	switch d {
	case genetics.Up:
		return Coord{c.X, c.Y - 1}
	case genetics.Down:
		return Coord{c.X, c.Y + 1}
	case genetics.Left:
		return Coord{c.X - 1, c.Y}
	case genetics.Right:
		return Coord{c.X + 1, c.Y}
	}
	return c
}

// Rotate applies the 90° transform (x, y) -> (y, -x).
func (c Coord) Rotate() Coord {
	return Coord{X: c.Y, Y: -c.X}
}

// Add translates c by o.
func (c Coord) Add(o Coord) Coord {
	return Coord{c.X + o.X, c.Y + o.Y}
}

// Segment is one cell of a body plan.
type Segment struct {
	Adjacency genetics.AdjacencyInfo
}

// NewSegment decodes a gene into a segment.
func NewSegment(g genetics.Gene) Segment {
	return Segment{Adjacency: genetics.Decode(g)}
}

// Neighbours returns the grid positions the segment requires a neighbour in,
// in up, down, left, right order. Up is only navigable below the top edge.
func (s Segment) Neighbours(c Coord) []Coord {
	var out []Coord
	for _, d := range genetics.Directions {
		if !s.Adjacency.Has(d) {
			continue
		}
		if d == genetics.Up && c.Y <= 0 {
			continue
		}
		out = append(out, c.Step(d))
	}
	return out
}

// Morphology is a complete body plan: segments plus four index-aligned
// rotated placements and the bounding box of the unrotated one.
type Morphology struct {
	segments  []Segment
	positions [NumRotations][]Coord
	width     int
	height    int
}

// FromGenome decodes every gene into a segment and builds the body plan.
func FromGenome(genome genetics.Genome) *Morphology {
	segments := make([]Segment, len(genome))
	for i, g := range genome {
		segments[i] = NewSegment(g)
	}
	return Build(segments)
}

// Build places segments on the grid with a depth-first stack traversal.
// Segments the traversal never reaches are dropped from the body.
func Build(segments []Segment) *Morphology {
	if len(segments) == 0 {
		return &Morphology{
			positions: [NumRotations][]Coord{{}, {}, {}, {}},
		}
	}

	origin := Coord{0, 0}
	visited := map[Coord]bool{origin: true}
	placed := []Coord{origin}
	var stack []Coord

	current := origin
	for i := 0; i < len(segments); i++ {
		for _, n := range segments[i].Neighbours(current) {
			if visited[n] {
				continue
			}
			visited[n] = true
			stack = append(stack, n)
			placed = append(placed, n)
		}

		if len(stack) == 0 {
			break
		}
		current = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}

	n := min(len(segments), len(placed))
	kept := make([]Segment, n)
	copy(kept, segments[:n])
	placed = placed[:n]

	m := &Morphology{segments: kept}
	m.width, m.height = bounds(placed)
	m.positions[0] = placed
	for r := 1; r < NumRotations; r++ {
		m.positions[r] = rotateAll(m.positions[r-1])
	}
	return m
}

// bounds returns the size of the minimal box containing every coordinate.
// It runs over the kept placements rather than tracking extremes during the
// traversal, so cells discovered past the segment count never widen the box.
func bounds(coords []Coord) (width, height int) {
	if len(coords) == 0 {
		return 0, 0
	}
	minX, maxX := coords[0].X, coords[0].X
	minY, maxY := coords[0].Y, coords[0].Y
	for _, c := range coords[1:] {
		minX = min(minX, c.X)
		maxX = max(maxX, c.X)
		minY = min(minY, c.Y)
		maxY = max(maxY, c.Y)
	}
	return maxX - minX + 1, maxY - minY + 1
}

func rotateAll(coords []Coord) []Coord {
	out := make([]Coord, len(coords))
	for i, c := range coords {
		out[i] = c.Rotate()
	}
	return out
}

// Segments returns the placed segments in gene order.
func (m *Morphology) Segments() []Segment {
	return m.segments
}

// Len returns the number of placed segments.
func (m *Morphology) Len() int {
	return len(m.segments)
}

// Dimensions returns the bounding box of the unrotated placement.
func (m *Morphology) Dimensions() (width, height int) {
	return m.width, m.height
}

// Rotated returns the placement after r successive rotations, r taken mod 4.
// The returned slice must not be modified.
func (m *Morphology) Rotated(r int) []Coord {
	r %= NumRotations
	if r < 0 {
		r += NumRotations
	}
	return m.positions[r]
}

// Bounds returns the min and max corners of the placement for rotation r.
func (m *Morphology) Bounds(r int) (lo, hi Coord) {
	coords := m.Rotated(r)
	if len(coords) == 0 {
		return Coord{}, Coord{}
	}
	lo, hi = coords[0], coords[0]
	for _, c := range coords[1:] {
		lo.X = min(lo.X, c.X)
		lo.Y = min(lo.Y, c.Y)
		hi.X = max(hi.X, c.X)
		hi.Y = max(hi.Y, c.Y)
	}
	return lo, hi
}

// Snapshot returns a plain key-value projection of the body plan.
// A morphology only carries static fields.
func (m *Morphology) Snapshot(flags snapshot.Flags) map[string]any {
	out := map[string]any{}
	if !flags.Has(snapshot.Static) {
		return out
	}
	adj := make([]uint8, len(m.segments))
	for i, s := range m.segments {
		adj[i] = s.Adjacency.Bits()
	}
	coords := make([][2]int, len(m.positions[0]))
	for i, c := range m.positions[0] {
		coords[i] = [2]int{c.X, c.Y}
	}
	out["segments"] = adj
	out["positions"] = coords
	out["width"] = m.width
	out["height"] = m.height
	return out
}
