// Package thermal models a static heat field sampled on a square grid and the
// temperatures of the bodies moving through it.
package thermal

import (
	"fmt"
	"math"
)

// Point is a continuous position in environment units.
type Point struct {
	X, Y float32
}

type source struct {
	id        uint64
	pos       Point
	intensity float32
}

type body struct {
	pos  Point
	temp float32
}

// World holds gridLen x gridLen cells covering width x height.
type World struct {
	width, height float32
	gridLen       int

	grid    []float32 // row-major, gridLen*gridLen
	sources []source
	bodies  map[uint64]*body
	order   []uint64
}

// NewWorld creates a cold world. gridLen must be positive.
func NewWorld(width, height float32, gridLen int) *World {
	if gridLen <= 0 {
		panic(fmt.Sprintf("thermal: grid length %d must be positive", gridLen))
	}
	return &World{
		width:   width,
		height:  height,
		gridLen: gridLen,
		grid:    make([]float32, gridLen*gridLen),
		bodies:  make(map[uint64]*body),
	}
}

// GridLen returns the number of cells along each axis.
func (w *World) GridLen() int {
	return w.gridLen
}

// toGrid maps a coordinate to its cell index. Only the exact upper boundary is
// folded back into the last cell; positions outside [0, dim] are not clamped.
func (w *World) toGrid(v, dim float32) int {
	g := int(v / dim * float32(w.gridLen))
	if g == w.gridLen {
		g = w.gridLen - 1
	}
	return g
}

// Cell returns the grid coordinates that contain p.
func (w *World) Cell(p Point) (gx, gy int) {
	return w.toGrid(p.X, w.width), w.toGrid(p.Y, w.height)
}

// CellTemperature returns the static temperature of grid cell (gx, gy).
// Cells outside the grid read as the nearest edge cell.
func (w *World) CellTemperature(gx, gy int) float32 {
	gx = min(max(gx, 0), w.gridLen-1)
	gy = min(max(gy, 0), w.gridLen-1)
	return w.grid[gy*w.gridLen+gx]
}

// TemperatureAt returns the static temperature at p.
func (w *World) TemperatureAt(p Point) float32 {
	return w.CellTemperature(w.Cell(p))
}

// AddStatic registers a heat source and recalculates the whole grid.
func (w *World) AddStatic(id uint64, pos Point, intensity float32) {
	w.sources = append(w.sources, source{id: id, pos: pos, intensity: intensity})
	w.recalculate()
}

// Sources returns the number of static heat sources.
func (w *World) Sources() int {
	return len(w.sources)
}

// recalculate gives every cell the intensity of its nearest source, attenuated
// by 1/(1+d) with d in cell units.
func (w *World) recalculate() {
	type cell struct{ x, y int }
	cells := make([]cell, len(w.sources))
	for i, s := range w.sources {
		gx, gy := w.Cell(s.pos)
		cells[i] = cell{gx, gy}
	}

	for gy := 0; gy < w.gridLen; gy++ {
		for gx := 0; gx < w.gridLen; gx++ {
			var temp float32
			best := math.Inf(1)
			for i, c := range cells {
				d := math.Hypot(float64(gx-c.x), float64(gy-c.y))
				if d < best {
					best = d
					temp = w.sources[i].intensity / float32(1+d)
				}
			}
			w.grid[gy*w.gridLen+gx] = temp
		}
	}
}

// Add registers a body at pos with the temperature of its cell. It returns
// false when id is already registered.
func (w *World) Add(id uint64, pos Point) bool {
	if _, ok := w.bodies[id]; ok {
		return false
	}
	w.bodies[id] = &body{pos: pos, temp: w.TemperatureAt(pos)}
	w.order = append(w.order, id)
	return true
}

func (w *World) lookup(id uint64) *body {
	b, ok := w.bodies[id]
	if !ok {
		panic(fmt.Sprintf("thermal: unknown body %d", id))
	}
	return b
}

// Move updates a body's position. It panics if id is unknown.
func (w *World) Move(id uint64, pos Point) {
	w.lookup(id).pos = pos
}

// Step moves every body's temperature halfway toward its cell temperature.
func (w *World) Step() {
	for _, id := range w.order {
		b := w.bodies[id]
		b.temp = (b.temp + w.TemperatureAt(b.pos)) / 2
	}
}

// QueryTemperature returns a body's current temperature. It panics if id is unknown.
func (w *World) QueryTemperature(id uint64) float32 {
	return w.lookup(id).temp
}
