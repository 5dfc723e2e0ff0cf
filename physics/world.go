package physics

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/polymini/control"
	"github.com/pthm-cable/polymini/morphology"
)

// World owns one ECS entity per registered body.
type World struct {
	width, height int

	world   *ecs.World
	mapper  *ecs.Map3[Body, Placement, Motion]
	filter  *ecs.Filter2[Body, Placement]
	places  *ecs.Map1[Placement]
	motions *ecs.Map1[Motion]

	index map[uint64]ecs.Entity
	order []ecs.Entity
}

// NewWorld creates an empty world of width x height cells.
func NewWorld(width, height int) *World {
	world := ecs.NewWorld()
	return &World{
		width:   width,
		height:  height,
		world:   world,
		mapper:  ecs.NewMap3[Body, Placement, Motion](world),
		filter:  ecs.NewFilter2[Body, Placement](world),
		places:  ecs.NewMap1[Placement](world),
		motions: ecs.NewMap1[Motion](world),
		index:   make(map[uint64]ecs.Entity),
	}
}

// Dimensions returns the world size in cells.
func (w *World) Dimensions() (width, height int) {
	return w.width, w.height
}

// Len returns the number of registered bodies.
func (w *World) Len() int {
	return len(w.order)
}

// Add registers a body facing up with its origin at pos. It does not check for
// overlap; use Fits to choose a spawn position.
func (w *World) Add(id uint64, m *morphology.Morphology, pos morphology.Coord) error {
	if _, ok := w.index[id]; ok {
		return fmt.Errorf("physics: body %d already registered", id)
	}
	body := Body{ID: id, Morph: m}
	place := Placement{Pos: pos, Orientation: Up}
	motion := Motion{}
	e := w.mapper.NewEntity(&body, &place, &motion)
	w.index[id] = e
	w.order = append(w.order, e)
	return nil
}

func (w *World) entity(id uint64) ecs.Entity {
	e, ok := w.index[id]
	if !ok {
		panic(fmt.Sprintf("physics: unknown body %d", id))
	}
	return e
}

// Apply queues an action for the body. Actions resolve in the order they were
// queued.
func (w *World) Apply(id uint64, a control.Action) {
	m := w.motions.Get(w.entity(id))
	m.Pending = append(m.Pending, a)
}

// Step resolves every queued action, bodies in registration order and each
// body's actions in queue order. A move or rotation succeeds iff the resulting
// hit shape stays in bounds and overlaps no other body. Every body's move
// result is reset first, so an idle body reports no movement.
func (w *World) Step() {
	for _, e := range w.order {
		body, place, motion := w.mapper.Get(e)
		motion.LastMoved = false
		motion.Translated = false
		for _, a := range motion.Pending {
			next := *place
			switch a.Kind {
			case control.ActionMove:
				next.Pos = next.Pos.Step(a.Direction)
			case control.ActionRotate:
				next.Orientation = next.Orientation.Turn(a.Clockwise)
			}
			motion.LastMoved = w.fits(body.Morph, next, body.ID)
			if !motion.LastMoved {
				continue
			}
			*place = next
			if a.Kind == control.ActionMove {
				motion.Translated = true
			}
		}
		motion.Pending = motion.Pending[:0]
	}
}

// Fits reports whether a body would fit at pos without leaving the world or
// overlapping any registered body.
func (w *World) Fits(m *morphology.Morphology, pos morphology.Coord, o Orientation) bool {
	return w.fits(m, Placement{Pos: pos, Orientation: o}, 0)
}

// fits checks a placement, ignoring the body registered as self. Id 0 is never
// handed out by the identity generator, so it excludes nothing.
func (w *World) fits(m *morphology.Morphology, p Placement, self uint64) bool {
	cells := HitShape(m, p)
	for _, c := range cells {
		if c.X < 0 || c.Y < 0 || c.X >= w.width || c.Y >= w.height {
			return false
		}
	}

	occupied := make(map[morphology.Coord]struct{}, len(cells))
	for _, c := range cells {
		occupied[c] = struct{}{}
	}

	query := w.filter.Query()
	for query.Next() {
		body, place := query.Get()
		if self != 0 && body.ID == self {
			continue
		}
		for _, c := range HitShape(body.Morph, *place) {
			if _, ok := occupied[c]; ok {
				query.Close()
				return false
			}
		}
	}
	return true
}

// HitShape returns the cells a body covers at the given placement.
func HitShape(m *morphology.Morphology, p Placement) []morphology.Coord {
	rotated := m.Rotated(int(p.Orientation))
	out := make([]morphology.Coord, len(rotated))
	for i, c := range rotated {
		out[i] = c.Add(p.Pos)
	}
	return out
}

// QueryPosition returns the body's origin cell. It panics if id is unknown.
func (w *World) QueryPosition(id uint64) (x, y int) {
	p := w.places.Get(w.entity(id))
	return p.Pos.X, p.Pos.Y
}

// QueryPlacement returns the body's origin cell and orientation. It panics if id is unknown.
func (w *World) QueryPlacement(id uint64) (morphology.Coord, Orientation) {
	p := w.places.Get(w.entity(id))
	return p.Pos, p.Orientation
}

// QueryLastMove reports whether the last action resolved in the most recent
// step succeeded. It panics if id is unknown.
func (w *World) QueryLastMove(id uint64) bool {
	return w.motions.Get(w.entity(id)).LastMoved
}

// QueryTranslated reports whether the body changed cell in the most recent
// step. It panics if id is unknown.
func (w *World) QueryTranslated(id uint64) bool {
	return w.motions.Get(w.entity(id)).Translated
}
