package physics

import (
	"testing"

	"github.com/pthm-cable/polymini/control"
	"github.com/pthm-cable/polymini/genetics"
	"github.com/pthm-cable/polymini/morphology"
)

// bar builds a horizontal 3x1 body centred on its origin.
func bar() *morphology.Morphology {
	return morphology.Build([]morphology.Segment{
		{Adjacency: genetics.NewAdjacency(genetics.Left, genetics.Right)},
		{},
		{},
	})
}

func dot() *morphology.Morphology {
	return morphology.Build([]morphology.Segment{{}})
}

func move(d genetics.Direction) control.Action {
	return control.Action{Kind: control.ActionMove, Direction: d}
}

func TestQueryUnknownPanics(t *testing.T) {
	w := NewWorld(10, 10)
	defer func() {
		if recover() == nil {
			t.Error("QueryPosition on unknown id did not panic")
		}
	}()
	w.QueryPosition(99)
}

func TestAddDuplicate(t *testing.T) {
	w := NewWorld(10, 10)
	if err := w.Add(1, dot(), morphology.Coord{X: 1, Y: 1}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := w.Add(1, dot(), morphology.Coord{X: 2, Y: 2}); err == nil {
		t.Error("expected error for duplicate id")
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}
}

func TestStepMoves(t *testing.T) {
	tests := []struct {
		name    string
		start   morphology.Coord
		dir     genetics.Direction
		wantPos morphology.Coord
		wantOK  bool
	}{
		{"right", morphology.Coord{X: 5, Y: 5}, genetics.Right, morphology.Coord{X: 6, Y: 5}, true},
		{"up", morphology.Coord{X: 5, Y: 5}, genetics.Up, morphology.Coord{X: 5, Y: 4}, true},
		{"off left edge", morphology.Coord{X: 1, Y: 5}, genetics.Left, morphology.Coord{X: 1, Y: 5}, false},
		{"off bottom edge", morphology.Coord{X: 5, Y: 9}, genetics.Down, morphology.Coord{X: 5, Y: 9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld(10, 10)
			if err := w.Add(1, bar(), tt.start); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
			w.Apply(1, move(tt.dir))
			w.Step()

			pos, _ := w.QueryPlacement(1)
			if pos != tt.wantPos {
				t.Errorf("position = %v, want %v", pos, tt.wantPos)
			}
			if got := w.QueryLastMove(1); got != tt.wantOK {
				t.Errorf("QueryLastMove() = %v, want %v", got, tt.wantOK)
			}
		})
	}
}

func TestCollisionRejectsOverlap(t *testing.T) {
	w := NewWorld(10, 10)
	// Bar covers x=2..4, dot sits at x=6.
	if err := w.Add(1, bar(), morphology.Coord{X: 3, Y: 5}); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(2, dot(), morphology.Coord{X: 6, Y: 5}); err != nil {
		t.Fatal(err)
	}

	w.Apply(1, move(genetics.Right))
	w.Step()
	if x, _ := w.QueryPosition(1); x != 4 {
		t.Fatalf("first move: x = %d, want 4", x)
	}

	w.Apply(1, move(genetics.Right))
	w.Step()
	if x, _ := w.QueryPosition(1); x != 4 {
		t.Errorf("blocked move: x = %d, want 4", x)
	}
	if w.QueryLastMove(1) {
		t.Error("blocked move reported success")
	}
}

func TestRotation(t *testing.T) {
	w := NewWorld(10, 10)
	if err := w.Add(1, bar(), morphology.Coord{X: 5, Y: 5}); err != nil {
		t.Fatal(err)
	}

	w.Apply(1, control.Action{Kind: control.ActionRotate, Clockwise: false})
	w.Step()
	if _, o := w.QueryPlacement(1); o != Left {
		t.Errorf("orientation after ccw = %v, want left", o)
	}

	w.Apply(1, control.Action{Kind: control.ActionRotate, Clockwise: true})
	w.Apply(1, control.Action{Kind: control.ActionRotate, Clockwise: true})
	w.Step()
	if _, o := w.QueryPlacement(1); o != Right {
		t.Errorf("orientation after two cw = %v, want right", o)
	}
	if !w.QueryLastMove(1) || w.QueryTranslated(1) {
		t.Errorf("rotation: last move = %v, translated = %v, want true, false",
			w.QueryLastMove(1), w.QueryTranslated(1))
	}

	// A vertical bar centred on row 0 pokes above the top edge.
	if NewWorld(10, 10).Fits(bar(), morphology.Coord{X: 0, Y: 0}, Left) {
		t.Error("vertical bar at row 0 should not fit")
	}
}

func TestFits(t *testing.T) {
	w := NewWorld(5, 5)
	if !w.Fits(bar(), morphology.Coord{X: 2, Y: 2}, Up) {
		t.Error("bar should fit in an empty world")
	}
	if err := w.Add(1, bar(), morphology.Coord{X: 2, Y: 2}); err != nil {
		t.Fatal(err)
	}
	if w.Fits(dot(), morphology.Coord{X: 3, Y: 2}, Up) {
		t.Error("dot overlapping bar should not fit")
	}
	if !w.Fits(dot(), morphology.Coord{X: 3, Y: 3}, Up) {
		t.Error("dot below bar should fit")
	}
}

func TestTurn(t *testing.T) {
	for o := Up; o <= Right; o++ {
		if got := o.Turn(true).Turn(false); got != o {
			t.Errorf("%v cw then ccw = %v", o, got)
		}
	}
	if Up.Turn(true) != Right {
		t.Errorf("Up.Turn(cw) = %v, want right", Up.Turn(true))
	}
}

func TestIdleStepClearsMoveResult(t *testing.T) {
	w := NewWorld(10, 10)
	if err := w.Add(1, dot(), morphology.Coord{X: 5, Y: 5}); err != nil {
		t.Fatal(err)
	}

	w.Apply(1, move(genetics.Right))
	w.Step()
	if !w.QueryLastMove(1) || !w.QueryTranslated(1) {
		t.Fatal("first move did not succeed")
	}

	for i := 0; i < 10; i++ {
		w.Step()
		if w.QueryLastMove(1) || w.QueryTranslated(1) {
			t.Fatalf("idle step %d: last move = %v, translated = %v, want false",
				i, w.QueryLastMove(1), w.QueryTranslated(1))
		}
	}
	if x, _ := w.QueryPosition(1); x != 6 {
		t.Errorf("x = %d, want 6", x)
	}
}

func TestStepResolvesEveryQueuedAction(t *testing.T) {
	tests := []struct {
		name           string
		start          morphology.Coord
		actions        []control.Action
		wantPos        morphology.Coord
		wantO          Orientation
		wantLast       bool
		wantTranslated bool
	}{
		{
			name:           "move then rotate",
			start:          morphology.Coord{X: 5, Y: 5},
			actions:        []control.Action{move(genetics.Right), {Kind: control.ActionRotate, Clockwise: false}},
			wantPos:        morphology.Coord{X: 6, Y: 5},
			wantO:          Left,
			wantLast:       true,
			wantTranslated: true,
		},
		{
			name:           "horizontal and vertical",
			start:          morphology.Coord{X: 5, Y: 5},
			actions:        []control.Action{move(genetics.Left), move(genetics.Down)},
			wantPos:        morphology.Coord{X: 4, Y: 6},
			wantO:          Up,
			wantLast:       true,
			wantTranslated: true,
		},
		{
			name:           "blocked move then rotate",
			start:          morphology.Coord{X: 5, Y: 1},
			actions:        []control.Action{move(genetics.Up), move(genetics.Up), {Kind: control.ActionRotate, Clockwise: true}},
			wantPos:        morphology.Coord{X: 5, Y: 0},
			wantO:          Right,
			wantLast:       true,
			wantTranslated: true,
		},
		{
			name:           "move then blocked move",
			start:          morphology.Coord{X: 5, Y: 5},
			actions:        []control.Action{move(genetics.Right), move(genetics.Right), move(genetics.Right), move(genetics.Right), move(genetics.Right)},
			wantPos:        morphology.Coord{X: 9, Y: 5},
			wantO:          Up,
			wantLast:       false,
			wantTranslated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld(10, 10)
			if err := w.Add(1, dot(), tt.start); err != nil {
				t.Fatal(err)
			}
			for _, a := range tt.actions {
				w.Apply(1, a)
			}
			w.Step()

			pos, o := w.QueryPlacement(1)
			if pos != tt.wantPos || o != tt.wantO {
				t.Errorf("placement = %v %v, want %v %v", pos, o, tt.wantPos, tt.wantO)
			}
			if got := w.QueryLastMove(1); got != tt.wantLast {
				t.Errorf("QueryLastMove() = %v, want %v", got, tt.wantLast)
			}
			if got := w.QueryTranslated(1); got != tt.wantTranslated {
				t.Errorf("QueryTranslated() = %v, want %v", got, tt.wantTranslated)
			}
		})
	}
}
