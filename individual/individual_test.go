package individual

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/polymini/control"
	"github.com/pthm-cable/polymini/genetics"
	"github.com/pthm-cable/polymini/morphology"
	"github.com/pthm-cable/polymini/physics"
	"github.com/pthm-cable/polymini/snapshot"
)

func template() Template {
	return Template{
		GenomeLength: 8,
		Sensors:      control.AllSensors,
		Actuators:    control.AllActuators,
		Hidden:       4,
		Threshold:    control.DefaultActionThreshold,
	}
}

func TestCounterDeterministic(t *testing.T) {
	a, b := NewCounter(0), &Counter{}
	for i := uint64(1); i <= 5; i++ {
		if got := a.Next(); got != i {
			t.Errorf("Next() = %d, want %d", got, i)
		}
		b.Next()
	}
	if a.Last() != b.Last() {
		t.Errorf("counters diverged: %d vs %d", a.Last(), b.Last())
	}
}

func TestRandomUsesGenerator(t *testing.T) {
	ids := NewCounter(100)
	rng := rand.New(rand.NewSource(1))
	a := Random(ids, rng, template())
	b := Random(ids, rng, template())

	if a.ID() != 101 || b.ID() != 102 {
		t.Errorf("ids = %d, %d, want 101, 102", a.ID(), b.ID())
	}
	if len(a.Genome()) != 8 {
		t.Errorf("genome length = %d, want 8", len(a.Genome()))
	}
	if a.Morphology().Len() == 0 {
		t.Error("morphology is empty")
	}
}

func TestApplyConsequenceUnknownPanics(t *testing.T) {
	ids := NewCounter(0)
	ind := Random(ids, rand.New(rand.NewSource(1)), template())
	w := physics.NewWorld(10, 10)

	defer func() {
		if recover() == nil {
			t.Error("ApplyConsequence for unregistered individual did not panic")
		}
	}()
	ind.ApplyConsequence(w)
}

type recordingSink struct {
	ids     []uint64
	actions []control.Action
}

func (s *recordingSink) Apply(id uint64, a control.Action) {
	s.ids = append(s.ids, id)
	s.actions = append(s.actions, a)
}

func TestPhasesRoundTrip(t *testing.T) {
	ids := NewCounter(0)
	rng := rand.New(rand.NewSource(4))
	ind := Random(ids, rng, template())

	w := physics.NewWorld(20, 20)
	start := morphology.Coord{X: 10, Y: 10}
	if err := w.Add(ind.ID(), ind.Morphology(), start); err != nil {
		t.Fatal(err)
	}
	ind.Spawn(start, physics.Up)

	ind.Sense(map[control.SensorTag]float32{control.SensorPositionX: 0.5})
	ind.Think()
	want := ind.Act()

	sink := &recordingSink{}
	if n := ind.ActOn(sink); n != len(want) {
		t.Fatalf("ActOn applied %d actions, Act returned %d", n, len(want))
	}
	for _, id := range sink.ids {
		if id != ind.ID() {
			t.Errorf("action applied for id %d, want %d", id, ind.ID())
		}
	}

	// Nothing queued: the cached placement must match the world.
	ind.ApplyConsequence(w)
	if ind.Position() != start || ind.Orientation() != physics.Up {
		t.Errorf("placement = %v %v, want %v up", ind.Position(), ind.Orientation(), start)
	}

	w.Apply(ind.ID(), control.Action{Kind: control.ActionRotate, Clockwise: true})
	w.Step()
	ind.ApplyConsequence(w)
	if ind.LastMove() != w.QueryLastMove(ind.ID()) {
		t.Error("cached last move differs from the world")
	}
	if ind.Translated() {
		t.Error("rotation reported as a translation")
	}
	obs := ind.Observe(3)
	if obs.Tick != 3 || obs.Position != ind.Position() || obs.Moved != ind.Translated() {
		t.Errorf("Observe() = %+v, does not match cached state", obs)
	}
}

func TestCrossoverFreshIdentity(t *testing.T) {
	ids := NewCounter(0)
	rng := rand.New(rand.NewSource(2))
	a := Random(ids, rng, template())
	b := Random(ids, rng, template())

	child, err := Crossover(ids, a, b, rng)
	if err != nil {
		t.Fatalf("Crossover failed: %v", err)
	}
	if child.ID() == a.ID() || child.ID() == b.ID() {
		t.Error("child reused a parent identity")
	}
	if len(child.Genome()) != len(a.Genome()) {
		t.Errorf("child genome length = %d, want %d", len(child.Genome()), len(a.Genome()))
	}

	short := New(ids.Next(), genetics.RandomGenome(rng, 3), a.Control().Clone())
	if _, err := Crossover(ids, a, short, rng); err == nil {
		t.Error("expected error for mismatched genomes")
	}
}

func TestMutateRebuildsBody(t *testing.T) {
	ids := NewCounter(0)
	rng := rand.New(rand.NewSource(5))
	ind := New(ids.Next(), genetics.Genome{0, 0, 0}, control.New(rng, control.AllSensors, control.AllActuators, 3, 0.5))
	if ind.Morphology().Len() != 1 {
		t.Fatalf("zero genome body has %d segments, want 1", ind.Morphology().Len())
	}

	ind.Mutate(rng, MutationParams{GeneRate: 1})
	if ind.Morphology().Len() != 3 {
		t.Errorf("all-bits genome body has %d segments, want 3", ind.Morphology().Len())
	}
}

func TestSnapshotFlags(t *testing.T) {
	ind := Random(NewCounter(0), rand.New(rand.NewSource(1)), template())

	static := ind.Snapshot(snapshot.Static)
	if _, ok := static["genome"]; !ok {
		t.Error("static snapshot missing genome")
	}
	if _, ok := static["x"]; ok {
		t.Error("static snapshot has dynamic field x")
	}

	dynamic := ind.Snapshot(snapshot.Dynamic)
	if _, ok := dynamic["genome"]; ok {
		t.Error("dynamic snapshot has static field genome")
	}
	if _, ok := dynamic["temperature"]; !ok {
		t.Error("dynamic snapshot missing temperature")
	}

	if len(ind.Snapshot(snapshot.All)) != len(static)+len(dynamic)-1 {
		t.Error("full snapshot is not the union of static and dynamic")
	}
}
