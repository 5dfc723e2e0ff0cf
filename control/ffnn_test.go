package control

import (
	"math/rand"
	"testing"
)

func TestNewFFNN(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng, 5, 8, 3)

	if nn == nil {
		t.Fatal("NewFFNN returned nil")
	}
	if len(nn.W1) != 8 {
		t.Errorf("W1 has wrong dimensions: got %d, want %d", len(nn.W1), 8)
	}
	if nn.NumInputs() != 5 {
		t.Errorf("NumInputs() = %d, want 5", nn.NumInputs())
	}
	if nn.NumOutputs() != 3 {
		t.Errorf("NumOutputs() = %d, want 3", nn.NumOutputs())
	}
	if len(nn.W2[0]) != 8 {
		t.Errorf("W2[0] has wrong dimensions: got %d, want %d", len(nn.W2[0]), 8)
	}
}

func TestForwardRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng, 5, 8, 3)

	inputs := []float32{1, -1, 0.5, 0.25, 0}
	out := make([]float32, 3)
	nn.Forward(inputs, out)

	for i, v := range out {
		if v < -1 || v > 1 {
			t.Errorf("output %d out of range [-1,1]: %f", i, v)
		}
	}
}

func TestForwardDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng, 4, 6, 2)

	inputs := []float32{0.1, 0.2, 0.3, 0.4}
	a := make([]float32, 2)
	b := make([]float32, 2)
	nn.Forward(inputs, a)
	nn.Forward(inputs, b)

	if a[0] != b[0] || a[1] != b[1] {
		t.Error("Forward is not deterministic")
	}
}

func TestMutateSparse(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng, 4, 6, 2)
	orig := nn.Clone()

	if delta := nn.MutateSparse(rng, 1, 0.1, 0, 0.4); delta <= 0 {
		t.Errorf("MutateSparse(rate=1) avgAbsDelta = %f, want > 0", delta)
	}
	if nn.W1[0][0] == orig.W1[0][0] {
		t.Error("MutateSparse did not change weights")
	}

	still := orig.Clone()
	if delta := still.MutateSparse(rng, 0, 0.1, 0, 0.4); delta != 0 {
		t.Errorf("MutateSparse(rate=0) avgAbsDelta = %f, want 0", delta)
	}
}

func TestClone(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng, 3, 4, 2)

	clone := nn.Clone()
	if nn.W1[0][0] != clone.W1[0][0] {
		t.Error("Clone has different weights")
	}

	clone.W1[0][0] = 999
	if nn.W1[0][0] == 999 {
		t.Error("Clone is not independent")
	}
}

func TestCrossoverFFNN(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := NewFFNN(rng, 3, 4, 2)
	b := NewFFNN(rng, 3, 4, 2)

	child, err := CrossoverFFNN(a, b, rng)
	if err != nil {
		t.Fatalf("CrossoverFFNN failed: %v", err)
	}
	for i := range child.W1 {
		for j := range child.W1[i] {
			if v := child.W1[i][j]; v != a.W1[i][j] && v != b.W1[i][j] {
				t.Fatalf("W1[%d][%d] = %f not inherited from a parent", i, j, v)
			}
		}
	}

	if _, err := CrossoverFFNN(a, NewFFNN(rng, 2, 4, 2), rng); err == nil {
		t.Error("expected error for shape mismatch")
	}
}

func TestWeightsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	nn := NewFFNN(rng, 3, 5, 2)

	back, err := UnmarshalWeights(nn.MarshalWeights())
	if err != nil {
		t.Fatalf("UnmarshalWeights failed: %v", err)
	}
	if back.W1[4][2] != nn.W1[4][2] || back.W2[1][3] != nn.W2[1][3] {
		t.Error("weights changed through marshal round trip")
	}

	bad := nn.MarshalWeights()
	bad.W1 = bad.W1[:1]
	if _, err := UnmarshalWeights(bad); err == nil {
		t.Error("expected error for truncated weights")
	}
}

func BenchmarkForward(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng, 5, 16, 3)

	inputs := []float32{0.5, 0.5, 0.5, 0.5, 0.5}
	out := make([]float32, 3)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		nn.Forward(inputs, out)
	}
}
