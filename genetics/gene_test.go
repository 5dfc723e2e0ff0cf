package genetics

import (
	"math/rand"
	"testing"
)

func TestGeneFields(t *testing.T) {
	g := NewGene(0xAB, 0x0F, 0x1234)

	if g.Control() != 0xAB {
		t.Errorf("Control() = %#x, want 0xab", g.Control())
	}
	if g.Adjacency() != 0x0F {
		t.Errorf("Adjacency() = %#x, want 0x0f", g.Adjacency())
	}
	if g.Genetic() != 0x1234 {
		t.Errorf("Genetic() = %#x, want 0x1234", g.Genetic())
	}
	if uint32(g) != 0xAB0F1234 {
		t.Errorf("gene = %#x, want 0xab0f1234", uint32(g))
	}
}

func TestDecodeAllAdjacencyBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		// Surround the adjacency byte with noise to prove the other fields are ignored.
		g := NewGene(uint8(255-b), uint8(b), uint16(b*257))
		adj := Decode(g)
		for _, d := range Directions {
			want := uint8(b)&(1<<uint8(d)) != 0
			if got := adj.Has(d); got != want {
				t.Errorf("Decode(%#x).Has(%v) = %v, want %v", b, d, got, want)
			}
		}
	}
}

func TestDecodeDirectionOrder(t *testing.T) {
	g := NewGene(0, Right.Bit()|Up.Bit()|Left.Bit(), 0)
	dirs := Decode(g).Directions()

	want := []Direction{Up, Left, Right}
	if len(dirs) != len(want) {
		t.Fatalf("Directions() = %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("Directions()[%d] = %v, want %v", i, dirs[i], want[i])
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"up", Up, true},
		{"DOWN", Down, true},
		{" left ", Left, true},
		{"right", Right, true},
		{"sideways", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDirection(tt.in)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("ParseDirection(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCrossoverPreservesLength(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := RandomGenome(rng, 16)
	b := RandomGenome(rng, 16)

	for i := 0; i < 50; i++ {
		child, err := Crossover(a, b, rng)
		if err != nil {
			t.Fatalf("Crossover failed: %v", err)
		}
		if len(child) != 16 {
			t.Fatalf("child length = %d, want 16", len(child))
		}
		// Every gene must come from the parent at the same locus.
		for j := range child {
			if child[j] != a[j] && child[j] != b[j] {
				t.Fatalf("child[%d] = %#x, not from either parent", j, uint32(child[j]))
			}
		}
	}
}

func TestCrossoverLengthMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := Crossover(make(Genome, 3), make(Genome, 4), rng); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestMutateZeroRateIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := RandomGenome(rng, 8)
	orig := g.Clone()

	if flips := g.Mutate(rng, 0); flips != 0 {
		t.Errorf("Mutate(0) flipped %d bits", flips)
	}
	for i := range g {
		if g[i] != orig[i] {
			t.Errorf("gene %d changed with zero mutation rate", i)
		}
	}
}

func TestMutateFullRateInverts(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := Genome{0x00000000, 0xFFFFFFFF}
	g.Mutate(rng, 1.0)

	if g[0] != 0xFFFFFFFF || g[1] != 0 {
		t.Errorf("Mutate(1.0) = %#x %#x, want inverted genes", uint32(g[0]), uint32(g[1]))
	}
}

func TestHexRoundTrip(t *testing.T) {
	g := Genome{NewGene(1, 2, 3), NewGene(0xFF, 0, 0xBEEF)}
	s := g.Hex()
	if s != "01020003ff00beef" {
		t.Errorf("Hex() = %q, want 01020003ff00beef", s)
	}

	back, err := ParseHex(s)
	if err != nil {
		t.Fatalf("ParseHex failed: %v", err)
	}
	if len(back) != 2 || back[0] != g[0] || back[1] != g[1] {
		t.Errorf("ParseHex(%q) = %v, want %v", s, back, g)
	}

	if _, err := ParseHex("abc"); err == nil {
		t.Error("expected error for odd-length hex")
	}
}
