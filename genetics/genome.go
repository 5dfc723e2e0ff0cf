package genetics

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand"
)

// Genome is an ordered, fixed-length sequence of genes.
type Genome []Gene

// RandomGenome creates a genome of the given length with uniformly random genes.
func RandomGenome(rng *rand.Rand, length int) Genome {
	g := make(Genome, length)
	for i := range g {
		g[i] = Gene(rng.Uint32())
	}
	return g
}

// Clone returns an independent copy of the genome.
func (g Genome) Clone() Genome {
	out := make(Genome, len(g))
	copy(out, g)
	return out
}

// Crossover performs single-point crossover. The child takes genes [0, point)
// from a and [point, n) from b. Both parents must have the same length.
func Crossover(a, b Genome, rng *rand.Rand) (Genome, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("genome length mismatch: %d vs %d", len(a), len(b))
	}
	child := make(Genome, len(a))
	if len(a) == 0 {
		return child, nil
	}
	point := rng.Intn(len(a) + 1)
	copy(child[:point], a[:point])
	copy(child[point:], b[point:])
	return child, nil
}

// Mutate flips each bit of every gene with probability rate.
// Returns the number of flipped bits.
func (g Genome) Mutate(rng *rand.Rand, rate float64) int {
	if rate <= 0 {
		return 0
	}
	flips := 0
	for i := range g {
		v := uint32(g[i])
		for bit := 0; bit < 32; bit++ {
			if rng.Float64() < rate {
				v ^= 1 << bit
				flips++
			}
		}
		g[i] = Gene(v)
	}
	return flips
}

// Segments decodes every gene into its adjacency set, preserving gene order.
func (g Genome) Segments() []AdjacencyInfo {
	out := make([]AdjacencyInfo, len(g))
	for i, gene := range g {
		out[i] = Decode(gene)
	}
	return out
}

// Hex returns the big-endian hex encoding of the genome.
func (g Genome) Hex() string {
	buf := make([]byte, 4*len(g))
	for i, gene := range g {
		binary.BigEndian.PutUint32(buf[4*i:], uint32(gene))
	}
	return hex.EncodeToString(buf)
}

// ParseHex decodes a genome produced by Hex.
func ParseHex(s string) (Genome, error) {
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding genome: %w", err)
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("decoding genome: %d bytes is not a whole number of genes", len(buf))
	}
	g := make(Genome, len(buf)/4)
	for i := range g {
		g[i] = Gene(binary.BigEndian.Uint32(buf[4*i:]))
	}
	return g, nil
}
