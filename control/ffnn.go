package control

import (
	"fmt"
	"math"
	"math/rand"
)

// FFNN is a two-layer feedforward network sized from the sensor and actuator lists.
type FFNN struct {
	W1 [][]float32 // input -> hidden weights [hidden][inputs]
	B1 []float32   // hidden biases
	W2 [][]float32 // hidden -> output weights [outputs][hidden]
	B2 []float32   // output biases

	hidden []float32 // scratch buffer reused by Forward
}

// NewFFNN creates a randomly initialized network.
func NewFFNN(rng *rand.Rand, numInputs, numHidden, numOutputs int) *FFNN {
	nn := newZeroFFNN(numInputs, numHidden, numOutputs)

	// Xavier initialization
	scale1 := float32(math.Sqrt(2.0 / float64(max(numInputs, 1))))
	scale2 := float32(math.Sqrt(2.0 / float64(max(numHidden, 1))))

	for i := range nn.W1 {
		for j := range nn.W1[i] {
			nn.W1[i][j] = float32(rng.NormFloat64()) * scale1
		}
	}
	for i := range nn.W2 {
		for j := range nn.W2[i] {
			nn.W2[i][j] = float32(rng.NormFloat64()) * scale2
		}
	}
	return nn
}

func newZeroFFNN(numInputs, numHidden, numOutputs int) *FFNN {
	nn := &FFNN{
		W1:     make([][]float32, numHidden),
		B1:     make([]float32, numHidden),
		W2:     make([][]float32, numOutputs),
		B2:     make([]float32, numOutputs),
		hidden: make([]float32, numHidden),
	}
	for i := range nn.W1 {
		nn.W1[i] = make([]float32, numInputs)
	}
	for i := range nn.W2 {
		nn.W2[i] = make([]float32, numHidden)
	}
	return nn
}

// NumInputs returns the input layer width.
func (nn *FFNN) NumInputs() int {
	if len(nn.W1) == 0 {
		return 0
	}
	return len(nn.W1[0])
}

// NumOutputs returns the output layer width.
func (nn *FFNN) NumOutputs() int {
	return len(nn.W2)
}

// Forward computes the network output into out. Every output is in [-1, 1].
func (nn *FFNN) Forward(inputs, out []float32) {
	for i := range nn.W1 {
		sum := nn.B1[i]
		for j, w := range nn.W1[i] {
			sum += w * inputs[j]
		}
		nn.hidden[i] = tanh(sum)
	}

	for i := range nn.W2 {
		sum := nn.B2[i]
		for j, w := range nn.W2[i] {
			sum += w * nn.hidden[j]
		}
		out[i] = tanh(sum)
	}
}

// MutateSparse applies sparse per-weight mutation.
// rate: probability each weight mutates (e.g., 0.05)
// sigma: standard deviation of normal perturbation (e.g., 0.08)
// bigRate: probability of a large mutation (e.g., 0.01)
// bigSigma: sigma for large mutations (e.g., 0.4)
// Returns avgAbsDelta: the average absolute delta of all applied mutations.
func (nn *FFNN) MutateSparse(rng *rand.Rand, rate, sigma, bigRate, bigSigma float32) float32 {
	biasRate := rate * 0.5 // biases mutate at half the rate

	var totalDelta float32
	var count int

	perturb := func(v *float32, p float32) {
		if rng.Float32() >= p {
			return
		}
		var delta float32
		if rng.Float32() < bigRate {
			delta = float32(rng.NormFloat64()) * bigSigma
		} else {
			delta = float32(rng.NormFloat64()) * sigma
		}
		*v += delta
		totalDelta += abs32(delta)
		count++
	}

	for i := range nn.W1 {
		for j := range nn.W1[i] {
			perturb(&nn.W1[i][j], rate)
		}
		perturb(&nn.B1[i], biasRate)
	}
	for i := range nn.W2 {
		for j := range nn.W2[i] {
			perturb(&nn.W2[i][j], rate)
		}
		perturb(&nn.B2[i], biasRate)
	}

	if count == 0 {
		return 0
	}
	return totalDelta / float32(count)
}

// CrossoverFFNN creates a child by picking every weight uniformly from one parent.
func CrossoverFFNN(a, b *FFNN, rng *rand.Rand) (*FFNN, error) {
	if a.NumInputs() != b.NumInputs() || len(a.B1) != len(b.B1) || a.NumOutputs() != b.NumOutputs() {
		return nil, fmt.Errorf("network shape mismatch: %dx%dx%d vs %dx%dx%d",
			a.NumInputs(), len(a.B1), a.NumOutputs(), b.NumInputs(), len(b.B1), b.NumOutputs())
	}
	child := newZeroFFNN(a.NumInputs(), len(a.B1), a.NumOutputs())
	pick := func(x, y float32) float32 {
		if rng.Intn(2) == 0 {
			return x
		}
		return y
	}
	for i := range child.W1 {
		for j := range child.W1[i] {
			child.W1[i][j] = pick(a.W1[i][j], b.W1[i][j])
		}
		child.B1[i] = pick(a.B1[i], b.B1[i])
	}
	for i := range child.W2 {
		for j := range child.W2[i] {
			child.W2[i][j] = pick(a.W2[i][j], b.W2[i][j])
		}
		child.B2[i] = pick(a.B2[i], b.B2[i])
	}
	return child, nil
}

// Clone creates a deep copy of the network.
func (nn *FFNN) Clone() *FFNN {
	clone := newZeroFFNN(nn.NumInputs(), len(nn.B1), nn.NumOutputs())
	for i := range nn.W1 {
		copy(clone.W1[i], nn.W1[i])
	}
	copy(clone.B1, nn.B1)
	for i := range nn.W2 {
		copy(clone.W2[i], nn.W2[i])
	}
	copy(clone.B2, nn.B2)
	return clone
}

// abs32 returns the absolute value of x.
func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// tanh uses a fast rational approximation avoiding float64 conversion.
func tanh(x float32) float32 {
	if x > 4 {
		return 1
	}
	if x < -4 {
		return -1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}

// BrainWeights holds flattened network weights for serialization.
type BrainWeights struct {
	Inputs int       `json:"inputs"`
	Hidden int       `json:"hidden"`
	W1     []float32 `json:"w1"` // [Hidden * Inputs]
	B1     []float32 `json:"b1"` // [Hidden]
	W2     []float32 `json:"w2"` // [Outputs * Hidden]
	B2     []float32 `json:"b2"` // [Outputs]
}

// MarshalWeights flattens the network weights for JSON serialization.
func (nn *FFNN) MarshalWeights() BrainWeights {
	in, hid, out := nn.NumInputs(), len(nn.B1), nn.NumOutputs()
	bw := BrainWeights{
		Inputs: in,
		Hidden: hid,
		W1:     make([]float32, 0, hid*in),
		B1:     append([]float32(nil), nn.B1...),
		W2:     make([]float32, 0, out*hid),
		B2:     append([]float32(nil), nn.B2...),
	}
	for i := range nn.W1 {
		bw.W1 = append(bw.W1, nn.W1[i]...)
	}
	for i := range nn.W2 {
		bw.W2 = append(bw.W2, nn.W2[i]...)
	}
	return bw
}

// UnmarshalWeights rebuilds a network from flattened weights.
func UnmarshalWeights(bw BrainWeights) (*FFNN, error) {
	out := len(bw.B2)
	if len(bw.B1) != bw.Hidden || len(bw.W1) != bw.Hidden*bw.Inputs || len(bw.W2) != out*bw.Hidden {
		return nil, fmt.Errorf("inconsistent brain weights: inputs=%d hidden=%d w1=%d w2=%d",
			bw.Inputs, bw.Hidden, len(bw.W1), len(bw.W2))
	}
	nn := newZeroFFNN(bw.Inputs, bw.Hidden, out)
	for i := range nn.W1 {
		copy(nn.W1[i], bw.W1[i*bw.Inputs:(i+1)*bw.Inputs])
	}
	copy(nn.B1, bw.B1)
	for i := range nn.W2 {
		copy(nn.W2[i], bw.W2[i*bw.Hidden:(i+1)*bw.Hidden])
	}
	copy(nn.B2, bw.B2)
	return nn, nil
}
