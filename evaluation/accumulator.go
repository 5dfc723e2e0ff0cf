package evaluation

import "fmt"

// Accumulator is a running total per instinct. The instinct set is fixed at
// construction.
type Accumulator struct {
	order  []Instinct
	totals map[Instinct]float64
}

// NewAccumulator creates an accumulator with every instinct at zero.
// It panics when instincts is empty.
func NewAccumulator(instincts []Instinct) *Accumulator {
	if len(instincts) == 0 {
		panic("evaluation: accumulator needs at least one instinct")
	}
	a := &Accumulator{totals: make(map[Instinct]float64, len(instincts))}
	for _, i := range instincts {
		if _, ok := a.totals[i]; ok {
			continue
		}
		a.order = append(a.order, i)
		a.totals[i] = 0
	}
	return a
}

// Add adds v to instinct i. It panics when i was not registered.
func (a *Accumulator) Add(i Instinct, v float64) {
	if _, ok := a.totals[i]; !ok {
		panic(fmt.Sprintf("evaluation: instinct %s not registered", i))
	}
	a.totals[i] += v
}

// Get returns the total for i and whether i is registered.
func (a *Accumulator) Get(i Instinct) (float64, bool) {
	v, ok := a.totals[i]
	return v, ok
}

// Instincts returns the registered instincts in construction order.
func (a *Accumulator) Instincts() []Instinct {
	return a.order
}

// Fitness returns the sum of every total times its weight. Instincts missing
// from weights count with weight 1.
func (a *Accumulator) Fitness(weights map[Instinct]float64) float64 {
	var sum float64
	for _, i := range a.order {
		w, ok := weights[i]
		if !ok {
			w = 1
		}
		sum += a.totals[i] * w
	}
	return sum
}

// Raw returns the unweighted sum of every total.
func (a *Accumulator) Raw() float64 {
	return a.Fitness(nil)
}
