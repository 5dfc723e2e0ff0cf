package evaluation

// EvaluationCtx pairs a set of evaluators with the accumulator they feed.
type EvaluationCtx struct {
	evaluators []Evaluator
	acc        *Accumulator
}

// NewEvaluationCtx creates a context. It panics when instincts is empty.
func NewEvaluationCtx(evaluators []Evaluator, instincts []Instinct) *EvaluationCtx {
	return &EvaluationCtx{
		evaluators: evaluators,
		acc:        NewAccumulator(instincts),
	}
}

// Evaluate runs every evaluator over obs and adds each result to the accumulator.
// An evaluator whose instinct was not registered panics.
func (c *EvaluationCtx) Evaluate(obs []Observation) {
	for _, e := range c.evaluators {
		c.acc.Add(e.Evaluate(obs))
	}
}

// Fitness returns the weighted score.
func (c *EvaluationCtx) Fitness(weights map[Instinct]float64) float64 {
	return c.acc.Fitness(weights)
}

// Raw returns the unweighted score.
func (c *EvaluationCtx) Raw() float64 {
	return c.acc.Raw()
}

// Accumulator exposes the per-instinct totals.
func (c *EvaluationCtx) Accumulator() *Accumulator {
	return c.acc
}
