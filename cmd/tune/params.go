package main

import (
	"github.com/pthm-cable/polymini/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
	get     func(*config.Config) float64
	set     func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the tunable evolution parameters with defaults read from base.
func NewParamVector(base *config.Config) *ParamVector {
	specs := []ParamSpec{
		{
			Name: "crossover_rate", Min: 0, Max: 1,
			get: func(c *config.Config) float64 { return c.Evolution.CrossoverRate },
			set: func(c *config.Config, v float64) { c.Evolution.CrossoverRate = v },
		},
		{
			Name: "gene_mutation_rate", Min: 0, Max: 0.1,
			get: func(c *config.Config) float64 { return c.Evolution.GeneMutationRate },
			set: func(c *config.Config, v float64) { c.Evolution.GeneMutationRate = v },
		},
		{
			Name: "weight_mutation_rate", Min: 0, Max: 0.5,
			get: func(c *config.Config) float64 { return c.Evolution.WeightMutationRate },
			set: func(c *config.Config, v float64) { c.Evolution.WeightMutationRate = v },
		},
		{
			Name: "weight_sigma", Min: 0.01, Max: 0.5,
			get: func(c *config.Config) float64 { return c.Evolution.WeightSigma },
			set: func(c *config.Config, v float64) { c.Evolution.WeightSigma = v },
		},
		{
			Name: "big_mutation_rate", Min: 0, Max: 0.1,
			get: func(c *config.Config) float64 { return c.Evolution.BigMutationRate },
			set: func(c *config.Config, v float64) { c.Evolution.BigMutationRate = v },
		},
		{
			Name: "big_mutation_sigma", Min: 0.1, Max: 1.5,
			get: func(c *config.Config) float64 { return c.Evolution.BigMutationSigma },
			set: func(c *config.Config, v float64) { c.Evolution.BigMutationSigma = v },
		},
		{
			Name: "action_threshold", Min: 0.05, Max: 0.95,
			get: func(c *config.Config) float64 { return c.Control.Threshold },
			set: func(c *config.Config, v float64) { c.Control.Threshold = v },
		},
	}
	pv := &ParamVector{Specs: specs}
	for i := range pv.Specs {
		pv.Specs[i].Default = pv.clampOne(i, pv.Specs[i].get(base))
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

func (pv *ParamVector) clampOne(i int, v float64) float64 {
	return min(max(v, pv.Specs[i].Min), pv.Specs[i].Max)
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i := range pv.Specs {
		clamped[i] = pv.clampOne(i, v[i])
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.get(cfg)
	}
	return out
}
