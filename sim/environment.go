// Package sim drives epochs of individuals through the sense, think, act and
// consequence phases and turns finished epochs into new generations.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/polymini/control"
	"github.com/pthm-cable/polymini/individual"
	"github.com/pthm-cable/polymini/morphology"
	"github.com/pthm-cable/polymini/physics"
	"github.com/pthm-cable/polymini/thermal"
)

// EnvironmentParams describes an environment. A renewed environment reuses them.
type EnvironmentParams struct {
	Width, Height int
	Slots         int // species an epoch accepts
	Sensors       []control.SensorTag
	SpawnAttempts int

	GridLen    int
	Sources    int
	Intensity  float32
	NoiseScale float64
}

// Environment owns the physics and thermal worlds of one epoch.
type Environment struct {
	params  EnvironmentParams
	Physics *physics.World
	Thermal *thermal.World
}

// NewEnvironment builds empty worlds and seeds the heat sources. Source
// intensity follows an OpenSimplex field sampled at each source position.
func NewEnvironment(p EnvironmentParams, rng *rand.Rand) *Environment {
	env := &Environment{
		params:  p,
		Physics: physics.NewWorld(p.Width, p.Height),
		Thermal: thermal.NewWorld(float32(p.Width), float32(p.Height), p.GridLen),
	}

	noise := opensimplex.New(rng.Int63())
	for i := 0; i < p.Sources; i++ {
		x := rng.Float64() * float64(p.Width)
		y := rng.Float64() * float64(p.Height)
		n := noise.Eval2(x*p.NoiseScale, y*p.NoiseScale) // [-1, 1]
		intensity := p.Intensity * float32(0.5+0.5*n)
		env.Thermal.AddStatic(uint64(i+1), thermal.Point{X: float32(x), Y: float32(y)}, intensity)
	}
	return env
}

// Params returns the parameters the environment was built with.
func (e *Environment) Params() EnvironmentParams {
	return e.params
}

// Renew builds a fresh environment with the same parameters.
func (e *Environment) Renew(rng *rand.Rand) *Environment {
	return NewEnvironment(e.params, rng)
}

// HasSensor reports whether tag is among the default sensors.
func (e *Environment) HasSensor(tag control.SensorTag) bool {
	for _, s := range e.params.Sensors {
		if s == tag {
			return true
		}
	}
	return false
}

func toPoint(c morphology.Coord) thermal.Point {
	return thermal.Point{X: float32(c.X), Y: float32(c.Y)}
}

// Place registers an individual with both worlds at a free position. Random
// positions are tried first, then every cell in row-major order.
func (e *Environment) Place(ind *individual.Individual, rng *rand.Rand) error {
	m := ind.Morphology()
	pos, ok := e.findSpawn(m, rng)
	if !ok {
		return fmt.Errorf("no free position for individual %d", ind.ID())
	}
	if err := e.Physics.Add(ind.ID(), m, pos); err != nil {
		return err
	}
	if !e.Thermal.Add(ind.ID(), toPoint(pos)) {
		return fmt.Errorf("individual %d already has a temperature", ind.ID())
	}
	ind.Spawn(pos, physics.Up)
	ind.ApplyTemperature(e.Thermal)
	return nil
}

func (e *Environment) findSpawn(m *morphology.Morphology, rng *rand.Rand) (morphology.Coord, bool) {
	w, h := e.params.Width, e.params.Height
	for i := 0; i < e.params.SpawnAttempts; i++ {
		pos := morphology.Coord{X: rng.Intn(w), Y: rng.Intn(h)}
		if e.Physics.Fits(m, pos, physics.Up) {
			return pos, true
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pos := morphology.Coord{X: x, Y: y}
			if e.Physics.Fits(m, pos, physics.Up) {
				return pos, true
			}
		}
	}
	return morphology.Coord{}, false
}
