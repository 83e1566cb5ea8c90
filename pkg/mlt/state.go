package mlt

import (
	"math/rand"

	"github.com/df07/go-manifold-mlt/pkg/mutation"
)

// State is a primary sample space point for paths of a fixed vertex
// count: a technique selector and one triple of uniforms per potential
// vertex of each subpath.
type State struct {
	NumVertices int
	UT          float64
	UsL         []float64
	UsE         []float64
}

// NewState draws a fresh uniform state for paths of numVertices
// vertices
func NewState(rng *rand.Rand, numVertices int) State {
	s := State{
		NumVertices: numVertices,
		UT:          rng.Float64(),
		UsL:         make([]float64, 3*numVertices),
		UsE:         make([]float64, 3*numVertices),
	}
	for i := range s.UsL {
		s.UsL[i] = rng.Float64()
		s.UsE[i] = rng.Float64()
	}
	return s
}

// LargeStep resamples every coordinate independently
func (s State) LargeStep(rng *rand.Rand) State {
	return NewState(rng, s.NumVertices)
}

// SmallStep perturbs every coordinate with the two-scale exponential
// kernel
func (s State) SmallStep(rng *rand.Rand) State {
	next := State{
		NumVertices: s.NumVertices,
		UT:          mutation.Perturb(rng, s.UT, mutation.PerturbS1, mutation.PerturbS2),
		UsL:         make([]float64, len(s.UsL)),
		UsE:         make([]float64, len(s.UsE)),
	}
	for i := range s.UsL {
		next.UsL[i] = mutation.Perturb(rng, s.UsL[i], mutation.PerturbS1, mutation.PerturbS2)
		next.UsE[i] = mutation.Perturb(rng, s.UsE[i], mutation.PerturbS1, mutation.PerturbS2)
	}
	return next
}

// ChangeTechnique perturbs only the technique selector, moving the
// connection point while keeping the subpath coordinates
func (s State) ChangeTechnique(rng *rand.Rand) State {
	next := s.clone()
	next.UT = mutation.Perturb(rng, s.UT, mutation.PerturbS1, mutation.PerturbS2)
	return next
}

func (s State) clone() State {
	next := State{NumVertices: s.NumVertices, UT: s.UT}
	next.UsL = append([]float64(nil), s.UsL...)
	next.UsE = append([]float64(nil), s.UsE...)
	return next
}
