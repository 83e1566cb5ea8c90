package mlt

import (
	"math/rand"

	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// CachedPath is a decoded state: the path, its connection strategy and
// the factors of its multiplexed target density
type CachedPath struct {
	S, T  int
	P     path.Path
	Cstar core.Vec3
	W     float64
}

// Contribution is Cstar weighted by the MIS weight of the decoded
// strategy
func (c CachedPath) Contribution() core.Vec3 {
	return c.Cstar.Multiply(c.W)
}

// ScalarContrib reduces the contribution to the chain's scalar target
func (c CachedPath) ScalarContrib() float64 {
	return path.ScalarContrib(c.Contribution())
}

// decodeSubpath replays a subpath from recorded primary samples.
// Triple i generates vertex i: the endpoint triple holds the position
// pair and the emitter selector, later triples the direction pair and
// the component selector.
func decodeSubpath(sc *scene.Scene, us []float64, transDir scene.TransDir, maxNumVertices int) path.Subpath {
	var sp path.Subpath
	sample := func(numVertices int, prim *scene.Primitive, usage path.SampleUsage, index int) float64 {
		switch usage {
		case path.EmitterSelection:
			return us[2]
		case path.Position:
			return us[index]
		case path.Direction:
			return us[3*(numVertices-1)+index]
		case path.ComponentSelection:
			return us[3*(numVertices-1)+2]
		}
		return 0
	}
	path.TraceFromEndpoint(sc, nil, nil, 0, maxNumVertices, transDir, sample,
		func(numVertices int, v *path.Vertex) bool {
			sp.Vertices = append(sp.Vertices, *v)
			return true
		})
	return sp
}

// InvCDF maps a state to its path. The technique selector picks the
// connection strategy; decoding fails when either subpath is shorter
// than its side of the connection or the contribution vanishes.
func InvCDF(s State, sc *scene.Scene) (CachedPath, bool) {
	n := s.NumVertices
	subpathE := decodeSubpath(sc, s.UsE, scene.EL, n)
	subpathL := decodeSubpath(sc, s.UsL, scene.LE, n)

	t := min(n, int(s.UT*float64(n+1)))
	sSplit := n - t
	if t > len(subpathE.Vertices) || sSplit > len(subpathL.Vertices) {
		return CachedPath{}, false
	}

	p, ok := path.Connect(sc, &subpathL, &subpathE, sSplit, t)
	if !ok {
		return CachedPath{}, false
	}
	cstar := p.EvaluateUnweightContribution(sc, sSplit)
	if cstar.IsBlack() {
		return CachedPath{}, false
	}
	w := p.EvaluateMISWeight(sc, sSplit)
	return CachedPath{S: sSplit, T: t, P: p, Cstar: cstar, W: w}, true
}

// CDF maps a path with a chosen connection strategy back to a state
// that InvCDF decodes to it. Coordinates the path does not determine
// are drawn fresh.
func CDF(p *path.Path, s int, sc *scene.Scene, rng *rand.Rand) State {
	n := p.Length()
	t := n - s
	state := NewState(rng, n)
	cdfSubpath(sc, rng, p, s, scene.LE, state.UsL)
	cdfSubpath(sc, rng, p, t, scene.EL, state.UsE)
	state.UT = core.Clamp((float64(t)+rng.Float64())/float64(n+1), 0, 1)
	return state
}

// cdfSubpath writes the triples reproducing the first k vertices of
// the path walked in transDir
func cdfSubpath(sc *scene.Scene, rng *rand.Rand, p *path.Path, k int, transDir scene.TransDir, us []float64) {
	for i := 0; i < k; i++ {
		if i == 0 {
			if transDir == scene.EL {
				continue // the aperture is a delta, any coordinates decode to it
			}
			v0 := p.Vertex(0, scene.LE)
			u := v0.Primitive.Light.InversePositionSample(v0.Geom.P)
			idx := sc.LightIndex(v0.Primitive)
			numLights := float64(sc.NumLights())
			us[0] = u.X
			us[1] = u.Y
			us[2] = core.Clamp((rng.Float64()+float64(idx))/numLights, 0, 1)
			continue
		}

		vp := p.Vertex(i-1, transDir)
		v := p.Vertex(i, transDir)
		wo := v.Geom.P.Subtract(vp.Geom.P).Normalize()
		localWo := vp.Geom.ToLocal(wo)

		switch {
		case vp.Primitive.Type()&scene.Eye != 0:
			rp, ok := vp.Primitive.RasterPosition(wo, vp.Geom)
			if !ok {
				continue
			}
			us[3*i] = rp.X
			us[3*i+1] = rp.Y
		case vp.Type&(scene.Light|scene.Diffuse) != 0:
			u := core.UniformConcentricDiskSampleInverse(core.NewVec2(localWo.X, localWo.Y))
			us[3*i] = u.X
			us[3*i+1] = u.Y
		case vp.Type&scene.Glossy != 0:
			wi := p.Vertex(i-2, transDir).Geom.P.Subtract(vp.Geom.P).Normalize()
			localWi := vp.Geom.ToLocal(wi)
			h := localWi.Add(localWo).Normalize()
			u := core.SampleGGXInverse(vp.Primitive.Bsdf.Glossiness(), h)
			us[3*i] = u.X
			us[3*i+1] = u.Y
		case vp.Type&scene.Specular != 0:
			if fb, ok := vp.Primitive.Bsdf.(*scene.FresnelBSDF); ok {
				wi := core.Vec3{}
				if i >= 2 {
					wi = p.Vertex(i-2, transDir).Geom.P.Subtract(vp.Geom.P).Normalize()
				}
				fr := fb.FresnelTerm(vp.Geom, wi)
				localWi := vp.Geom.ToLocal(wi)
				if core.LocalCos(localWi)*core.LocalCos(localWo) >= 0 {
					us[3*i+2] = rng.Float64() * (fr - core.Eps)
				} else {
					us[3*i+2] = core.Eps + fr + rng.Float64()*(1-fr-core.Eps)
				}
			}
		}
	}
}
