package mutation

import (
	"math/rand"

	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// retraceEyeSubpath re-traces the eye side of the path, perturbing the
// primary sample of every non-specular direction decision and keeping
// specular interactions deterministic. The specular signature of the
// new subpath must match the current path vertex by vertex.
//
// The walk stops at the first connectable vertex; with multichain set
// it continues whenever the current path continues into another
// specular chain.
func retraceEyeSubpath(sc *scene.Scene, rng *rand.Rand, currP *path.Path, multichain bool) (path.Subpath, bool) {
	n := currP.Length()
	failed := false
	var cached core.Vec2

	sp := path.Subpath{Vertices: []path.Vertex{currP.Vertices[n-1]}}

	sample := func(numVertices int, prim *scene.Primitive, usage path.SampleUsage, index int) float64 {
		if usage == path.Direction && prim.Type()&scene.Specular == 0 {
			if index == 0 {
				u, ok := PerturbDirectionSample(currP, rng, prim, numVertices-2, scene.EL)
				if !ok {
					failed = true
					return 0
				}
				cached = u
				return u.X
			}
			return cached.Y
		}
		return rng.Float64()
	}

	process := func(numVertices int, v *path.Vertex) bool {
		if failed || numVertices > n {
			return false
		}
		if v.IsSpecular() != currP.Vertices[n-numVertices].IsSpecular() {
			failed = true
			return false
		}
		sp.Vertices = append(sp.Vertices, *v)
		if v.IsSpecular() {
			return true
		}
		if multichain {
			next := n - numVertices - 1
			return next >= 0 && currP.Vertices[next].IsSpecular()
		}
		return false
	}

	path.TraceFromEndpoint(sc, &sp.Vertices[0], nil, 1, n, scene.EL, sample, process)
	if failed {
		return path.Subpath{}, false
	}
	e := &sp.Vertices[len(sp.Vertices)-1]
	if e.Geom.Infinite || e.Primitive.Type()&scene.Eye != 0 || e.IsSpecular() {
		return path.Subpath{}, false
	}
	return sp, true
}
