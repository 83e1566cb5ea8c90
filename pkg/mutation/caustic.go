package mutation

import (
	"math/rand"

	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// mutateCaustic is the light-side mirror of the lens mutation: the
// emission direction is perturbed, the chain re-traced through the
// speculars up to the vertex seen by the eye, and the eye endpoint
// reattached
func mutateCaustic(sc *scene.Scene, rng *rand.Rand, currP *path.Path) (Result, bool) {
	n := currP.Length()
	if n <= 2 || currP.Vertices[n-2].IsSpecular() {
		return Result{}, false
	}

	// first non-specular vertex below the one the eye connects to
	iL := n - 3
	for iL >= 0 && currP.Vertices[iL].IsSpecular() {
		iL--
	}
	if iL < 0 {
		return Result{}, false
	}

	failed := false
	var cached core.Vec2
	sp := path.Subpath{Vertices: append([]path.Vertex(nil), currP.Vertices[:iL+1]...)}

	sample := func(numVertices int, prim *scene.Primitive, usage path.SampleUsage, index int) float64 {
		if usage == path.Direction && prim.Type()&scene.Specular == 0 {
			if index == 0 {
				u, ok := PerturbDirectionSample(currP, rng, prim, numVertices-2, scene.LE)
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
		if failed {
			return false
		}
		if v.IsSpecular() != currP.Vertices[numVertices-1].IsSpecular() {
			failed = true
			return false
		}
		sp.Vertices = append(sp.Vertices, *v)
		return numVertices < n-1
	}

	var initPrev *path.Vertex
	if iL > 0 {
		initPrev = &sp.Vertices[iL-1]
	}
	path.TraceFromEndpoint(sc, &sp.Vertices[iL], initPrev, iL+1, n-1, scene.LE, sample, process)
	if failed || len(sp.Vertices) != n-1 {
		return Result{}, false
	}
	e := &sp.Vertices[n-2]
	if e.Geom.Infinite || e.IsSpecular() {
		return Result{}, false
	}

	subpathE := path.Subpath{Vertices: []path.Vertex{currP.Vertices[n-1]}}
	prop, ok := path.Connect(sc, &sp, &subpathE, n-1, 1)
	if !ok {
		return Result{}, false
	}
	if prop.EvaluateF(n - 1).IsBlack() {
		return Result{}, false
	}
	return Result{Path: prop}, true
}

// qCaustic is the light-side Q: the sampling weight of the whole light
// subpath times the connection to the eye
func qCaustic(sc *scene.Scene, y *path.Path) float64 {
	n := y.Length()
	alpha := y.EvaluateAlpha(sc, n-1, scene.LE)
	if alpha.IsBlack() {
		return 0
	}
	cst := y.EvaluateCst(n - 1)
	if cst.IsBlack() {
		return 0
	}
	c := path.ScalarContrib(alpha.MultiplyVec(cst))
	if c <= 0 {
		return 0
	}
	return 1 / c
}
