package mutation

import (
	"math/rand"

	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// mutateBidir deletes a random range of kd vertices and regenerates
// it by sampling fresh vertices from both remaining subpath ends
func mutateBidir(sc *scene.Scene, rng *rand.Rand, currP *path.Path) (Result, bool) {
	n := currP.Length()

	// deleted range length, geometrically concentrated on short ranges
	kdDist := core.NewTwoTailedGeometricDist(2)
	kdDist.Configure(1, 1, n)
	kd := kdDist.Sample(rng.Float64())

	// range placement and the split of regenerated vertices
	dL := core.Clamp2Int(int(rng.Float64()*float64(n-kd+1)), 0, n-kd)
	dM := dL + kd - 1
	aL := core.Clamp2Int(int(rng.Float64()*float64(kd+1)), 0, kd)
	aM := kd - aL

	subpathL := path.Subpath{Vertices: append([]path.Vertex(nil), currP.Vertices[:dL]...)}
	if subpathL.SampleVerticesFromEndpoint(sc, rng, scene.LE, aL) != aL {
		return Result{}, false
	}

	subpathE := path.Subpath{}
	for i := n - 1; i > dM; i-- {
		subpathE.Vertices = append(subpathE.Vertices, currP.Vertices[i])
	}
	if subpathE.SampleVerticesFromEndpoint(sc, rng, scene.EL, aM) != aM {
		return Result{}, false
	}

	s := dL + aL
	t := len(subpathE.Vertices)
	prop, ok := path.Connect(sc, &subpathL, &subpathE, s, t)
	if !ok {
		return Result{}, false
	}
	if prop.EvaluateF(s).IsBlack() {
		return Result{}, false
	}
	return Result{Path: prop, Subspace: Subspace{Kd: kd, DL: dL}}, true
}

// qBidir sums the inverse single-strategy contributions over every
// split of the regenerated range, the kernel density up to factors
// that cancel between the forward and reverse move
func qBidir(sc *scene.Scene, y *path.Path, subspace Subspace) float64 {
	sum := 0.0
	for i := 0; i <= subspace.Kd; i++ {
		s := subspace.DL + i
		f := path.ScalarContrib(y.EvaluateF(s))
		if f == 0 {
			continue
		}
		p := y.EvaluatePathPDF(sc, s)
		if p == 0 {
			continue
		}
		sum += p / f
	}
	return sum
}
