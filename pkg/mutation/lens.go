package mutation

import (
	"math/rand"

	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// mutateLens perturbs the sensor ray and re-traces the eye subpath up
// to the first connectable vertex, then reconnects it to the untouched
// light prefix
func mutateLens(sc *scene.Scene, rng *rand.Rand, currP *path.Path) (Result, bool) {
	n := currP.Length()
	sp, ok := retraceEyeSubpath(sc, rng, currP, false)
	if !ok {
		return Result{}, false
	}
	nE := len(sp.Vertices)
	nL := n - nE

	subpathL := path.Subpath{Vertices: currP.Vertices[:nL]}
	prop, ok := path.Connect(sc, &subpathL, &sp, nL, nE)
	if !ok {
		return Result{}, false
	}
	if prop.EvaluateF(nL).IsBlack() {
		return Result{}, false
	}
	return Result{Path: prop}, true
}

// qLens is the inverse scalar contribution of the regenerated eye
// side: the sampling weight of the traced tail times the connection
// term at the first connectable vertex
func qLens(sc *scene.Scene, y *path.Path) float64 {
	n := y.Length()
	s := n - 1
	for s >= 0 && y.Vertices[s].Type&(scene.Eye|scene.Specular) != 0 {
		s--
	}
	if s < 0 {
		return 0
	}
	return inverseScalarContrib(sc, y, s)
}

// inverseScalarContrib is the shared Q form of the perturbation
// strategies: 1 / Luminance(alphaE(n-s) * cst(s))
func inverseScalarContrib(sc *scene.Scene, y *path.Path, s int) float64 {
	n := y.Length()
	alpha := y.EvaluateAlpha(sc, n-s, scene.EL)
	if alpha.IsBlack() {
		return 0
	}
	cst := y.EvaluateCst(s)
	if cst.IsBlack() {
		return 0
	}
	c := path.ScalarContrib(alpha.MultiplyVec(cst))
	if c <= 0 {
		return 0
	}
	return 1 / c
}
