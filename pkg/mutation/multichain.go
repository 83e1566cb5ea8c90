package mutation

import (
	"math/rand"

	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// mutateMultichain perturbs the sensor ray and re-traces the eye side
// across every specular chain the current path threads through,
// perturbing each intermediate non-specular bounce as well
func mutateMultichain(sc *scene.Scene, rng *rand.Rand, currP *path.Path) (Result, bool) {
	n := currP.Length()
	sp, ok := retraceEyeSubpath(sc, rng, currP, true)
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

// qMultichain evaluates the shared Q form at the first vertex pair
// where neither side of the connection is specular
func qMultichain(sc *scene.Scene, y *path.Path) float64 {
	n := y.Length()
	iL := n - 2
	for iL >= 1 && (y.Vertices[iL].IsSpecular() || y.Vertices[iL-1].IsSpecular()) {
		iL--
	}
	if iL < 0 {
		return 0
	}
	return inverseScalarContrib(sc, y, iL)
}
