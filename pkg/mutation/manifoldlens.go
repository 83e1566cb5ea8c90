package mutation

import (
	"math"
	"math/rand"

	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/manifold"
	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// WalkSink, when set, observes every manifold walk issued by the
// manifold lens mutation
var WalkSink manifold.TraceSink

// mutateManifoldLens perturbs the eye tail like the lens mutation,
// then solves for the specular light chain landing on the new anchor
// instead of resampling it. The reverse walk must also converge, so
// the move stays reversible.
func mutateManifoldLens(sc *scene.Scene, rng *rand.Rand, currP *path.Path) (Result, bool) {
	n := currP.Length()
	sp, ok := retraceEyeSubpath(sc, rng, currP, false)
	if !ok {
		return Result{}, false
	}
	nE := len(sp.Vertices)
	nL := n - nE
	if nL < 2 {
		return Result{}, false
	}

	// light endpoint, specular chain and the old anchor
	seed := path.Subpath{Vertices: append([]path.Vertex(nil), currP.Vertices[:nL+1]...)}
	target := sp.Vertices[nE-1].Geom.P
	conn, ok := manifold.Walk(sc, seed, target, WalkSink)
	if !ok {
		return Result{}, false
	}
	if _, ok := manifold.Walk(sc, conn, seed.Vertices[nL].Geom.P, WalkSink); !ok {
		return Result{}, false
	}

	vs := make([]path.Vertex, 0, n)
	vs = append(vs, conn.Vertices[:nL]...)
	for i := nE - 1; i >= 0; i-- {
		vs = append(vs, sp.Vertices[i])
	}
	prop := path.Path{Vertices: vs}
	if prop.EvaluateF(0).IsBlack() {
		return Result{}, false
	}
	return Result{Path: prop}, true
}

// qManifoldLens combines the specular reflectance products of both
// sides, the sensor direction density and the generalized geometry
// factor of the solved chain
func qManifoldLens(sc *scene.Scene, y *path.Path) float64 {
	n := y.Length()
	t := 0
	for t < n && y.Vertices[n-1-t].Type&(scene.Eye|scene.Specular) != 0 {
		t++
	}
	s := n - t - 1
	if s < 1 {
		return 0
	}

	prodFs := y.EvaluateSpecularReflectances(1, s, scene.LE).
		MultiplyVec(y.EvaluateSpecularReflectances(1, t, scene.EL))
	if prodFs.IsBlack() {
		return 0
	}

	vE := &y.Vertices[n-1]
	wo := y.Vertices[n-2].Geom.P.Subtract(vE.Geom.P).Normalize()
	pED := vE.Primitive.EvaluateDirectionPDF(vE.Geom, vE.Type, core.Vec3{}, wo, false)
	if pED == 0 {
		return 0
	}

	sub := path.Subpath{Vertices: y.Vertices[:s+1]}
	multiG, ok := manifold.ConstraintJacobianDeterminant(sub)
	if !ok {
		return 0
	}
	multiG *= scene.GeometryTerm(y.Vertices[0].Geom, y.Vertices[1].Geom)

	c := path.ScalarContrib(prodFs.Multiply(multiG / pED))
	if c <= 0 || math.IsNaN(c) {
		return 0
	}
	return 1 / c
}
