package manifold

import (
	"math"
	"testing"

	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// mirrorChainFixture is an analytically solvable three-vertex chain:
// two diffuse anchors above a curved mirror vertex
func mirrorChainFixture() path.Subpath {
	mirror := &scene.Primitive{Bsdf: &scene.ReflectBSDF{R: core.NewVec3(1, 1, 1)}}
	return path.Subpath{Vertices: []path.Vertex{
		{
			Type: scene.Diffuse,
			Geom: scene.SurfaceGeometry{
				P:    core.NewVec3(-1, 2, 0),
				Sn:   core.NewVec3(0, -1, 0),
				Gn:   core.NewVec3(0, -1, 0),
				Dpdu: core.NewVec3(-1, 0, 0),
				Dpdv: core.NewVec3(0, 0, 1),
			},
		},
		{
			Type:      scene.Specular,
			Primitive: mirror,
			Geom: scene.SurfaceGeometry{
				P:    core.NewVec3(0, 1, 0),
				Sn:   core.NewVec3(0, 1, 0),
				Gn:   core.NewVec3(0, 1, 0),
				Dpdu: core.NewVec3(1, 0, 0),
				Dpdv: core.NewVec3(0, 0, 1),
				Dndu: core.NewVec3(1, 0, 0),
			},
		},
		{
			Type: scene.Diffuse,
			Geom: scene.SurfaceGeometry{
				P:    core.NewVec3(1, 2, 0),
				Sn:   core.NewVec3(0, -1, 0),
				Gn:   core.NewVec3(0, -1, 0),
				Dpdu: core.NewVec3(1, 0, 0),
				Dpdv: core.NewVec3(0, 0, 1),
			},
		},
	}}
}

func checkMat2(t *testing.T, name string, got, want core.Mat2) {
	t.Helper()
	if math.Abs(got.M00-want.M00) > 1e-9 || math.Abs(got.M01-want.M01) > 1e-9 ||
		math.Abs(got.M10-want.M10) > 1e-9 || math.Abs(got.M11-want.M11) > 1e-9 {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func TestConstraintJacobianMirrorChain(t *testing.T) {
	sp := mirrorChainFixture()
	blocks := ComputeConstraintJacobian(sp)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	// reflection keeps the half vector unnormalized, which scales every
	// block of this chain by |H| = sqrt(2) against the normalized form
	// diag(-1/4, 1/2), diag(-3/2, -1), diag(1/4, 1/2)
	r2 := math.Sqrt2
	checkMat2(t, "A", blocks[0].A, core.NewMat2(-0.25*r2, 0, 0, 0.5*r2))
	checkMat2(t, "B", blocks[0].B, core.NewMat2(-1.5*r2, 0, 0, -r2))
	checkMat2(t, "C", blocks[0].C, core.NewMat2(0.25*r2, 0, 0, 0.5*r2))
}

func TestConstraintJacobianDeterminantMirrorChain(t *testing.T) {
	sp := mirrorChainFixture()
	det, ok := ConstraintJacobianDeterminant(sp)
	if !ok {
		t.Fatal("determinant should exist for the mirror chain")
	}
	// inv(B) * C = diag(-1/6, -1/2), determinant 1/12
	if math.Abs(det-1.0/12) > 1e-9 {
		t.Errorf("determinant = %v, want 1/12", det)
	}
	g := scene.GeometryTerm(sp.Vertices[0].Geom, sp.Vertices[1].Geom)
	if math.Abs(1/(det*g)-48) > 1e-6 {
		t.Errorf("1/(det*G) = %v, want 48", 1/(det*g))
	}
}

func TestBlockSolveMatchesDense(t *testing.T) {
	blocks := []VertexBlock{
		{B: core.NewMat2(2, 0.5, -0.3, 1.5), C: core.NewMat2(0.2, -0.1, 0.4, 0.3)},
		{A: core.NewMat2(-0.5, 0.2, 0.1, 0.6), B: core.NewMat2(1.8, -0.4, 0.3, 2.2), C: core.NewMat2(0.1, 0.2, -0.3, 0.1)},
		{A: core.NewMat2(0.3, -0.2, 0.5, 0.1), B: core.NewMat2(2.5, 0.7, -0.6, 1.9)},
	}
	rhs := []core.Vec2{core.NewVec2(1, -2), core.NewVec2(0.5, 0.3), core.NewVec2(-1.2, 0.8)}

	wBlock, ok := SolveBlockTridiagonal(blocks, rhs)
	if !ok {
		t.Fatal("block solve failed")
	}
	wDense, ok := SolveDense(blocks, rhs)
	if !ok {
		t.Fatal("dense solve failed")
	}
	for i := range rhs {
		if wBlock[i].Subtract(wDense[i]).Length() > 1e-9 {
			t.Errorf("solution %d: block %v, dense %v", i, wBlock[i], wDense[i])
		}
	}
}

func TestSolveRejectsBadInput(t *testing.T) {
	if _, ok := SolveBlockTridiagonal(nil, nil); ok {
		t.Error("empty system should fail")
	}
	blocks := []VertexBlock{{B: core.NewMat2(1, 2, 2, 4)}}
	rhs := []core.Vec2{core.NewVec2(1, 1)}
	if _, ok := SolveBlockTridiagonal(blocks, rhs); ok {
		t.Error("singular pivot should fail the block solve")
	}
}

// flatMirrorScene is a mirror floor under a diffuse ceiling, with the
// sensor placed outside the geometry
func flatMirrorScene() *scene.Scene {
	return scene.NewScene([]*scene.Primitive{
		{
			Name:  "mirror",
			Shape: scene.NewQuad(core.NewVec3(-10, 0, -10), core.NewVec3(0, 0, 20), core.NewVec3(20, 0, 0)),
			Bsdf:  &scene.ReflectBSDF{R: core.NewVec3(1, 1, 1)},
		},
		{
			Name:  "ceiling",
			Shape: scene.NewQuad(core.NewVec3(-10, 2, -10), core.NewVec3(20, 0, 0), core.NewVec3(0, 0, 20)),
			Bsdf:  &scene.DiffuseBSDF{R: core.NewVec3(0.7, 0.7, 0.7)},
		},
		{
			Name:   "camera",
			Sensor: scene.NewPinholeSensor(core.NewVec3(0, 1, 30), core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0), 40, 1),
		},
	})
}

func vertexAt(t *testing.T, sc *scene.Scene, origin, dir core.Vec3, wantName string) path.Vertex {
	t.Helper()
	isect, ok := sc.Intersect(core.NewRay(origin, dir))
	if !ok || isect.Primitive.Name != wantName {
		t.Fatalf("setup ray missed %q", wantName)
	}
	return path.Vertex{
		Type:      isect.Primitive.Type() &^ scene.Emitter,
		Geom:      isect.Geom,
		Primitive: isect.Primitive,
	}
}

func TestWalkFlatMirror(t *testing.T) {
	sc := flatMirrorScene()
	seed := path.Subpath{Vertices: []path.Vertex{
		vertexAt(t, sc, core.NewVec3(-1, 0.5, 0), core.NewVec3(0, 1, 0), "ceiling"),
		vertexAt(t, sc, core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0), "mirror"),
		vertexAt(t, sc, core.NewVec3(1, 0.5, 0), core.NewVec3(0, 1, 0), "ceiling"),
	}}

	target := core.NewVec3(0.5, 2, 0)
	walked, ok := Walk(sc, seed, target, nil)
	if !ok {
		t.Fatal("walk on the flat mirror should converge")
	}
	if walked.Vertices[2].Geom.P.Subtract(target).Length() > 1e-2 {
		t.Errorf("far anchor landed at %v, want %v", walked.Vertices[2].Geom.P, target)
	}
	// flat mirror image solution: the bounce sits at the midpoint x
	wantBounce := core.NewVec3(-0.25, 0, 0)
	if walked.Vertices[1].Geom.P.Subtract(wantBounce).Length() > 1e-2 {
		t.Errorf("bounce at %v, want %v", walked.Vertices[1].Geom.P, wantBounce)
	}
	// the near anchor never moves
	if walked.Vertices[0].Geom.P.Subtract(seed.Vertices[0].Geom.P).Length() > 0 {
		t.Error("near anchor moved during the walk")
	}
}

func TestWalkAlreadyConverged(t *testing.T) {
	sc := flatMirrorScene()
	seed := path.Subpath{Vertices: []path.Vertex{
		vertexAt(t, sc, core.NewVec3(-1, 0.5, 0), core.NewVec3(0, 1, 0), "ceiling"),
		vertexAt(t, sc, core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0), "mirror"),
		vertexAt(t, sc, core.NewVec3(1, 0.5, 0), core.NewVec3(0, 1, 0), "ceiling"),
	}}
	walked, ok := Walk(sc, seed, seed.Vertices[2].Geom.P, nil)
	if !ok {
		t.Fatal("walk to the current anchor should converge immediately")
	}
	if walked.Vertices[1].Geom.P.Subtract(seed.Vertices[1].Geom.P).Length() > 1e-9 {
		t.Error("converged walk should not move the chain")
	}
}

func TestWalkRejectsShortChains(t *testing.T) {
	sc := flatMirrorScene()
	if _, ok := Walk(sc, path.Subpath{}, core.Vec3{}, nil); ok {
		t.Error("empty chain should fail")
	}
}
