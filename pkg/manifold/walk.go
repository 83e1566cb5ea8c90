package manifold

import (
	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

const (
	// MaxBeta bounds the Newton step scale
	MaxBeta = 100.0
	// WalkEps is the relative convergence tolerance on the far anchor
	WalkEps = 1e-4
	// MaxIterations bounds the Newton iteration count
	MaxIterations = 50
)

// Walk moves the specular chain of seed so that its far anchor lands
// on target, holding the near anchor fixed. The seed must be a chain
// anchor / specular* / anchor, with the interior vertices specular.
// Returns the converged chain, or false when the damped Newton
// iteration does not converge.
func Walk(sc *scene.Scene, seed path.Subpath, target core.Vec3, sink TraceSink) (path.Subpath, bool) {
	if sink == nil {
		sink = NopSink{}
	}
	n := len(seed.Vertices)
	if n < 3 {
		return path.Subpath{}, false
	}

	curr := path.Subpath{Vertices: append([]path.Vertex(nil), seed.Vertices...)}
	beta := MaxBeta

	for iter := 0; iter < MaxIterations; iter++ {
		sink.Iteration(iter, &curr, beta)

		// scene scale for the relative convergence test
		scale := 0.0
		for _, v := range curr.Vertices {
			if l := v.Geom.P.Length(); l > scale {
				scale = l
			}
		}
		last := &curr.Vertices[n-1]
		if last.Geom.P.Subtract(target).Length() < WalkEps*scale {
			return curr, true
		}

		next, ok := walkStep(sc, &curr, target, beta)
		if ok {
			d := last.Geom.P.Subtract(target).LengthSquared()
			dn := next.Vertices[n-1].Geom.P.Subtract(target).LengthSquared()
			ok = dn < d
		}
		if !ok {
			beta *= -0.5
			continue
		}
		beta = core.Clamp(beta*2, -MaxBeta, MaxBeta)
		curr = next
	}
	return path.Subpath{}, false
}

// walkStep performs one damped Newton step: solve the constraint
// system for the tangent motion of the first chain vertex, move it,
// then re-propagate the chain through the scene
func walkStep(sc *scene.Scene, curr *path.Subpath, target core.Vec3, beta float64) (path.Subpath, bool) {
	n := len(curr.Vertices)
	blocks := ComputeConstraintJacobian(*curr)
	m := len(blocks)

	last := &curr.Vertices[n-1]
	delta := target.Subtract(last.Geom.P)
	rhs := make([]core.Vec2, m)
	rhs[m-1] = blocks[m-1].C.MulVec(core.NewVec2(
		last.Geom.Dpdu.Dot(delta),
		last.Geom.Dpdv.Dot(delta),
	))

	w, ok := SolveBlockTridiagonal(blocks, rhs)
	if !ok {
		w, ok = SolveDense(blocks, rhs)
		if !ok {
			return path.Subpath{}, false
		}
	}

	v1 := &curr.Vertices[1]
	step := v1.Geom.Dpdu.Multiply(w[0].X).Add(v1.Geom.Dpdv.Multiply(w[0].Y))
	p := v1.Geom.P.Subtract(step.Multiply(beta))

	return propagate(sc, curr, p)
}

// propagate rebuilds the chain from the fixed near anchor: aim at the
// moved first vertex, then continue through each specular interaction
// keeping the reflect/refract configuration of the current chain
func propagate(sc *scene.Scene, curr *path.Subpath, p core.Vec3) (path.Subpath, bool) {
	n := len(curr.Vertices)
	next := path.Subpath{Vertices: make([]path.Vertex, 0, n)}
	next.Vertices = append(next.Vertices, curr.Vertices[0])

	for i := 1; i < n; i++ {
		prev := &next.Vertices[i-1]
		var wo core.Vec3
		if i == 1 {
			wo = p.Subtract(prev.Geom.P).Normalize()
		} else {
			prevPrev := &next.Vertices[i-2]
			wi := prevPrev.Geom.P.Subtract(prev.Geom.P).Normalize()
			uComp := interactionComponent(curr, i-1)
			var ok bool
			wo, ok = prev.Primitive.SampleDirection(core.Vec2{}, uComp, prev.Type, prev.Geom, wi)
			if !ok {
				return path.Subpath{}, false
			}
		}
		isect, ok := sc.Intersect(core.NewRay(prev.Geom.P, wo))
		if !ok {
			return path.Subpath{}, false
		}
		v := path.Vertex{
			Type:      isect.Primitive.Type() &^ scene.Emitter,
			Geom:      isect.Geom,
			Primitive: isect.Primitive,
		}
		if i < n-1 && v.Type&scene.Specular == 0 {
			return path.Subpath{}, false
		}
		if i == n-1 && v.Type&scene.Specular != 0 {
			return path.Subpath{}, false
		}
		next.Vertices = append(next.Vertices, v)
	}
	return next, true
}

// interactionComponent reads whether the current chain reflects or
// refracts at vertex i and returns the component sample reproducing
// that choice
func interactionComponent(curr *path.Subpath, i int) float64 {
	v := &curr.Vertices[i]
	wi := curr.Vertices[i-1].Geom.P.Subtract(v.Geom.P).Normalize()
	wo := curr.Vertices[i+1].Geom.P.Subtract(v.Geom.P).Normalize()
	cwi := core.LocalCos(v.Geom.ToLocal(wi))
	cwo := core.LocalCos(v.Geom.ToLocal(wo))
	if cwi*cwo >= 0 {
		// same hemisphere: reflection
		return 0
	}
	return 1
}
