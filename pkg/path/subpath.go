package path

import (
	"math/rand"

	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// SampleUsage tags what a requested primary sample is for, so
// injected samplers can substitute specific decisions
type SampleUsage int

const (
	// EmitterSelection chooses the emitter primitive at an endpoint
	EmitterSelection SampleUsage = iota
	// Position places the endpoint on its emitter
	Position
	// Direction picks the outgoing direction at the current vertex
	Direction
	// ComponentSelection picks a BSDF component (Fresnel branch)
	ComponentSelection
)

// SampleFunc supplies one primary sample scalar. numVertices is the
// subpath length being built including the vertex under construction,
// prim is the primitive consuming the sample and index addresses the
// scalar within a 2D request.
type SampleFunc func(numVertices int, prim *scene.Primitive, usage SampleUsage, index int) float64

// ProcessFunc receives each new vertex; returning false stops the walk
type ProcessFunc func(numVertices int, v *Vertex) bool

// RandomSampleFunc adapts a random generator to SampleFunc
func RandomSampleFunc(rng *rand.Rand) SampleFunc {
	return func(numVertices int, prim *scene.Primitive, usage SampleUsage, index int) float64 {
		return rng.Float64()
	}
}

// Subpath is a partial transport path growing from one endpoint
type Subpath struct {
	Vertices []Vertex
}

// TraceFromEndpoint runs the random walk. When initVertex is nil a
// fresh endpoint of the transport direction's kind is sampled first;
// otherwise the walk continues from initVertex (with initPrev behind
// it) and startNumVertices counts the vertices already present.
// The walk stops at maxNumVertices total vertices, on a sampling or
// intersection failure, or when process returns false.
func TraceFromEndpoint(sc *scene.Scene, initVertex, initPrev *Vertex, startNumVertices, maxNumVertices int, transDir scene.TransDir, sample SampleFunc, process ProcessFunc) {
	var v, pv *Vertex
	numVertices := 0

	if initVertex == nil {
		endpointType := scene.Light
		if transDir == scene.EL {
			endpointType = scene.Eye
		}
		prim := sc.SampleEmitter(endpointType, sample(1, nil, EmitterSelection, 0))
		geom := prim.SamplePosition(endpointType, core.NewVec2(
			sample(1, prim, Position, 0),
			sample(1, prim, Position, 1),
		))
		endpoint := Vertex{Type: endpointType, Geom: geom, Primitive: prim}
		numVertices = 1
		if !process(numVertices, &endpoint) {
			return
		}
		v = &endpoint
	} else {
		v = initVertex
		pv = initPrev
		numVertices = startNumVertices
	}

	for maxNumVertices < 0 || numVertices < maxNumVertices {
		wi := core.Vec3{}
		if pv != nil {
			wi = pv.Geom.P.Subtract(v.Geom.P).Normalize()
		}
		u := core.NewVec2(
			sample(numVertices+1, v.Primitive, Direction, 0),
			sample(numVertices+1, v.Primitive, Direction, 1),
		)
		uComp := sample(numVertices+1, v.Primitive, ComponentSelection, 0)
		wo, ok := v.Primitive.SampleDirection(u, uComp, v.Type, v.Geom, wi)
		if !ok {
			break
		}
		fs := v.Primitive.EvaluateDirection(v.Geom, v.Type, wi, wo, transDir, false)
		if fs.IsBlack() {
			break
		}
		isect, ok := sc.Intersect(core.NewRay(v.Geom.P, wo))
		if !ok {
			break
		}
		next := Vertex{
			Type:      isect.Primitive.Type() &^ scene.Emitter,
			Geom:      isect.Geom,
			Primitive: isect.Primitive,
		}
		numVertices++
		if !process(numVertices, &next) {
			break
		}
		pv = v
		v = &next
	}
}

// SampleVerticesFromEndpoint appends up to count sampled vertices,
// continuing from the current back vertex if any, and returns how many
// were added
func (sp *Subpath) SampleVerticesFromEndpoint(sc *scene.Scene, rng *rand.Rand, transDir scene.TransDir, count int) int {
	if count <= 0 {
		return 0
	}
	start := len(sp.Vertices)
	var initV, initPrev *Vertex
	if start > 0 {
		initV = &sp.Vertices[start-1]
		if start > 1 {
			initPrev = &sp.Vertices[start-2]
		}
	}
	TraceFromEndpoint(sc, initV, initPrev, start, start+count, transDir, RandomSampleFunc(rng),
		func(numVertices int, v *Vertex) bool {
			sp.Vertices = append(sp.Vertices, *v)
			return true
		})
	return len(sp.Vertices) - start
}

// SampleSubpath builds a fresh subpath of at most maxNumVertices
// vertices from a new endpoint
func SampleSubpath(sc *scene.Scene, rng *rand.Rand, transDir scene.TransDir, maxNumVertices int) Subpath {
	var sp Subpath
	sp.SampleVerticesFromEndpoint(sc, rng, transDir, maxNumVertices)
	return sp
}
