package scene

import (
	"github.com/df07/go-manifold-mlt/pkg/core"
)

// Intersection is a surface hit with its owning primitive
type Intersection struct {
	Geom      SurfaceGeometry
	Primitive *Primitive
}

// Scene holds the primitives and answers the queries the transport
// code needs: ray casting, visibility and emitter selection
type Scene struct {
	Primitives []*Primitive

	sensor *Primitive
	lights []*Primitive
}

const rayEps = 1e-4

// NewScene builds a scene from primitives. Exactly one primitive must
// carry a sensor.
func NewScene(primitives []*Primitive) *Scene {
	s := &Scene{Primitives: primitives}
	for _, p := range primitives {
		if p.Sensor != nil {
			s.sensor = p
		}
		if p.Light != nil {
			s.lights = append(s.lights, p)
		}
	}
	if s.sensor == nil {
		panic("scene: no sensor primitive")
	}
	return s
}

// Sensor returns the sensor primitive
func (s *Scene) Sensor() *Primitive { return s.sensor }

// NumLights returns the number of light primitives
func (s *Scene) NumLights() int { return len(s.lights) }

// LightIndex returns the position of a light primitive in the uniform
// selection order, -1 if the primitive is not a light
func (s *Scene) LightIndex(p *Primitive) int {
	for i, l := range s.lights {
		if l == p {
			return i
		}
	}
	return -1
}

// Intersect casts a ray and returns the nearest surface hit
func (s *Scene) Intersect(ray core.Ray) (Intersection, bool) {
	closest := Intersection{}
	tNearest := 0.0
	hit := false
	for _, p := range s.Primitives {
		if p.Shape == nil {
			continue
		}
		tMax := 1e30
		if hit {
			tMax = tNearest
		}
		if geom, t, ok := p.Shape.Intersect(ray, rayEps, tMax); ok {
			closest = Intersection{Geom: geom, Primitive: p}
			tNearest = t
			hit = true
		}
	}
	return closest, hit
}

// Visible reports whether the open segment between two points is
// unobstructed
func (s *Scene) Visible(p1, p2 core.Vec3) bool {
	d := p2.Subtract(p1)
	dist := d.Length()
	if dist == 0 {
		return false
	}
	ray := core.NewRay(p1, d.Divide(dist))
	for _, p := range s.Primitives {
		if p.Shape == nil {
			continue
		}
		if _, _, ok := p.Shape.Intersect(ray, rayEps, dist*(1-rayEps)); ok {
			return false
		}
	}
	return true
}

// SampleEmitter selects an emitter primitive of the given kind. Lights
// are chosen uniformly; the sensor is unique.
func (s *Scene) SampleEmitter(queryType InteractionType, u float64) *Primitive {
	if queryType&Eye != 0 {
		return s.sensor
	}
	n := len(s.lights)
	i := core.Clamp2Int(int(u*float64(n)), 0, n-1)
	return s.lights[i]
}

// EvaluateEmitterPDF is the selection probability of SampleEmitter
func (s *Scene) EvaluateEmitterPDF(p *Primitive) float64 {
	if p.Sensor != nil {
		return 1
	}
	if p.Light != nil && len(s.lights) > 0 {
		return 1 / float64(len(s.lights))
	}
	return 0
}
