package scene

import (
	"math"

	"github.com/df07/go-manifold-mlt/pkg/core"
)

// Shape is the intersection interface shared by the scene primitives
type Shape interface {
	// Intersect reports the nearest hit in (tMin, tMax)
	Intersect(ray core.Ray, tMin, tMax float64) (SurfaceGeometry, float64, bool)
}

// Quad is a parallelogram spanned by two edge vectors. The built-in
// scenes only use rectangles, so the tangent frame is orthonormal.
type Quad struct {
	Origin core.Vec3
	Ex, Ey core.Vec3

	normal core.Vec3
	tu, tv core.Vec3
	exLen  float64
	eyLen  float64
	area   float64
}

// NewQuad creates a quad from a corner and two edge vectors
func NewQuad(origin, ex, ey core.Vec3) *Quad {
	n := ex.Cross(ey)
	tu := ex.Normalize()
	return &Quad{
		Origin: origin,
		Ex:     ex,
		Ey:     ey,
		normal: n.Normalize(),
		tu:     tu,
		tv:     n.Normalize().Cross(tu),
		exLen:  ex.Length(),
		eyLen:  ey.Length(),
		area:   n.Length(),
	}
}

// Normal returns the geometric normal
func (q *Quad) Normal() core.Vec3 { return q.normal }

// Area returns the surface area
func (q *Quad) Area() float64 { return q.area }

func (q *Quad) geometryAt(p core.Vec3, u, v float64) SurfaceGeometry {
	return SurfaceGeometry{
		P:    p,
		Gn:   q.normal,
		Sn:   q.normal,
		Dpdu: q.tu,
		Dpdv: q.tv,
		UV:   core.NewVec2(u, v),
	}
}

// Intersect tests the ray against the quad plane and bounds
func (q *Quad) Intersect(ray core.Ray, tMin, tMax float64) (SurfaceGeometry, float64, bool) {
	denom := ray.Direction.Dot(q.normal)
	if math.Abs(denom) < core.Eps {
		return SurfaceGeometry{}, 0, false
	}
	t := q.Origin.Subtract(ray.Origin).Dot(q.normal) / denom
	if t <= tMin || t >= tMax {
		return SurfaceGeometry{}, 0, false
	}
	p := ray.At(t)
	d := p.Subtract(q.Origin)
	u := d.Dot(q.Ex) / (q.exLen * q.exLen)
	v := d.Dot(q.Ey) / (q.eyLen * q.eyLen)
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return SurfaceGeometry{}, 0, false
	}
	return q.geometryAt(p, u, v), t, true
}

// SamplePosition maps a unit-square sample to a uniform point on the quad
func (q *Quad) SamplePosition(u core.Vec2) SurfaceGeometry {
	p := q.Origin.Add(q.Ex.Multiply(u.X)).Add(q.Ey.Multiply(u.Y))
	return q.geometryAt(p, u.X, u.Y)
}

// InversePositionSample recovers the unit-square sample for a point on
// the quad, the exact inverse of SamplePosition
func (q *Quad) InversePositionSample(p core.Vec3) core.Vec2 {
	d := p.Subtract(q.Origin)
	return core.NewVec2(
		core.Clamp(d.Dot(q.Ex)/(q.exLen*q.exLen), 0, 1),
		core.Clamp(d.Dot(q.Ey)/(q.eyLen*q.eyLen), 0, 1),
	)
}

// Sphere is a full sphere with an analytic parametrization. The normal
// derivatives Dndu and Dndv follow the tangents scaled by 1/radius.
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a sphere
func NewSphere(center core.Vec3, radius float64) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

// Intersect solves the quadratic for the nearest hit in (tMin, tMax)
func (s *Sphere) Intersect(ray core.Ray, tMin, tMax float64) (SurfaceGeometry, float64, bool) {
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.LengthSquared()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius
	disc := halfB*halfB - a*c
	if disc < 0 {
		return SurfaceGeometry{}, 0, false
	}
	sqrtD := math.Sqrt(disc)
	t := (-halfB - sqrtD) / a
	if t <= tMin || t >= tMax {
		t = (-halfB + sqrtD) / a
		if t <= tMin || t >= tMax {
			return SurfaceGeometry{}, 0, false
		}
	}
	p := ray.At(t)
	n := p.Subtract(s.Center).Divide(s.Radius)
	tu, tv := OrthonormalBasis(n)
	return SurfaceGeometry{
		P:    p,
		Gn:   n,
		Sn:   n,
		Dpdu: tu,
		Dpdv: tv,
		Dndu: tu.Divide(s.Radius),
		Dndv: tv.Divide(s.Radius),
	}, t, true
}
