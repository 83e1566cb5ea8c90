package scene

import (
	"github.com/df07/go-manifold-mlt/pkg/core"
)

// AreaLight is a diffuse emitter attached to a quad. Positions are
// sampled uniformly over the area, directions cosine-weighted over the
// front hemisphere.
type AreaLight struct {
	Le   core.Vec3
	Quad *Quad
}

func (l *AreaLight) Type() InteractionType { return Light }

// SamplePosition maps a unit-square sample to a point on the quad
func (l *AreaLight) SamplePosition(u core.Vec2) SurfaceGeometry {
	return l.Quad.SamplePosition(u)
}

// InversePositionSample recovers the unit-square sample for a point on
// the light
func (l *AreaLight) InversePositionSample(p core.Vec3) core.Vec2 {
	return l.Quad.InversePositionSample(p)
}

// EvaluatePosition is the positional emission factor
func (l *AreaLight) EvaluatePosition(geom SurfaceGeometry, evalDelta bool) core.Vec3 {
	return core.NewVec3(1, 1, 1)
}

// EvaluatePositionPDF is the area-measure density of SamplePosition
func (l *AreaLight) EvaluatePositionPDF(geom SurfaceGeometry, evalDelta bool) float64 {
	return 1 / l.Quad.Area()
}

func (l *AreaLight) SampleDirection(u core.Vec2, uComp float64, queryType InteractionType, geom SurfaceGeometry, wi core.Vec3) (core.Vec3, bool) {
	return geom.ToWorld(core.CosineSampleHemisphere(u)), true
}

// EvaluateDirection is the directional emission, the radiated value
// over the front hemisphere
func (l *AreaLight) EvaluateDirection(geom SurfaceGeometry, types InteractionType, wi, wo core.Vec3, transDir TransDir, evalDelta bool) core.Vec3 {
	if core.LocalCos(geom.ToLocal(wo)) <= 0 {
		return core.Vec3{}
	}
	return l.Le
}

func (l *AreaLight) EvaluateDirectionPDF(geom SurfaceGeometry, queryType InteractionType, wi, wo core.Vec3, evalDelta bool) float64 {
	return core.CosineSampleHemispherePDFProjSA(geom.ToLocal(wo))
}
