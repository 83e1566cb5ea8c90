package scene

import (
	"github.com/df07/go-manifold-mlt/pkg/core"
)

// Primitive couples a shape with its surface behaviors. Any of Bsdf,
// Light and Sensor may be nil; queries dispatch on the requested
// interaction type.
type Primitive struct {
	Name   string
	Shape  Shape
	Bsdf   Bsdf
	Light  *AreaLight
	Sensor *PinholeSensor
}

// Type returns the union of the component interaction types
func (p *Primitive) Type() InteractionType {
	t := None
	if p.Bsdf != nil {
		t |= p.Bsdf.Type()
	}
	if p.Light != nil {
		t |= Light
	}
	if p.Sensor != nil {
		t |= Eye
	}
	return t
}

// SamplePosition samples a point on the emitter component
func (p *Primitive) SamplePosition(queryType InteractionType, u core.Vec2) SurfaceGeometry {
	if queryType&Light != 0 && p.Light != nil {
		return p.Light.SamplePosition(u)
	}
	if queryType&Eye != 0 && p.Sensor != nil {
		return p.Sensor.SamplePosition(u)
	}
	panic("scene: primitive has no emitter component")
}

// EvaluatePosition evaluates the positional emitter factor
func (p *Primitive) EvaluatePosition(queryType InteractionType, geom SurfaceGeometry, evalDelta bool) core.Vec3 {
	if queryType&Light != 0 && p.Light != nil {
		return p.Light.EvaluatePosition(geom, evalDelta)
	}
	if queryType&Eye != 0 && p.Sensor != nil {
		return p.Sensor.EvaluatePosition(geom, evalDelta)
	}
	return core.Vec3{}
}

// EvaluatePositionPDF evaluates the area-measure position density
func (p *Primitive) EvaluatePositionPDF(queryType InteractionType, geom SurfaceGeometry, evalDelta bool) float64 {
	if queryType&Light != 0 && p.Light != nil {
		return p.Light.EvaluatePositionPDF(geom, evalDelta)
	}
	if queryType&Eye != 0 && p.Sensor != nil {
		return p.Sensor.EvaluatePositionPDF(geom, evalDelta)
	}
	return 0
}

// SampleDirection samples an outgoing direction for the component
// selected by queryType
func (p *Primitive) SampleDirection(u core.Vec2, uComp float64, queryType InteractionType, geom SurfaceGeometry, wi core.Vec3) (core.Vec3, bool) {
	if queryType&Light != 0 && p.Light != nil {
		return p.Light.SampleDirection(u, uComp, queryType, geom, wi)
	}
	if queryType&Eye != 0 && p.Sensor != nil {
		return p.Sensor.SampleDirection(u, uComp, queryType, geom, wi)
	}
	if queryType&BSDFMask != 0 && p.Bsdf != nil {
		return p.Bsdf.SampleDirection(u, uComp, queryType, geom, wi)
	}
	return core.Vec3{}, false
}

// EvaluateDirection evaluates the directional factor for the component
// selected by types
func (p *Primitive) EvaluateDirection(geom SurfaceGeometry, types InteractionType, wi, wo core.Vec3, transDir TransDir, evalDelta bool) core.Vec3 {
	if types&Light != 0 && p.Light != nil {
		return p.Light.EvaluateDirection(geom, types, wi, wo, transDir, evalDelta)
	}
	if types&Eye != 0 && p.Sensor != nil {
		return p.Sensor.EvaluateDirection(geom, types, wi, wo, transDir, evalDelta)
	}
	if types&BSDFMask != 0 && p.Bsdf != nil {
		return p.Bsdf.EvaluateDirection(geom, types, wi, wo, transDir, evalDelta)
	}
	return core.Vec3{}
}

// EvaluateDirectionPDF evaluates the projected solid angle density of
// SampleDirection
func (p *Primitive) EvaluateDirectionPDF(geom SurfaceGeometry, queryType InteractionType, wi, wo core.Vec3, evalDelta bool) float64 {
	if queryType&Light != 0 && p.Light != nil {
		return p.Light.EvaluateDirectionPDF(geom, queryType, wi, wo, evalDelta)
	}
	if queryType&Eye != 0 && p.Sensor != nil {
		return p.Sensor.EvaluateDirectionPDF(geom, queryType, wi, wo, evalDelta)
	}
	if queryType&BSDFMask != 0 && p.Bsdf != nil {
		return p.Bsdf.EvaluateDirectionPDF(geom, queryType, wi, wo, evalDelta)
	}
	return 0
}

// IsDeltaPosition reports whether the component's position sampling is
// a delta distribution
func (p *Primitive) IsDeltaPosition(queryType InteractionType) bool {
	return queryType&Eye != 0 && p.Sensor != nil
}

// IsDeltaDirection reports whether the component's direction sampling
// is a delta distribution
func (p *Primitive) IsDeltaDirection(queryType InteractionType) bool {
	return queryType&Specular != 0 && p.Bsdf != nil && p.Bsdf.Type()&Specular != 0
}

// RasterPosition projects an outgoing direction onto the sensor raster
func (p *Primitive) RasterPosition(wo core.Vec3, geom SurfaceGeometry) (core.Vec2, bool) {
	if p.Sensor == nil {
		return core.Vec2{}, false
	}
	return p.Sensor.RasterPosition(wo, geom)
}

// Eta returns the relative refraction index of the surface component
func (p *Primitive) Eta(geom SurfaceGeometry, wi core.Vec3) float64 {
	if p.Bsdf == nil {
		return 1
	}
	return p.Bsdf.Eta(geom, wi)
}
