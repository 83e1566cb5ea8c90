package scene

import (
	"math"

	"github.com/df07/go-manifold-mlt/pkg/core"
)

// PinholeSensor is a perspective camera with a point aperture. The
// camera looks down its local -Z axis; raster positions live in the
// unit square with (0,0) at the lower left.
type PinholeSensor struct {
	eye     core.Vec3
	right   core.Vec3
	up      core.Vec3
	forward core.Vec3
	tanFov  float64
	aspect  float64
	invA    float64
}

// NewPinholeSensor creates a camera at eye looking at center.
// vfovDegrees is the full vertical field of view.
func NewPinholeSensor(eye, center, worldUp core.Vec3, vfovDegrees, aspect float64) *PinholeSensor {
	forward := center.Subtract(eye).Normalize()
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward)
	tanFov := math.Tan(vfovDegrees * math.Pi / 180 / 2)
	// sensitive screen area on the plane at unit distance
	a := 4 * tanFov * tanFov * aspect
	return &PinholeSensor{
		eye:     eye,
		right:   right,
		up:      up,
		forward: forward,
		tanFov:  tanFov,
		aspect:  aspect,
		invA:    1 / a,
	}
}

func (s *PinholeSensor) Type() InteractionType { return Eye }

// toLocal expresses a world direction in the camera frame, -Z forward
func (s *PinholeSensor) toLocal(w core.Vec3) core.Vec3 {
	return core.NewVec3(s.right.Dot(w), s.up.Dot(w), -s.forward.Dot(w))
}

// Geometry returns the degenerate aperture geometry
func (s *PinholeSensor) Geometry() SurfaceGeometry {
	return SurfaceGeometry{
		P:           s.eye,
		Sn:          s.forward,
		Gn:          s.forward,
		Dpdu:        s.right,
		Dpdv:        s.up,
		Degenerated: true,
	}
}

// SamplePosition is the fixed aperture point
func (s *PinholeSensor) SamplePosition(u core.Vec2) SurfaceGeometry {
	return s.Geometry()
}

func (s *PinholeSensor) EvaluatePosition(geom SurfaceGeometry, evalDelta bool) core.Vec3 {
	if evalDelta {
		return core.Vec3{}
	}
	return core.NewVec3(1, 1, 1)
}

func (s *PinholeSensor) EvaluatePositionPDF(geom SurfaceGeometry, evalDelta bool) float64 {
	if evalDelta {
		return 0
	}
	return 1
}

// SampleDirection maps a raster-position sample through the pinhole
func (s *PinholeSensor) SampleDirection(u core.Vec2, uComp float64, queryType InteractionType, geom SurfaceGeometry, wi core.Vec3) (core.Vec3, bool) {
	local := core.NewVec3(
		(2*u.X-1)*s.tanFov*s.aspect,
		(2*u.Y-1)*s.tanFov,
		-1,
	).Normalize()
	return s.right.Multiply(local.X).Add(s.up.Multiply(local.Y)).Subtract(s.forward.Multiply(local.Z)), true
}

// EvaluateDirection is the importance emitted toward wo
func (s *PinholeSensor) EvaluateDirection(geom SurfaceGeometry, types InteractionType, wi, wo core.Vec3, transDir TransDir, evalDelta bool) core.Vec3 {
	if _, ok := s.RasterPosition(wo, geom); !ok {
		return core.Vec3{}
	}
	local := s.toLocal(wo)
	invCos := 1 / -local.Z
	w := s.invA * invCos * invCos * invCos
	return core.NewVec3(w, w, w)
}

// EvaluateDirectionPDF equals the importance, raster positions are
// sampled uniformly
func (s *PinholeSensor) EvaluateDirectionPDF(geom SurfaceGeometry, queryType InteractionType, wi, wo core.Vec3, evalDelta bool) float64 {
	if _, ok := s.RasterPosition(wo, geom); !ok {
		return 0
	}
	local := s.toLocal(wo)
	invCos := 1 / -local.Z
	return s.invA * invCos * invCos * invCos
}

// RasterPosition projects a world direction through the pinhole onto
// the unit-square raster plane. The exact inverse of SampleDirection.
func (s *PinholeSensor) RasterPosition(wo core.Vec3, geom SurfaceGeometry) (core.Vec2, bool) {
	local := s.toLocal(wo)
	if local.Z >= 0 {
		return core.Vec2{}, false
	}
	rp := core.NewVec2(
		(-local.X/local.Z/s.tanFov/s.aspect+1)/2,
		(-local.Y/local.Z/s.tanFov+1)/2,
	)
	if !rp.InUnitSquare() {
		return core.Vec2{}, false
	}
	return rp, true
}
