package scene

import (
	"math"

	"github.com/df07/go-manifold-mlt/pkg/core"
)

// InteractionType classifies what a surface point can do. The flags
// compose: an emissive quad is Diffuse|Light, and queries can mask for
// any subset.
type InteractionType int

const (
	Diffuse  InteractionType = 1 << iota // D
	Glossy                               // G
	Specular                             // S
	Light                                // L
	Eye                                  // E
)

const (
	Emitter  = Light | Eye
	BSDFMask = Diffuse | Glossy | Specular
	None     InteractionType = 0
)

// Letter returns the single-letter code for a pure interaction type
func (t InteractionType) Letter() byte {
	switch t {
	case Diffuse:
		return 'D'
	case Glossy:
		return 'G'
	case Specular:
		return 'S'
	case Light:
		return 'L'
	case Eye:
		return 'E'
	}
	return '?'
}

// TransDir is the transport direction of a subpath walk
type TransDir int

const (
	// LE walks from a light toward the eye
	LE TransDir = iota
	// EL walks from the eye toward a light
	EL
)

// Opposite flips the transport direction
func (d TransDir) Opposite() TransDir {
	if d == LE {
		return EL
	}
	return LE
}

// SurfaceGeometry carries the differential geometry of one surface
// point. Dpdu/Dpdv form an orthonormal tangent basis with Sn; Dndu and
// Dndv are the shading normal derivatives along those tangents.
type SurfaceGeometry struct {
	P          core.Vec3
	Gn, Sn     core.Vec3
	Dpdu, Dpdv core.Vec3
	Dndu, Dndv core.Vec3
	UV         core.Vec2

	// Degenerated marks point-like geometry (pinhole aperture) whose
	// cosine factors are skipped in geometry terms
	Degenerated bool
	// Infinite marks directions escaping the scene
	Infinite bool
}

// ToLocal expresses a world direction in the tangent frame
func (g SurfaceGeometry) ToLocal(w core.Vec3) core.Vec3 {
	return core.NewVec3(g.Dpdu.Dot(w), g.Dpdv.Dot(w), g.Sn.Dot(w))
}

// ToWorld expresses a tangent-frame direction in world space
func (g SurfaceGeometry) ToWorld(l core.Vec3) core.Vec3 {
	return g.Dpdu.Multiply(l.X).Add(g.Dpdv.Multiply(l.Y)).Add(g.Sn.Multiply(l.Z))
}

// OrthonormalBasis completes a unit normal to a right-handed frame
func OrthonormalBasis(n core.Vec3) (core.Vec3, core.Vec3) {
	var t core.Vec3
	if math.Abs(n.X) > 0.9 {
		t = core.NewVec3(0, 1, 0)
	} else {
		t = core.NewVec3(1, 0, 0)
	}
	u := t.Cross(n).Normalize()
	v := n.Cross(u)
	return u, v
}

// GeometryTerm is the area-measure geometry factor between two surface
// points. Cosines at degenerated endpoints are omitted.
func GeometryTerm(g1, g2 SurfaceGeometry) float64 {
	d := g2.P.Subtract(g1.P)
	r2 := d.LengthSquared()
	if r2 == 0 {
		return 0
	}
	invR := 1 / math.Sqrt(r2)
	w := d.Multiply(invR)
	t := 1.0
	if !g1.Degenerated {
		t *= math.Abs(g1.Sn.Dot(w))
	}
	if !g2.Degenerated {
		t *= math.Abs(g2.Sn.Dot(w))
	}
	return t / r2
}

// ShadingNormalCorrection is the adjoint BSDF correction for light
// tracing with shading normals that differ from geometric normals
func ShadingNormalCorrection(geom SurfaceGeometry, wi, wo core.Vec3, transDir TransDir) float64 {
	if transDir != LE {
		return 1
	}
	wiDotGn := wi.Dot(geom.Gn)
	woDotSn := wo.Dot(geom.Sn)
	wiDotSn := wi.Dot(geom.Sn)
	woDotGn := wo.Dot(geom.Gn)
	if wiDotGn*wiDotSn <= 0 || woDotGn*woDotSn <= 0 {
		return 0
	}
	return wiDotSn * woDotGn / (wiDotGn * woDotSn)
}
