package scene

import (
	"math"

	"github.com/df07/go-manifold-mlt/pkg/core"
)

// Bsdf is the surface scattering interface.
//
// Directional quantities follow the projected solid angle convention:
// EvaluateDirection returns the BSDF value without cosine factors and
// EvaluateDirectionPDF is a density with the cosine divided out, so
// sampling weights are fs/pdf directly.
//
// Specular components are delta distributions. With evalDelta true
// they answer zero; with evalDelta false the delta is absorbed, the
// reflectance and a pdf of one (scaled by component probability) are
// returned for matching directions.
type Bsdf interface {
	Type() InteractionType
	SampleDirection(u core.Vec2, uComp float64, queryType InteractionType, geom SurfaceGeometry, wi core.Vec3) (core.Vec3, bool)
	EvaluateDirection(geom SurfaceGeometry, types InteractionType, wi, wo core.Vec3, transDir TransDir, evalDelta bool) core.Vec3
	EvaluateDirectionPDF(geom SurfaceGeometry, queryType InteractionType, wi, wo core.Vec3, evalDelta bool) float64
	// Glossiness returns the GGX roughness, zero for non-glossy surfaces
	Glossiness() float64
	// Eta returns the relative index of refraction n_i/n_o for the side
	// wi arrives from, one for non-refractive surfaces
	Eta(geom SurfaceGeometry, wi core.Vec3) float64
	// FresnelTerm returns the dielectric reflectance seen by wi, zero
	// when the surface has no Fresnel component selection
	FresnelTerm(geom SurfaceGeometry, wi core.Vec3) float64
}

// deltaDirEps tolerates the residual error of manifold-walked chains
// when verifying that a direction lies on a delta component
const deltaDirEps = 1e-4

func sameDirection(a, b core.Vec3) bool {
	return a.Dot(b) > 1-deltaDirEps
}

func localReflect(w core.Vec3) core.Vec3 {
	return core.NewVec3(-w.X, -w.Y, w.Z)
}

// localRefract returns the transmitted direction for a local incident
// direction, or the mirror direction on total internal reflection.
// The second result reports whether transmission happened.
func localRefract(wi core.Vec3, eta1, eta2 float64) (core.Vec3, bool) {
	cosI := core.LocalCos(wi)
	etaI, etaT := eta1, eta2
	n := core.NewVec3(0, 0, 1)
	if cosI < 0 {
		etaI, etaT = eta2, eta1
		n = core.NewVec3(0, 0, -1)
		cosI = -cosI
	}
	eta := etaI / etaT
	sin2T := eta * eta * math.Max(0, 1-cosI*cosI)
	if sin2T >= 1 {
		return localReflect(wi), false
	}
	cosT := math.Sqrt(1 - sin2T)
	return wi.Negate().Multiply(eta).Add(n.Multiply(eta*cosI - cosT)), true
}

// fresnelDielectric is the unpolarized dielectric Fresnel reflectance
func fresnelDielectric(wi core.Vec3, eta1, eta2 float64) float64 {
	cosI := math.Abs(core.LocalCos(wi))
	etaI, etaT := eta1, eta2
	if core.LocalCos(wi) < 0 {
		etaI, etaT = eta2, eta1
	}
	sin2T := (etaI / etaT) * (etaI / etaT) * math.Max(0, 1-cosI*cosI)
	if sin2T >= 1 {
		return 1
	}
	cosT := math.Sqrt(1 - sin2T)
	rs := (etaI*cosI - etaT*cosT) / (etaI*cosI + etaT*cosT)
	rp := (etaT*cosI - etaI*cosT) / (etaT*cosI + etaI*cosT)
	return (rs*rs + rp*rp) / 2
}

// DiffuseBSDF is an ideal Lambertian reflector
type DiffuseBSDF struct {
	R core.Vec3
}

func (b *DiffuseBSDF) Type() InteractionType { return Diffuse }

func (b *DiffuseBSDF) SampleDirection(u core.Vec2, uComp float64, queryType InteractionType, geom SurfaceGeometry, wi core.Vec3) (core.Vec3, bool) {
	localWi := geom.ToLocal(wi)
	if core.LocalCos(localWi) <= 0 {
		return core.Vec3{}, false
	}
	return geom.ToWorld(core.CosineSampleHemisphere(u)), true
}

func (b *DiffuseBSDF) EvaluateDirection(geom SurfaceGeometry, types InteractionType, wi, wo core.Vec3, transDir TransDir, evalDelta bool) core.Vec3 {
	localWi := geom.ToLocal(wi)
	localWo := geom.ToLocal(wo)
	if core.LocalCos(localWi) <= 0 || core.LocalCos(localWo) <= 0 {
		return core.Vec3{}
	}
	return b.R.Multiply(ShadingNormalCorrection(geom, wi, wo, transDir) / math.Pi)
}

func (b *DiffuseBSDF) EvaluateDirectionPDF(geom SurfaceGeometry, queryType InteractionType, wi, wo core.Vec3, evalDelta bool) float64 {
	localWi := geom.ToLocal(wi)
	localWo := geom.ToLocal(wo)
	if core.LocalCos(localWi) <= 0 {
		return 0
	}
	return core.CosineSampleHemispherePDFProjSA(localWo)
}

func (b *DiffuseBSDF) Glossiness() float64 { return 0 }

func (b *DiffuseBSDF) Eta(geom SurfaceGeometry, wi core.Vec3) float64 { return 1 }

func (b *DiffuseBSDF) FresnelTerm(geom SurfaceGeometry, wi core.Vec3) float64 { return 0 }

// GlossyBSDF is a GGX microfacet reflector with Smith shadowing
type GlossyBSDF struct {
	R         core.Vec3
	Roughness float64
}

func (b *GlossyBSDF) Type() InteractionType { return Glossy }

func (b *GlossyBSDF) SampleDirection(u core.Vec2, uComp float64, queryType InteractionType, geom SurfaceGeometry, wi core.Vec3) (core.Vec3, bool) {
	localWi := geom.ToLocal(wi)
	if core.LocalCos(localWi) <= 0 {
		return core.Vec3{}, false
	}
	h := core.SampleGGX(u, b.Roughness)
	localWo := h.Multiply(2 * localWi.Dot(h)).Subtract(localWi)
	if core.LocalCos(localWo) <= 0 {
		return core.Vec3{}, false
	}
	return geom.ToWorld(localWo), true
}

func (b *GlossyBSDF) EvaluateDirection(geom SurfaceGeometry, types InteractionType, wi, wo core.Vec3, transDir TransDir, evalDelta bool) core.Vec3 {
	localWi := geom.ToLocal(wi)
	localWo := geom.ToLocal(wo)
	cwi := core.LocalCos(localWi)
	cwo := core.LocalCos(localWo)
	if cwi <= 0 || cwo <= 0 {
		return core.Vec3{}
	}
	h := localWi.Add(localWo).Normalize()
	d := core.GGXD(h, b.Roughness)
	g := core.GGXSmithG1(localWi, h, b.Roughness) * core.GGXSmithG1(localWo, h, b.Roughness)
	return b.R.Multiply(d * g * ShadingNormalCorrection(geom, wi, wo, transDir) / (4 * cwi * cwo))
}

func (b *GlossyBSDF) EvaluateDirectionPDF(geom SurfaceGeometry, queryType InteractionType, wi, wo core.Vec3, evalDelta bool) float64 {
	localWi := geom.ToLocal(wi)
	localWo := geom.ToLocal(wo)
	cwo := core.LocalCos(localWo)
	if core.LocalCos(localWi) <= 0 || cwo <= 0 {
		return 0
	}
	h := localWi.Add(localWo).Normalize()
	woDotH := localWo.Dot(h)
	if woDotH <= 0 {
		return 0
	}
	// half-vector pdf to outgoing solid angle, then projected
	return core.GGXD(h, b.Roughness) * core.LocalCos(h) / (4 * woDotH * cwo)
}

func (b *GlossyBSDF) Glossiness() float64 { return b.Roughness }

func (b *GlossyBSDF) Eta(geom SurfaceGeometry, wi core.Vec3) float64 { return 1 }

func (b *GlossyBSDF) FresnelTerm(geom SurfaceGeometry, wi core.Vec3) float64 { return 0 }

// ReflectBSDF is an ideal mirror
type ReflectBSDF struct {
	R core.Vec3
}

func (b *ReflectBSDF) Type() InteractionType { return Specular }

func (b *ReflectBSDF) SampleDirection(u core.Vec2, uComp float64, queryType InteractionType, geom SurfaceGeometry, wi core.Vec3) (core.Vec3, bool) {
	localWi := geom.ToLocal(wi)
	if core.LocalCos(localWi) <= 0 {
		return core.Vec3{}, false
	}
	return geom.ToWorld(localReflect(localWi)), true
}

func (b *ReflectBSDF) EvaluateDirection(geom SurfaceGeometry, types InteractionType, wi, wo core.Vec3, transDir TransDir, evalDelta bool) core.Vec3 {
	if evalDelta {
		return core.Vec3{}
	}
	localWi := geom.ToLocal(wi)
	localWo := geom.ToLocal(wo)
	if core.LocalCos(localWi) <= 0 || !sameDirection(localWo, localReflect(localWi)) {
		return core.Vec3{}
	}
	return b.R.Multiply(ShadingNormalCorrection(geom, wi, wo, transDir))
}

func (b *ReflectBSDF) EvaluateDirectionPDF(geom SurfaceGeometry, queryType InteractionType, wi, wo core.Vec3, evalDelta bool) float64 {
	if evalDelta {
		return 0
	}
	localWi := geom.ToLocal(wi)
	localWo := geom.ToLocal(wo)
	if core.LocalCos(localWi) <= 0 || !sameDirection(localWo, localReflect(localWi)) {
		return 0
	}
	return 1
}

func (b *ReflectBSDF) Glossiness() float64 { return 0 }

func (b *ReflectBSDF) Eta(geom SurfaceGeometry, wi core.Vec3) float64 { return 1 }

func (b *ReflectBSDF) FresnelTerm(geom SurfaceGeometry, wi core.Vec3) float64 { return 0 }

// RefractBSDF is an ideal refractor. Total internal reflection falls
// back to the mirror direction.
type RefractBSDF struct {
	R          core.Vec3
	Eta1, Eta2 float64
}

func (b *RefractBSDF) Type() InteractionType { return Specular }

func (b *RefractBSDF) SampleDirection(u core.Vec2, uComp float64, queryType InteractionType, geom SurfaceGeometry, wi core.Vec3) (core.Vec3, bool) {
	localWi := geom.ToLocal(wi)
	localWo, _ := localRefract(localWi, b.Eta1, b.Eta2)
	return geom.ToWorld(localWo), true
}

func (b *RefractBSDF) EvaluateDirection(geom SurfaceGeometry, types InteractionType, wi, wo core.Vec3, transDir TransDir, evalDelta bool) core.Vec3 {
	if evalDelta {
		return core.Vec3{}
	}
	localWi := geom.ToLocal(wi)
	localWo := geom.ToLocal(wo)
	expected, refracted := localRefract(localWi, b.Eta1, b.Eta2)
	if !sameDirection(localWo, expected) {
		return core.Vec3{}
	}
	f := ShadingNormalCorrection(geom, wi, wo, transDir)
	if refracted && transDir == EL {
		// radiance carried across the boundary scales with the squared
		// index ratio
		invEta := 1 / b.Eta(geom, wi)
		f *= invEta * invEta
	}
	return b.R.Multiply(f)
}

func (b *RefractBSDF) EvaluateDirectionPDF(geom SurfaceGeometry, queryType InteractionType, wi, wo core.Vec3, evalDelta bool) float64 {
	if evalDelta {
		return 0
	}
	localWi := geom.ToLocal(wi)
	localWo := geom.ToLocal(wo)
	expected, _ := localRefract(localWi, b.Eta1, b.Eta2)
	if !sameDirection(localWo, expected) {
		return 0
	}
	return 1
}

func (b *RefractBSDF) Glossiness() float64 { return 0 }

func (b *RefractBSDF) Eta(geom SurfaceGeometry, wi core.Vec3) float64 {
	if core.LocalCos(geom.ToLocal(wi)) >= 0 {
		return b.Eta1 / b.Eta2
	}
	return b.Eta2 / b.Eta1
}

func (b *RefractBSDF) FresnelTerm(geom SurfaceGeometry, wi core.Vec3) float64 { return 0 }

// FresnelBSDF is a dielectric that splits between mirror reflection
// and refraction by the Fresnel term. The component sample selects
// reflection when uComp < Fr.
type FresnelBSDF struct {
	R          core.Vec3
	Eta1, Eta2 float64
}

func (b *FresnelBSDF) Type() InteractionType { return Specular }

func (b *FresnelBSDF) SampleDirection(u core.Vec2, uComp float64, queryType InteractionType, geom SurfaceGeometry, wi core.Vec3) (core.Vec3, bool) {
	localWi := geom.ToLocal(wi)
	fr := fresnelDielectric(localWi, b.Eta1, b.Eta2)
	if uComp < fr {
		return geom.ToWorld(localReflect(localWi)), true
	}
	localWo, refracted := localRefract(localWi, b.Eta1, b.Eta2)
	if !refracted {
		// TIR has Fr = 1, the refraction branch is unreachable
		return core.Vec3{}, false
	}
	return geom.ToWorld(localWo), true
}

func (b *FresnelBSDF) EvaluateDirection(geom SurfaceGeometry, types InteractionType, wi, wo core.Vec3, transDir TransDir, evalDelta bool) core.Vec3 {
	if evalDelta {
		return core.Vec3{}
	}
	localWi := geom.ToLocal(wi)
	localWo := geom.ToLocal(wo)
	fr := fresnelDielectric(localWi, b.Eta1, b.Eta2)
	if sameDirection(localWo, localReflect(localWi)) {
		return b.R.Multiply(fr * ShadingNormalCorrection(geom, wi, wo, transDir))
	}
	if expected, refracted := localRefract(localWi, b.Eta1, b.Eta2); refracted && sameDirection(localWo, expected) {
		f := (1 - fr) * ShadingNormalCorrection(geom, wi, wo, transDir)
		if transDir == EL {
			invEta := 1 / b.Eta(geom, wi)
			f *= invEta * invEta
		}
		return b.R.Multiply(f)
	}
	return core.Vec3{}
}

func (b *FresnelBSDF) EvaluateDirectionPDF(geom SurfaceGeometry, queryType InteractionType, wi, wo core.Vec3, evalDelta bool) float64 {
	if evalDelta {
		return 0
	}
	localWi := geom.ToLocal(wi)
	localWo := geom.ToLocal(wo)
	fr := fresnelDielectric(localWi, b.Eta1, b.Eta2)
	if sameDirection(localWo, localReflect(localWi)) {
		return fr
	}
	if expected, refracted := localRefract(localWi, b.Eta1, b.Eta2); refracted && sameDirection(localWo, expected) {
		return 1 - fr
	}
	return 0
}

func (b *FresnelBSDF) Glossiness() float64 { return 0 }

func (b *FresnelBSDF) Eta(geom SurfaceGeometry, wi core.Vec3) float64 {
	if core.LocalCos(geom.ToLocal(wi)) >= 0 {
		return b.Eta1 / b.Eta2
	}
	return b.Eta2 / b.Eta1
}

func (b *FresnelBSDF) FresnelTerm(geom SurfaceGeometry, wi core.Vec3) float64 {
	return fresnelDielectric(geom.ToLocal(wi), b.Eta1, b.Eta2)
}
