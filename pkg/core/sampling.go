package core

import "math"

// Eps is the generic tolerance used by sampling decisions and
// geometric offsets
const Eps = 1e-7

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// LocalCos returns the cosine of a local-frame direction against the
// +Z shading normal
func LocalCos(v Vec3) float64 {
	return v.Z
}

// UniformConcentricDiskSample maps the unit square to the unit disk
// with Shirley's concentric mapping. Unlike the polar map it is a
// low-distortion bijection, so it admits an exact inverse.
func UniformConcentricDiskSample(u Vec2) Vec2 {
	v := NewVec2(2*u.X-1, 2*u.Y-1)
	if v.X == 0 && v.Y == 0 {
		return Vec2{}
	}
	var r, theta float64
	if v.X > -v.Y {
		if v.X > v.Y {
			r = v.X
			theta = (math.Pi / 4) * (v.Y / v.X)
		} else {
			r = v.Y
			theta = (math.Pi / 4) * (2 - v.X/v.Y)
		}
	} else {
		if v.X < v.Y {
			r = -v.X
			theta = (math.Pi / 4) * (4 + v.Y/v.X)
		} else {
			r = -v.Y
			if v.Y != 0 {
				theta = (math.Pi / 4) * (6 - v.X/v.Y)
			} else {
				theta = 0
			}
		}
	}
	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// UniformConcentricDiskSampleInverse recovers the unit-square sample
// that UniformConcentricDiskSample maps to the given disk point
func UniformConcentricDiskSampleInverse(p Vec2) Vec2 {
	r := math.Sqrt(p.X*p.X + p.Y*p.Y)
	theta := math.Atan2(p.Y, p.X)
	var u Vec2
	if p.X > -p.Y {
		if p.X > p.Y {
			u = NewVec2(r, 4*theta*r/math.Pi)
		} else {
			u = NewVec2((2-4*theta/math.Pi)*r, r)
		}
	} else {
		if theta < 0 {
			theta += 2 * math.Pi
		}
		if p.X < p.Y {
			u = NewVec2(-r, (4-4*theta/math.Pi)*r)
		} else {
			u = NewVec2((-6+4*theta/math.Pi)*r, -r)
		}
	}
	return NewVec2((u.X+1)/2, (u.Y+1)/2)
}

// CosineSampleHemisphere samples a cosine-weighted direction in the
// local +Z hemisphere by lifting a concentric disk sample
func CosineSampleHemisphere(u Vec2) Vec3 {
	d := UniformConcentricDiskSample(u)
	z := math.Sqrt(math.Max(0, 1-d.X*d.X-d.Y*d.Y))
	return NewVec3(d.X, d.Y, z)
}

// CosineSampleHemispherePDFProjSA is the projected solid angle pdf of
// CosineSampleHemisphere
func CosineSampleHemispherePDFProjSA(localWo Vec3) float64 {
	if LocalCos(localWo) <= 0 {
		return 0
	}
	return 1 / math.Pi
}

// SampleGGX samples a microfacet half vector in the local frame from
// the GGX normal distribution with the given roughness
func SampleGGX(u Vec2, roughness float64) Vec3 {
	a := roughness
	u0 := Clamp(u.X, Eps, 1)
	u1 := Clamp(u.Y, Eps, 1-Eps)
	denom := math.Sqrt(1 - (1-a*a)*u0)
	cosTheta := math.Sqrt(1-u0) / denom
	sinTheta := a * math.Sqrt(u0) / denom
	phi := math.Pi * (2*u1 - 1)
	return NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
}

// SampleGGXInverse recovers the unit-square sample that SampleGGX maps
// to the given half vector
func SampleGGXInverse(roughness float64, h Vec3) Vec2 {
	a := roughness
	cosTheta := LocalCos(h)
	sinTheta2 := math.Max(0, 1-cosTheta*cosTheta)
	var u0 float64
	if cosTheta <= 0 {
		u0 = 1
	} else {
		tanTheta2 := sinTheta2 / (cosTheta * cosTheta)
		u0 = 1 / (1 + a*a/tanTheta2)
		if tanTheta2 == 0 {
			u0 = 0
		}
	}
	u1 := (math.Atan2(h.Y, h.X)/math.Pi + 1) / 2
	return NewVec2(Clamp(u0, 0, 1), Clamp(u1, 0, 1))
}

// GGXD is the GGX normal distribution evaluated at a local half vector
func GGXD(h Vec3, roughness float64) float64 {
	cosTheta := LocalCos(h)
	if cosTheta <= 0 {
		return 0
	}
	a2 := roughness * roughness
	d := cosTheta*cosTheta*(a2-1) + 1
	return a2 / (math.Pi * d * d)
}

// GGXSmithG1 is the Smith masking term for one direction
func GGXSmithG1(v, h Vec3, roughness float64) float64 {
	cosTheta := LocalCos(v)
	if cosTheta*v.Dot(h) <= 0 {
		return 0
	}
	tanTheta2 := math.Max(0, 1-cosTheta*cosTheta) / (cosTheta * cosTheta)
	a2 := roughness * roughness
	return 2 / (1 + math.Sqrt(1+a2*tanTheta2))
}
