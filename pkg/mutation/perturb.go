package mutation

import (
	"math"
	"math/rand"

	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// Two-scale exponential perturbation sizes in primary sample space
const (
	PerturbS1 = 1.0 / 256
	PerturbS2 = 1.0 / 16
)

// Perturb moves a primary sample by an exponentially distributed
// offset between s1 and s2, wrapping at the unit interval bounds
func Perturb(rng *rand.Rand, u, s1, s2 float64) float64 {
	r := rng.Float64()
	logRatio := -math.Log(s2 / s1)
	if r < 0.5 {
		r *= 2
		u += s2 * math.Exp(logRatio*r)
		if u > 1 {
			u -= 1
		}
	} else {
		r = (r - 0.5) * 2
		u -= s2 * math.Exp(logRatio*r)
		if u < 0 {
			u += 1
		}
	}
	return u
}

// PerturbRasterPos perturbs the raster position of the path's sensor
// ray
func PerturbRasterPos(currP *path.Path, rng *rand.Rand) (core.Vec2, bool) {
	rp, ok := currP.RasterPosition()
	if !ok {
		return core.Vec2{}, false
	}
	prop := core.NewVec2(
		Perturb(rng, rp.X, PerturbS1, PerturbS2),
		Perturb(rng, rp.Y, PerturbS1, PerturbS2),
	)
	if !prop.InUnitSquare() {
		return core.Vec2{}, false
	}
	return prop, true
}

// PerturbDirectionSample recovers the primary sample that produced the
// outgoing direction at vertex i of the path (counted along transDir)
// and perturbs it. Sensor-capable vertices perturb the raster position
// instead.
func PerturbDirectionSample(currP *path.Path, rng *rand.Rand, prim *scene.Primitive, i int, transDir scene.TransDir) (core.Vec2, bool) {
	if prim.Type()&scene.Eye != 0 {
		return PerturbRasterPos(currP, rng)
	}

	v := currP.Vertex(i, transDir)
	wo := currP.Vertex(i+1, transDir).Geom.P.Subtract(v.Geom.P).Normalize()
	localWo := v.Geom.ToLocal(wo)

	var currU core.Vec2
	switch {
	case v.Type&(scene.Diffuse|scene.Light) != 0:
		currU = core.UniformConcentricDiskSampleInverse(core.NewVec2(localWo.X, localWo.Y))
	case v.Type&scene.Glossy != 0:
		wi := currP.Vertex(i-1, transDir).Geom.P.Subtract(v.Geom.P).Normalize()
		localWi := v.Geom.ToLocal(wi)
		h := localWi.Add(localWo).Normalize()
		currU = core.SampleGGXInverse(v.Primitive.Bsdf.Glossiness(), h)
	default:
		return core.Vec2{}, false
	}

	return core.NewVec2(
		Perturb(rng, currU.X, PerturbS1, PerturbS2),
		Perturb(rng, currU.Y, PerturbS1, PerturbS2),
	), true
}
