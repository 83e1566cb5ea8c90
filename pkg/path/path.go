package path

import (
	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// Path is a complete light transport path. Vertices run from the
// light endpoint (index 0) to the eye endpoint (index n-1).
type Path struct {
	Vertices []Vertex
}

// Length returns the number of vertices
func (p *Path) Length() int { return len(p.Vertices) }

// TypeString returns the light-to-eye vertex signature, e.g. "LSSDE"
func (p *Path) TypeString() string {
	b := make([]byte, len(p.Vertices))
	for i, v := range p.Vertices {
		b[i] = v.Letter()
	}
	return string(b)
}

// Vertex returns the i-th vertex counted per transport direction:
// from the light end for LE, from the eye end for EL
func (p *Path) Vertex(i int, transDir scene.TransDir) *Vertex {
	if transDir == scene.LE {
		return &p.Vertices[i]
	}
	return &p.Vertices[len(p.Vertices)-1-i]
}

// Connect builds a complete path from s light-subpath vertices and t
// eye-subpath vertices. With s == 0 the eye subpath must have reached
// a light, with t == 0 the light subpath must have reached the sensor;
// otherwise the two connection endpoints must be mutually visible.
func Connect(sc *scene.Scene, subpathL, subpathE *Subpath, s, t int) (Path, bool) {
	if s == 0 && t == 0 {
		return Path{}, false
	}
	var vs []Vertex
	switch {
	case s == 0:
		back := subpathE.Vertices[t-1]
		if back.Geom.Infinite || back.Primitive.Type()&scene.Light == 0 {
			return Path{}, false
		}
		vs = make([]Vertex, 0, t)
		for i := t - 1; i >= 0; i-- {
			vs = append(vs, subpathE.Vertices[i])
		}
		vs[0].Type = scene.Light
	case t == 0:
		back := subpathL.Vertices[s-1]
		if back.Geom.Infinite || back.Primitive.Type()&scene.Eye == 0 {
			return Path{}, false
		}
		vs = append(vs, subpathL.Vertices[:s]...)
		vs[len(vs)-1].Type = scene.Eye
	default:
		vL := subpathL.Vertices[s-1]
		vE := subpathE.Vertices[t-1]
		if vL.Geom.Infinite || vE.Geom.Infinite {
			return Path{}, false
		}
		if !sc.Visible(vL.Geom.P, vE.Geom.P) {
			return Path{}, false
		}
		vs = make([]Vertex, 0, s+t)
		vs = append(vs, subpathL.Vertices[:s]...)
		for i := t - 1; i >= 0; i-- {
			vs = append(vs, subpathE.Vertices[i])
		}
	}
	return Path{Vertices: vs}, true
}

// direction from a toward b, zero when either end is missing
func dirTo(from, to *Vertex) core.Vec3 {
	return to.Geom.P.Subtract(from.Geom.P).Normalize()
}

// EvaluateF evaluates the measurement contribution of the path for
// the strategy splitting it after s light-side vertices
func (p *Path) EvaluateF(s int) core.Vec3 {
	n := len(p.Vertices)
	t := n - s

	fL := core.NewVec3(1, 1, 1)
	if s > 0 {
		v0 := &p.Vertices[0]
		fL = v0.Primitive.EvaluatePosition(scene.Light, v0.Geom, false)
		for i := 0; i < s-1; i++ {
			v := &p.Vertices[i]
			wi := core.Vec3{}
			if i > 0 {
				wi = dirTo(v, &p.Vertices[i-1])
			}
			wo := dirTo(v, &p.Vertices[i+1])
			fs := v.Primitive.EvaluateDirection(v.Geom, v.Type, wi, wo, scene.LE, false)
			fL = fL.MultiplyVec(fs).Multiply(scene.GeometryTerm(v.Geom, p.Vertices[i+1].Geom))
		}
	}
	if fL.IsBlack() {
		return core.Vec3{}
	}

	fE := core.NewVec3(1, 1, 1)
	if t > 0 {
		vn := &p.Vertices[n-1]
		fE = vn.Primitive.EvaluatePosition(scene.Eye, vn.Geom, false)
		for i := n - 1; i > s; i-- {
			v := &p.Vertices[i]
			wi := core.Vec3{}
			if i < n-1 {
				wi = dirTo(v, &p.Vertices[i+1])
			}
			wo := dirTo(v, &p.Vertices[i-1])
			fs := v.Primitive.EvaluateDirection(v.Geom, v.Type, wi, wo, scene.EL, false)
			fE = fE.MultiplyVec(fs).Multiply(scene.GeometryTerm(v.Geom, p.Vertices[i-1].Geom))
		}
	}
	if fE.IsBlack() {
		return core.Vec3{}
	}

	cst := p.EvaluateCst(s)
	return fL.MultiplyVec(cst).MultiplyVec(fE)
}

// EvaluateCst evaluates the connection term joining the two subpaths.
// Delta factors are evaluated strictly, so connections through
// specular vertices vanish.
func (p *Path) EvaluateCst(s int) core.Vec3 {
	n := len(p.Vertices)
	t := n - s
	switch {
	case s == 0 && t > 0:
		v := &p.Vertices[0]
		wo := dirTo(v, &p.Vertices[1])
		positionF := v.Primitive.EvaluatePosition(scene.Light, v.Geom, true)
		directionF := v.Primitive.EvaluateDirection(v.Geom, scene.Light, core.Vec3{}, wo, scene.EL, false)
		return positionF.MultiplyVec(directionF)
	case s > 0 && t == 0:
		v := &p.Vertices[n-1]
		wo := dirTo(v, &p.Vertices[n-2])
		positionF := v.Primitive.EvaluatePosition(scene.Eye, v.Geom, true)
		directionF := v.Primitive.EvaluateDirection(v.Geom, scene.Eye, core.Vec3{}, wo, scene.LE, false)
		return positionF.MultiplyVec(directionF)
	default:
		vL := &p.Vertices[s-1]
		vE := &p.Vertices[s]
		wiL := core.Vec3{}
		if s > 1 {
			wiL = dirTo(vL, &p.Vertices[s-2])
		}
		woL := dirTo(vL, vE)
		fsL := vL.Primitive.EvaluateDirection(vL.Geom, vL.Type, wiL, woL, scene.LE, true)
		if fsL.IsBlack() {
			return core.Vec3{}
		}
		wiE := core.Vec3{}
		if s < n-1 {
			wiE = dirTo(vE, &p.Vertices[s+1])
		}
		woE := dirTo(vE, vL)
		fsE := vE.Primitive.EvaluateDirection(vE.Geom, vE.Type, wiE, woE, scene.EL, true)
		if fsE.IsBlack() {
			return core.Vec3{}
		}
		return fsL.MultiplyVec(fsE).Multiply(scene.GeometryTerm(vL.Geom, vE.Geom))
	}
}

// EvaluatePathPDF evaluates the area-measure construction density of
// the path under the strategy with s light-side vertices. Strategies
// that would need to sample through a delta distribution have zero
// density.
func (p *Path) EvaluatePathPDF(sc *scene.Scene, s int) float64 {
	n := len(p.Vertices)
	t := n - s
	if s == 0 && p.Vertices[0].Primitive.IsDeltaPosition(scene.Light) {
		return 0
	}
	if t == 0 && p.Vertices[n-1].Primitive.IsDeltaPosition(scene.Eye) {
		return 0
	}
	if s > 0 && t > 0 {
		if p.Vertices[s-1].Primitive.IsDeltaDirection(p.Vertices[s-1].Type) ||
			p.Vertices[s].Primitive.IsDeltaDirection(p.Vertices[s].Type) {
			return 0
		}
	}

	pdf := 1.0
	if s > 0 {
		v0 := &p.Vertices[0]
		pdf *= v0.Primitive.EvaluatePositionPDF(scene.Light, v0.Geom, false) * sc.EvaluateEmitterPDF(v0.Primitive)
		for i := 0; i < s-1; i++ {
			v := &p.Vertices[i]
			wi := core.Vec3{}
			if i > 0 {
				wi = dirTo(v, &p.Vertices[i-1])
			}
			wo := dirTo(v, &p.Vertices[i+1])
			pdfD := v.Primitive.EvaluateDirectionPDF(v.Geom, v.Type, wi, wo, false)
			pdf *= pdfD * scene.GeometryTerm(v.Geom, p.Vertices[i+1].Geom)
		}
	}
	if t > 0 {
		vn := &p.Vertices[n-1]
		pdf *= vn.Primitive.EvaluatePositionPDF(scene.Eye, vn.Geom, false) * sc.EvaluateEmitterPDF(vn.Primitive)
		for i := n - 1; i > s; i-- {
			v := &p.Vertices[i]
			wi := core.Vec3{}
			if i < n-1 {
				wi = dirTo(v, &p.Vertices[i+1])
			}
			wo := dirTo(v, &p.Vertices[i-1])
			pdfD := v.Primitive.EvaluateDirectionPDF(v.Geom, v.Type, wi, wo, false)
			pdf *= pdfD * scene.GeometryTerm(v.Geom, p.Vertices[i-1].Geom)
		}
	}
	return pdf
}

// EvaluateMISWeight evaluates the power-2 balance weight of strategy s
// among all strategies that can construct this path
func (p *Path) EvaluateMISWeight(sc *scene.Scene, s int) float64 {
	n := len(p.Vertices)
	ps := p.EvaluatePathPDF(sc, s)
	if ps == 0 {
		return 0
	}
	invW := 0.0
	for i := 0; i <= n; i++ {
		pi := p.EvaluatePathPDF(sc, i)
		if pi == 0 {
			continue
		}
		r := pi / ps
		invW += r * r
	}
	return 1 / invW
}

// EvaluateAlpha evaluates the sampling-weight product of the first k
// vertices walked in the given transport direction
func (p *Path) EvaluateAlpha(sc *scene.Scene, k int, transDir scene.TransDir) core.Vec3 {
	alpha := core.NewVec3(1, 1, 1)
	if k <= 0 {
		return alpha
	}
	endpointType := scene.Light
	if transDir == scene.EL {
		endpointType = scene.Eye
	}
	v0 := p.Vertex(0, transDir)
	posPDF := v0.Primitive.EvaluatePositionPDF(endpointType, v0.Geom, false) * sc.EvaluateEmitterPDF(v0.Primitive)
	if posPDF == 0 {
		return core.Vec3{}
	}
	alpha = v0.Primitive.EvaluatePosition(endpointType, v0.Geom, false).Divide(posPDF)
	for i := 0; i < k-1; i++ {
		v := p.Vertex(i, transDir)
		wi := core.Vec3{}
		if i > 0 {
			wi = dirTo(v, p.Vertex(i-1, transDir))
		}
		wo := dirTo(v, p.Vertex(i+1, transDir))
		fs := v.Primitive.EvaluateDirection(v.Geom, v.Type, wi, wo, transDir, false)
		if fs.IsBlack() {
			return core.Vec3{}
		}
		pdfD := v.Primitive.EvaluateDirectionPDF(v.Geom, v.Type, wi, wo, false)
		if pdfD == 0 {
			return core.Vec3{}
		}
		alpha = alpha.MultiplyVec(fs).Divide(pdfD)
	}
	return alpha
}

// EvaluateUnweightContribution evaluates Cstar, the unweighted
// contribution of strategy s: alphaL * cst * alphaE
func (p *Path) EvaluateUnweightContribution(sc *scene.Scene, s int) core.Vec3 {
	n := len(p.Vertices)
	t := n - s
	alphaL := p.EvaluateAlpha(sc, s, scene.LE)
	if alphaL.IsBlack() {
		return core.Vec3{}
	}
	alphaE := p.EvaluateAlpha(sc, t, scene.EL)
	if alphaE.IsBlack() {
		return core.Vec3{}
	}
	cst := p.EvaluateCst(s)
	return alphaL.MultiplyVec(cst).MultiplyVec(alphaE)
}

// EvaluateSpecularReflectances multiplies the BSDF values of the
// specular vertices with indices in [from, to), counted along the
// given transport direction
func (p *Path) EvaluateSpecularReflectances(from, to int, transDir scene.TransDir) core.Vec3 {
	n := len(p.Vertices)
	prod := core.NewVec3(1, 1, 1)
	for i := from; i < to; i++ {
		v := p.Vertex(i, transDir)
		if !v.IsSpecular() {
			continue
		}
		if i == 0 || i == n-1 {
			continue
		}
		wi := dirTo(v, p.Vertex(i-1, transDir))
		wo := dirTo(v, p.Vertex(i+1, transDir))
		fs := v.Primitive.EvaluateDirection(v.Geom, v.Type, wi, wo, transDir, false)
		if fs.IsBlack() {
			return core.Vec3{}
		}
		prod = prod.MultiplyVec(fs)
	}
	return prod
}

// RasterPosition projects the path onto the sensor raster plane
func (p *Path) RasterPosition() (core.Vec2, bool) {
	n := len(p.Vertices)
	if n < 2 {
		return core.Vec2{}, false
	}
	v := &p.Vertices[n-1]
	wo := dirTo(v, &p.Vertices[n-2])
	return v.Primitive.RasterPosition(wo, v.Geom)
}

// ScalarContrib reduces a contribution to the scalar the chains
// mutate on
func ScalarContrib(c core.Vec3) float64 {
	return c.Luminance()
}

// Clone deep-copies the path
func (p *Path) Clone() Path {
	vs := make([]Vertex, len(p.Vertices))
	copy(vs, p.Vertices)
	return Path{Vertices: vs}
}
