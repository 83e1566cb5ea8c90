package manifold

import (
	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/path"
)

// VertexBlock holds the three 2x2 blocks of one row of the
// block-tridiagonal constraint Jacobian: A couples to the previous
// vertex, B to the vertex itself, C to the next vertex.
type VertexBlock struct {
	A, B, C core.Mat2
}

// colMat2 builds a matrix from column-major entries: columns (a,b)
// and (c,d)
func colMat2(a, b, c, d float64) core.Mat2 {
	return core.NewMat2(a, c, b, d)
}

// ComputeConstraintJacobian differentiates the half-vector constraint
// of every interior vertex of the chain with respect to the tangent
// coordinates of its neighbors. Interior vertex i yields block i-1.
func ComputeConstraintJacobian(sp path.Subpath) []VertexBlock {
	n := len(sp.Vertices)
	blocks := make([]VertexBlock, 0, n-2)
	for i := 1; i < n-1; i++ {
		x := &sp.Vertices[i]
		xp := &sp.Vertices[i-1]
		xn := &sp.Vertices[i+1]

		toPrev := xp.Geom.P.Subtract(x.Geom.P)
		toNext := xn.Geom.P.Subtract(x.Geom.P)
		wi := toPrev.Normalize()
		wo := toNext.Normalize()
		eta := 1 / x.Primitive.Eta(x.Geom, wi)
		normalizeH := eta != 1

		h := wi.Add(wo.Multiply(eta))
		invHL := 1.0
		if normalizeH {
			invHL = 1 / h.Length()
			h = h.Multiply(invHL)
		}
		invWiL := 1 / toPrev.Length()
		invWoL := 1 / toNext.Length()

		sn := x.Geom.Sn
		dotHN := sn.Dot(h)
		dotHDndu := x.Geom.Dndu.Dot(h)
		dotHDndv := x.Geom.Dndv.Dot(h)
		dotUN := x.Geom.Dpdu.Dot(sn)
		dotVN := x.Geom.Dpdv.Dot(sn)
		s := x.Geom.Dpdu.Subtract(sn.Multiply(dotUN))
		t := x.Geom.Dpdv.Subtract(sn.Multiply(dotVN))

		ili := invWiL * invHL
		ilo := invWoL * invHL * eta

		project := func(v core.Vec3) core.Vec3 {
			if normalizeH {
				return v.Subtract(h.Multiply(v.Dot(h)))
			}
			return v
		}

		// A: variation of the previous vertex
		tu := xp.Geom.Dpdu.Subtract(wi.Multiply(wi.Dot(xp.Geom.Dpdu))).Multiply(ili)
		tv := xp.Geom.Dpdv.Subtract(wi.Multiply(wi.Dot(xp.Geom.Dpdv))).Multiply(ili)
		dHdu, dHdv := project(tu), project(tv)
		a := colMat2(dHdu.Dot(s), dHdu.Dot(t), dHdv.Dot(s), dHdv.Dot(t))

		// B: variation of the vertex itself, including the normal
		// derivative terms
		tu = x.Geom.Dpdu.Negate().Multiply(ili + ilo).
			Add(wi.Multiply(wi.Dot(x.Geom.Dpdu) * ili)).
			Add(wo.Multiply(wo.Dot(x.Geom.Dpdu) * ilo))
		tv = x.Geom.Dpdv.Negate().Multiply(ili + ilo).
			Add(wi.Multiply(wi.Dot(x.Geom.Dpdv) * ili)).
			Add(wo.Multiply(wo.Dot(x.Geom.Dpdv) * ilo))
		dHdu, dHdv = project(tu), project(tv)
		b := colMat2(
			dHdu.Dot(s)-x.Geom.Dpdu.Dot(x.Geom.Dndu)*dotHN-dotUN*dotHDndu,
			dHdu.Dot(t)-x.Geom.Dpdv.Dot(x.Geom.Dndu)*dotHN-dotVN*dotHDndu,
			dHdv.Dot(s)-x.Geom.Dpdu.Dot(x.Geom.Dndv)*dotHN-dotUN*dotHDndv,
			dHdv.Dot(t)-x.Geom.Dpdv.Dot(x.Geom.Dndv)*dotHN-dotVN*dotHDndv,
		)

		// C: variation of the next vertex
		tu = xn.Geom.Dpdu.Subtract(wo.Multiply(wo.Dot(xn.Geom.Dpdu))).Multiply(ilo)
		tv = xn.Geom.Dpdv.Subtract(wo.Multiply(wo.Dot(xn.Geom.Dpdv))).Multiply(ilo)
		dHdu, dHdv = project(tu), project(tv)
		c := colMat2(dHdu.Dot(s), dHdu.Dot(t), dHdv.Dot(s), dHdv.Dot(t))

		blocks = append(blocks, VertexBlock{A: a, B: b, C: c})
	}
	return blocks
}
