package manifold

import (
	"github.com/df07/go-manifold-mlt/pkg/core"
	"gonum.org/v1/gonum/mat"
)

// SolveBlockTridiagonal solves the block-tridiagonal system given by
// the Jacobian blocks for the right-hand side V using a block LU
// factorization. Fails when a pivot block is singular.
func SolveBlockTridiagonal(blocks []VertexBlock, v []core.Vec2) ([]core.Vec2, bool) {
	n := len(blocks)
	if n == 0 || len(v) != n {
		return nil, false
	}

	u := make([]core.Mat2, n)
	l := make([]core.Mat2, n)
	u[0] = blocks[0].B
	for i := 1; i < n; i++ {
		invU, ok := u[i-1].Inverse()
		if !ok {
			return nil, false
		}
		l[i] = blocks[i].A.Mul(invU)
		u[i] = blocks[i].B.Subtract(l[i].Mul(blocks[i-1].C))
	}

	vp := make([]core.Vec2, n)
	vp[0] = v[0]
	for i := 1; i < n; i++ {
		vp[i] = v[i].Subtract(l[i].MulVec(vp[i-1]))
	}

	w := make([]core.Vec2, n)
	invU, ok := u[n-1].Inverse()
	if !ok {
		return nil, false
	}
	w[n-1] = invU.MulVec(vp[n-1])
	for i := n - 2; i >= 0; i-- {
		invU, ok = u[i].Inverse()
		if !ok {
			return nil, false
		}
		w[i] = invU.MulVec(vp[i].Subtract(blocks[i].C.MulVec(w[i+1])))
	}
	return w, true
}

// assembleDense expands the block-tridiagonal Jacobian into a dense
// 2n x 2n matrix
func assembleDense(blocks []VertexBlock) *mat.Dense {
	n := len(blocks)
	d := mat.NewDense(2*n, 2*n, nil)
	setBlock := func(r, c int, m core.Mat2) {
		d.Set(2*r, 2*c, m.M00)
		d.Set(2*r, 2*c+1, m.M01)
		d.Set(2*r+1, 2*c, m.M10)
		d.Set(2*r+1, 2*c+1, m.M11)
	}
	for i, b := range blocks {
		if i > 0 {
			setBlock(i, i-1, b.A)
		}
		setBlock(i, i, b.B)
		if i < n-1 {
			setBlock(i, i+1, b.C)
		}
	}
	return d
}

// SolveDense solves the same system through a dense factorization.
// Slower than the block solve but tolerant of singular pivot blocks.
func SolveDense(blocks []VertexBlock, v []core.Vec2) ([]core.Vec2, bool) {
	n := len(blocks)
	if n == 0 || len(v) != n {
		return nil, false
	}
	a := assembleDense(blocks)
	rhs := mat.NewVecDense(2*n, nil)
	for i, e := range v {
		rhs.SetVec(2*i, e.X)
		rhs.SetVec(2*i+1, e.Y)
	}
	var sol mat.VecDense
	if err := sol.SolveVec(a, rhs); err != nil {
		return nil, false
	}
	w := make([]core.Vec2, n)
	for i := range w {
		w[i] = core.NewVec2(sol.AtVec(2*i), sol.AtVec(2*i+1))
	}
	return w, true
}
