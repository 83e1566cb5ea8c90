package manifold

import (
	"math"

	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/path"
	"gonum.org/v1/gonum/mat"
)

// ConstraintJacobianDeterminant evaluates the generalized geometry
// factor of a specular chain: the absolute determinant of the 2x2
// transfer matrix that maps motion of the far anchor to motion of the
// first chain vertex.
func ConstraintJacobianDeterminant(sp path.Subpath) (float64, bool) {
	n := len(sp.Vertices)
	if n < 3 {
		return 0, false
	}
	blocks := ComputeConstraintJacobian(sp)
	m := len(blocks)

	a := assembleDense(blocks)
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return 0, false
	}

	// coupling of the first constrained vertex to the far anchor
	col := 2 * (m - 1)
	invA0n := core.NewMat2(
		inv.At(0, col), inv.At(0, col+1),
		inv.At(1, col), inv.At(1, col+1),
	)
	bn := blocks[m-1].C
	det := math.Abs(invA0n.Mul(bn).Det())
	if math.IsNaN(det) || math.IsInf(det, 0) {
		return 0, false
	}
	return det, true
}
