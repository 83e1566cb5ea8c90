package core

// Mat2 is a 2x2 matrix in row-major order:
//
//	| M00 M01 |
//	| M10 M11 |
type Mat2 struct {
	M00, M01, M10, M11 float64
}

// NewMat2 creates a matrix from rows (m00 m01; m10 m11)
func NewMat2(m00, m01, m10, m11 float64) Mat2 {
	return Mat2{M00: m00, M01: m01, M10: m10, M11: m11}
}

// Mat2Identity returns the identity matrix
func Mat2Identity() Mat2 {
	return Mat2{M00: 1, M11: 1}
}

// Add returns the sum of two matrices
func (m Mat2) Add(other Mat2) Mat2 {
	return Mat2{m.M00 + other.M00, m.M01 + other.M01, m.M10 + other.M10, m.M11 + other.M11}
}

// Subtract returns the difference of two matrices
func (m Mat2) Subtract(other Mat2) Mat2 {
	return Mat2{m.M00 - other.M00, m.M01 - other.M01, m.M10 - other.M10, m.M11 - other.M11}
}

// Scale returns the matrix with every entry multiplied by s
func (m Mat2) Scale(s float64) Mat2 {
	return Mat2{m.M00 * s, m.M01 * s, m.M10 * s, m.M11 * s}
}

// Mul returns the matrix product m * other
func (m Mat2) Mul(other Mat2) Mat2 {
	return Mat2{
		M00: m.M00*other.M00 + m.M01*other.M10,
		M01: m.M00*other.M01 + m.M01*other.M11,
		M10: m.M10*other.M00 + m.M11*other.M10,
		M11: m.M10*other.M01 + m.M11*other.M11,
	}
}

// MulVec returns the matrix-vector product m * v
func (m Mat2) MulVec(v Vec2) Vec2 {
	return Vec2{
		X: m.M00*v.X + m.M01*v.Y,
		Y: m.M10*v.X + m.M11*v.Y,
	}
}

// Det returns the determinant
func (m Mat2) Det() float64 {
	return m.M00*m.M11 - m.M01*m.M10
}

// Inverse returns the inverse matrix and false if the matrix is singular
func (m Mat2) Inverse() (Mat2, bool) {
	det := m.Det()
	if det == 0 {
		return Mat2{}, false
	}
	inv := 1.0 / det
	return Mat2{
		M00: m.M11 * inv,
		M01: -m.M01 * inv,
		M10: -m.M10 * inv,
		M11: m.M00 * inv,
	}, true
}
