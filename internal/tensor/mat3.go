package tensor

import "math"

type Mat3 [3][3]float64

func Identity() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func Diag(a, b, c float64) Mat3 {
	return Mat3{{a, 0, 0}, {0, b, 0}, {0, 0, c}}
}

// Outer returns the dyadic product a⊗b, (a⊗b)_ij = a_i b_j.
func Outer(a, b Vec3) Mat3 {
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = a[i] * b[j]
		}
	}
	return m
}

func (m Mat3) Add(n Mat3) Mat3 {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] += n[i][j]
		}
	}
	return m
}

func (m Mat3) Sub(n Mat3) Mat3 {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] -= n[i][j]
		}
	}
	return m
}

func (m Mat3) Scale(s float64) Mat3 {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] *= s
		}
	}
	return m
}

// AddScaled returns m + s·n.
func (m Mat3) AddScaled(n Mat3, s float64) Mat3 {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] += s * n[i][j]
		}
	}
	return m
}

func (m Mat3) Mul(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return r
}

func (m Mat3) MulVec(v Vec3) Vec3 {
	var r Vec3
	for i := 0; i < 3; i++ {
		r[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return r
}

func (m Mat3) T() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Dot is the double contraction m:n = Σ m_ij n_ij.
func (m Mat3) Dot(n Mat3) float64 {
	var s float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s += m[i][j] * n[i][j]
		}
	}
	return s
}

// SymPart returns (m + mᵀ)/2.
func (m Mat3) SymPart() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = (m[i][j] + m[j][i]) / 2
		}
	}
	return r
}

// SkewPart returns (m - mᵀ)/2.
func (m Mat3) SkewPart() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = (m[i][j] - m[j][i]) / 2
		}
	}
	return r
}

func (m Mat3) Trace() float64 { return m[0][0] + m[1][1] + m[2][2] }

// MaxAbs is the largest absolute component.
func (m Mat3) MaxAbs() float64 {
	var r float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if a := math.Abs(m[i][j]); a > r {
				r = a
			}
		}
	}
	return r
}

// IsIdentity reports whether every component is within tol of the identity.
func (m Mat3) IsIdentity(tol float64) bool {
	return m.Sub(Identity()).MaxAbs() < tol
}

// Rotate returns r·m·rᵀ, the crystal-to-sample change of basis.
func (m Mat3) Rotate(r Mat3) Mat3 {
	return r.Mul(m).Mul(r.T())
}

// IsFinite reports whether no component is NaN or infinite.
func (m Mat3) IsFinite() bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.IsNaN(m[i][j]) || math.IsInf(m[i][j], 0) {
				return false
			}
		}
	}
	return true
}
