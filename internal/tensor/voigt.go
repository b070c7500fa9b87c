package tensor

import "gonum.org/v1/gonum/mat"

type Vec6 [6]float64

type Mat6 [6][6]float64

// voigtIndex maps a Voigt slot to its tensor indices.
var voigtIndex = [6][2]int{{0, 0}, {1, 1}, {2, 2}, {1, 2}, {0, 2}, {0, 1}}

// VectorFromTensor packs a tensor into Voigt order. Off-diagonal pairs are
// averaged, so a non-symmetric input is symmetrized.
func VectorFromTensor(m Mat3) Vec6 {
	var v Vec6
	for k, ij := range voigtIndex {
		i, j := ij[0], ij[1]
		if i == j {
			v[k] = m[i][i]
			continue
		}
		v[k] = (m[i][j] + m[j][i]) / 2
	}
	return v
}

// TensorFromVector unpacks a Voigt vector into a symmetric tensor.
func TensorFromVector(v Vec6) Mat3 {
	var m Mat3
	for k, ij := range voigtIndex {
		i, j := ij[0], ij[1]
		m[i][j] = v[k]
		m[j][i] = v[k]
	}
	return m
}

func (v Vec6) Add(w Vec6) Vec6 {
	for i := range v {
		v[i] += w[i]
	}
	return v
}

func (v Vec6) Scale(s float64) Vec6 {
	for i := range v {
		v[i] *= s
	}
	return v
}

func (c Mat6) MulVec(v Vec6) Vec6 {
	var r Vec6
	for i := 0; i < 6; i++ {
		var s float64
		for j := 0; j < 6; j++ {
			s += c[i][j] * v[j]
		}
		r[i] = s
	}
	return r
}

// Dense copies c into a gonum matrix.
func (c Mat6) Dense() *mat.Dense {
	d := mat.NewDense(6, 6, nil)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			d.Set(i, j, c[i][j])
		}
	}
	return d
}

// SymDense copies the upper triangle of c into a gonum symmetric matrix.
func (c Mat6) SymDense() *mat.SymDense {
	s := mat.NewSymDense(6, nil)
	for i := 0; i < 6; i++ {
		for j := i; j < 6; j++ {
			s.SetSym(i, j, c[i][j])
		}
	}
	return s
}
