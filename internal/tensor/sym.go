package tensor

// Sym is a symmetric second-order tensor stored in both full and Voigt form.
// The zero value is the zero tensor. The two forms only change together.
type Sym struct {
	t Mat3
	v Vec6
}

// SymFromTensor symmetrizes m and keeps both forms.
func SymFromTensor(m Mat3) Sym {
	v := VectorFromTensor(m)
	return Sym{t: TensorFromVector(v), v: v}
}

func SymFromVector(v Vec6) Sym {
	return Sym{t: TensorFromVector(v), v: v}
}

func (s Sym) Tensor() Mat3 { return s.t }

func (s Sym) Vector() Vec6 { return s.v }

func (s Sym) Sub(o Sym) Sym { return SymFromVector(s.v.Add(o.v.Scale(-1))) }

// AddScaled returns s + dt·rate, the explicit Euler update.
func (s Sym) AddScaled(rate Sym, dt float64) Sym {
	return SymFromVector(s.v.Add(rate.v.Scale(dt)))
}

func (s Sym) Dot(o Sym) float64 { return s.t.Dot(o.t) }
