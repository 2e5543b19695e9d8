// SPDX-License-Identifier: MIT

package eigen

import (
	"math"
	"math/rand/v2"

	"github.com/chanhou/megaman/matrix"
	"gonum.org/v1/gonum/floats"
)

// operator is a square linear map x -> A·x.
type operator struct {
	n     int
	apply func(dst, src []float64)
}

// newOperator wraps m with the cheapest mat-vec its layout offers.
func newOperator(m matrix.Matrix) (*operator, error) {
	n := m.Rows()
	switch a := m.(type) {
	case *matrix.CSR:
		return &operator{n: n, apply: func(dst, src []float64) { _ = a.MulVecTo(dst, src) }}, nil
	case *matrix.Dense:
		data := a.RawData()
		return &operator{n: n, apply: func(dst, src []float64) {
			for i := 0; i < n; i++ {
				dst[i] = floats.Dot(data[i*n:(i+1)*n], src)
			}
		}}, nil
	}
	csr, err := matrix.ToCSR(m)
	if err != nil {
		return nil, err
	}

	return newOperator(csr)
}

// negated returns x -> −A·x.
func (op *operator) negated() *operator {
	return &operator{n: op.n, apply: func(dst, src []float64) {
		op.apply(dst, src)
		floats.Scale(-1, dst)
	}}
}

// newRand returns the deterministic generator for seed.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// uniformVector fills a fresh n-vector from U(lo, hi).
func uniformVector(rng *rand.Rand, n int, lo, hi float64) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = lo + (hi-lo)*rng.Float64()
	}

	return v
}

// orthogonalizeAgainst removes the components of v along every basis vector
// (classical Gram–Schmidt applied twice). coef, when non-nil, accumulates the
// projection coefficients. Returns the remaining norm.
func orthogonalizeAgainst(v []float64, basis [][]float64, coef []float64) float64 {
	for pass := 0; pass < 2; pass++ {
		for i, b := range basis {
			h := floats.Dot(b, v)
			floats.AddScaled(v, -h, b)
			if coef != nil {
				coef[i] += h
			}
		}
	}

	return floats.Norm(v, 2)
}

// randomOrthogonal draws a unit vector orthogonal to basis. It returns nil
// when the basis already spans the whole space.
func randomOrthogonal(rng *rand.Rand, n int, basis [][]float64) []float64 {
	if len(basis) >= n {
		return nil
	}
	for attempt := 0; attempt < 8; attempt++ {
		v := uniformVector(rng, n, -1, 1)
		norm := orthogonalizeAgainst(v, basis, nil)
		if norm > 1e-8 {
			floats.Scale(1/norm, v)
			return v
		}
	}

	return nil
}

// combine returns Σ_j basis[j]·c[j].
func combine(basis [][]float64, c []float64) []float64 {
	out := make([]float64, len(basis[0]))
	for j, b := range basis {
		if c[j] != 0 {
			floats.AddScaled(out, c[j], b)
		}
	}

	return out
}

// breakdownTol is the norm below which a new Krylov direction is treated as
// lying in the current subspace.
func breakdownTol(scale float64) float64 {
	return 1e-12 * math.Max(1, scale)
}
