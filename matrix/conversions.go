// SPDX-License-Identifier: MIT

// Package matrix - layout conversions and the gonum bridge.
//
// AI-Hints:
//   - ToCSR on a *CSR returns the SAME pointer; Clone first if you intend to mutate.
//   - ToGonum always copies, so gonum factorizations never alias package buffers.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ToCSR returns m in CSR layout.
// MAIN DESCRIPTION:
//   - *CSR is returned as is; *COO is compressed (duplicates summed);
//     *Dense and foreign layouts are sparsified with the options' Epsilon.
//
// Behavior highlights:
//   - Dense cells with |v| <= Epsilon are dropped unless WithKeepZeros is set.
//   - Diagonal cells are dropped like any other cell; callers that need an
//     explicit diagonal must set it afterwards.
//
// Errors:
//   - ErrNilMatrix; ErrNaNInf when the numeric policy is on and a value is not finite.
//
// Complexity:
//   - Time O(nnz) for CSR/COO(+sort), O(r*c) for Dense.
func ToCSR(m Matrix, opts ...Option) (*CSR, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, err
	}
	switch a := m.(type) {
	case *CSR:
		return a, nil
	case *COO:
		return a.ToCSR(), nil
	}

	o := NewOptions(opts...)
	r, c := m.Rows(), m.Cols()
	indptr := make([]int, r+1)
	indices := make([]int, 0)
	data := make([]float64, 0)
	var failed error
	visit := func(i, j int, v float64) {
		if failed != nil {
			return
		}
		if o.ValidateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
			failed = fmt.Errorf("ToCSR(%d,%d): %w", i, j, ErrNaNInf)
			return
		}
		if !o.KeepZeros && math.Abs(v) <= o.Epsilon {
			return
		}
		indices = append(indices, j)
		data = append(data, v)
		indptr[i+1]++
	}
	if d, ok := m.(*Dense); ok {
		d.Do(visit)
	} else {
		doAll(m, visit)
	}
	if failed != nil {
		return nil, failed
	}
	for i := 0; i < r; i++ {
		indptr[i+1] += indptr[i]
	}

	return &CSR{r: r, c: c, indptr: indptr, indices: indices, data: data}, nil
}

// ToDense materializes m as a new *Dense (always a copy).
// Errors: ErrNilMatrix.
func ToDense(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, err
	}
	if d, ok := m.(*Dense); ok {
		return d.Clone().(*Dense), nil
	}
	out, err := NewDense(m.Rows(), m.Cols())
	if err != nil {
		return nil, err
	}
	c := out.c
	if s, ok := m.(Sparse); ok {
		s.Do(func(i, j int, v float64) { out.data[i*c+j] += v })

		return out, nil
	}
	doAll(m, func(i, j int, v float64) { out.data[i*c+j] = v })

	return out, nil
}

// ToGonum copies m into a gonum *mat.Dense.
func ToGonum(m Matrix) (*mat.Dense, error) {
	d, err := ToDense(m)
	if err != nil {
		return nil, err
	}

	return mat.NewDense(d.r, d.c, d.data), nil
}

// ToGonumSym copies the upper triangle of a square m into a *mat.SymDense.
// Symmetry is not checked; callers decide the tolerance beforehand.
func ToGonumSym(m Matrix) (*mat.SymDense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, err
	}
	d, err := ToDense(m)
	if err != nil {
		return nil, err
	}

	return mat.NewSymDense(d.r, d.data), nil
}

// FromGonum copies a gonum matrix into a new *Dense.
func FromGonum(g mat.Matrix) (*Dense, error) {
	r, c := g.Dims()
	out, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.data[i*c+j] = g.At(i, j)
		}
	}

	return out, nil
}
