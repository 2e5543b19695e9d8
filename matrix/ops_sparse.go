// SPDX-License-Identifier: MIT

// Package matrix - sparse kernels used by graph construction and solvers.
//
// Purpose:
//   - Structural operations on CSR that preserve the stored/absent distinction:
//     transpose, union-pattern linear combination, diagonal shift, product.
//   - A layout-agnostic mat-vec with fast paths for *CSR and *Dense.
//
// Determinism:
//   - Output column indices are sorted; no map iteration anywhere.

package matrix

import (
	"fmt"
	"sort"
)

const (
	opTranspose = "Transpose"
	opAddScaled = "AddScaled"
	opShiftDiag = "ShiftDiagonal"
	opMul       = "Mul"
	opMulVec    = "MulVec"
)

func opErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Transpose returns Aᵀ as a new CSR (stored entries map 1:1, zeros included).
// Complexity: O(nnz + cols).
func Transpose(a *CSR) (*CSR, error) {
	if a == nil {
		return nil, opErrorf(opTranspose, ErrNilMatrix)
	}
	indptr := make([]int, a.c+1)
	for _, j := range a.indices {
		indptr[j+1]++
	}
	for j := 0; j < a.c; j++ {
		indptr[j+1] += indptr[j]
	}
	next := append([]int(nil), indptr[:a.c]...)
	indices := make([]int, len(a.indices))
	data := make([]float64, len(a.data))
	var i, p, q int
	for i = 0; i < a.r; i++ {
		for p = a.indptr[i]; p < a.indptr[i+1]; p++ {
			q = next[a.indices[p]]
			indices[q] = i
			data[q] = a.data[p]
			next[a.indices[p]]++
		}
	}

	return &CSR{r: a.c, c: a.r, indptr: indptr, indices: indices, data: data}, nil
}

// AddScaled returns alpha·A + beta·B over the union of both sparsity patterns.
// An entry stored in either operand is stored in the result.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(nnz(A) + nnz(B)).
func AddScaled(alpha float64, a *CSR, beta float64, b *CSR) (*CSR, error) {
	if a == nil || b == nil {
		return nil, opErrorf(opAddScaled, ErrNilMatrix)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return nil, opErrorf(opAddScaled, err)
	}
	indptr := make([]int, a.r+1)
	indices := make([]int, 0, len(a.data)+len(b.data))
	data := make([]float64, 0, len(a.data)+len(b.data))
	var i, p, q, pe, qe int
	for i = 0; i < a.r; i++ {
		p, pe = a.indptr[i], a.indptr[i+1]
		q, qe = b.indptr[i], b.indptr[i+1]
		for p < pe || q < qe {
			switch {
			case q >= qe || (p < pe && a.indices[p] < b.indices[q]):
				indices = append(indices, a.indices[p])
				data = append(data, alpha*a.data[p])
				p++
			case p >= pe || b.indices[q] < a.indices[p]:
				indices = append(indices, b.indices[q])
				data = append(data, beta*b.data[q])
				q++
			default:
				indices = append(indices, a.indices[p])
				data = append(data, alpha*a.data[p]+beta*b.data[q])
				p++
				q++
			}
		}
		indptr[i+1] = len(indices)
	}

	return &CSR{r: a.r, c: a.c, indptr: indptr, indices: indices, data: data}, nil
}

// Symmetrize returns (A + Aᵀ)/2 over the union pattern.
// Errors: ErrNilMatrix, ErrNonSquare.
func Symmetrize(a *CSR) (*CSR, error) {
	if a == nil {
		return nil, opErrorf("Symmetrize", ErrNilMatrix)
	}
	if a.r != a.c {
		return nil, opErrorf("Symmetrize", ErrNonSquare)
	}
	t, err := Transpose(a)
	if err != nil {
		return nil, err
	}

	return AddScaled(0.5, a, 0.5, t)
}

// ShiftDiagonal returns A + shift·I as a new CSR. Every diagonal entry is
// stored in the result, even when shift is 0.
// Errors: ErrNilMatrix, ErrNonSquare.
func ShiftDiagonal(a *CSR, shift float64) (*CSR, error) {
	if a == nil {
		return nil, opErrorf(opShiftDiag, ErrNilMatrix)
	}
	if a.r != a.c {
		return nil, opErrorf(opShiftDiag, ErrNonSquare)
	}
	diag := make([]float64, a.r)
	for i := range diag {
		diag[i] = shift
	}
	eye, err := NewCSRDiag(diag)
	if err != nil {
		return nil, opErrorf(opShiftDiag, err)
	}

	return AddScaled(1, a, 1, eye)
}

// SetDiagonal stores v on every diagonal position of a square CSR, in place.
func SetDiagonal(a *CSR, v float64) error {
	if a == nil {
		return opErrorf("SetDiagonal", ErrNilMatrix)
	}
	if a.r != a.c {
		return opErrorf("SetDiagonal", ErrNonSquare)
	}
	for i := 0; i < a.r; i++ {
		if err := a.Set(i, i, v); err != nil {
			return err
		}
	}

	return nil
}

// Mul returns A·B using Gustavson's row-by-row accumulation.
// Structural zeros produced by cancellation are kept as stored entries.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(Σ_i Σ_{k∈row i of A} nnz(row k of B)).
func Mul(a, b *CSR) (*CSR, error) {
	if a == nil || b == nil {
		return nil, opErrorf(opMul, ErrNilMatrix)
	}
	if a.c != b.r {
		return nil, opErrorf(opMul, ErrDimensionMismatch)
	}
	acc := make([]float64, b.c)
	mark := make([]int, b.c)
	for j := range mark {
		mark[j] = -1
	}
	indptr := make([]int, a.r+1)
	indices := make([]int, 0)
	data := make([]float64, 0)
	row := make([]int, 0)
	var i, p, q, k, j int
	for i = 0; i < a.r; i++ {
		row = row[:0]
		for p = a.indptr[i]; p < a.indptr[i+1]; p++ {
			k = a.indices[p]
			for q = b.indptr[k]; q < b.indptr[k+1]; q++ {
				j = b.indices[q]
				if mark[j] != i {
					mark[j] = i
					acc[j] = 0
					row = append(row, j)
				}
				acc[j] += a.data[p] * b.data[q]
			}
		}
		sort.Ints(row)
		for _, j = range row {
			indices = append(indices, j)
			data = append(data, acc[j])
		}
		indptr[i+1] = len(indices)
	}

	return &CSR{r: a.r, c: b.c, indptr: indptr, indices: indices, data: data}, nil
}

// MulVec computes A·x for any layout; *CSR and *Dense take direct paths.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
func MulVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, err
	}
	if len(x) != m.Cols() {
		return nil, opErrorf(opMulVec, ErrDimensionMismatch)
	}
	out := make([]float64, m.Rows())
	switch a := m.(type) {
	case *CSR:
		return out, a.MulVecTo(out, x)
	case *Dense:
		var i, j, base int
		var s float64
		for i = 0; i < a.r; i++ {
			base = i * a.c
			s = 0
			for j = 0; j < a.c; j++ {
				s += a.data[base+j] * x[j]
			}
			out[i] = s
		}

		return out, nil
	case Sparse:
		a.Do(func(i, j int, v float64) { out[i] += v * x[j] })

		return out, nil
	}
	doAll(m, func(i, j int, v float64) { out[i] += v * x[j] })

	return out, nil
}
