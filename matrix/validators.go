// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Keep kernels/facades minimal by delegating shape/nil/symmetry checks here.
//
// Determinism & Performance:
//  - All checks are pure and deterministic.
//  - Symmetry on sparse layouts costs O(nnz log nnz_row): only stored entries
//    and their mirrors are compared.
//
// Note:
//  - Each composite validator follows a fixed sequence (NotNil → Shape → values).

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil, including typed nils
// of the concrete layouts in this package.
// Complexity: O(1).
func ValidateNotNil(m Matrix) error {
	switch v := m.(type) {
	case nil:
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	case *Dense:
		if v == nil {
			return validatorErrorf("ValidateNotNil", ErrNilMatrix)
		}
	case *CSR:
		if v == nil {
			return validatorErrorf("ValidateNotNil", ErrNilMatrix)
		}
	case *COO:
		if v == nil {
			return validatorErrorf("ValidateNotNil", ErrNilMatrix)
		}
	}

	return nil
}

// ValidateSquare checks that m is non-nil and square (Rows == Cols).
// Errors: ErrNilMatrix, ErrNonSquare.
func ValidateSquare(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if m.Rows() != m.Cols() {
		return validatorErrorf("ValidateSquare", ErrNonSquare)
	}

	return nil
}

// ValidateSameShape ensures a and b have equal dimensions.
// Assumes a and b are not nil.
func ValidateSameShape(a, b Matrix) error {
	if a.Rows() != b.Rows() {
		return validatorErrorf("ValidateSameShape: Rows", ErrDimensionMismatch)
	}
	if a.Cols() != b.Cols() {
		return validatorErrorf("ValidateSameShape: Columns", ErrDimensionMismatch)
	}

	return nil
}

// ValidateVecLen ensures the vector length matches the required size n.
func ValidateVecLen(x []float64, n int) error {
	if x == nil {
		return validatorErrorf("ValidateVecLen", ErrNilMatrix)
	}
	if len(x) != n {
		return validatorErrorf("ValidateVecLen", ErrDimensionMismatch)
	}

	return nil
}

// ValidateFinite scans every stored value and rejects NaN/±Inf.
// Complexity: O(nnz) for Sparse layouts, O(r*c) otherwise.
func ValidateFinite(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	bad := false
	visit := func(_, _ int, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = true
		}
	}
	if s, ok := m.(Sparse); ok {
		s.Do(visit)
	} else {
		doAll(m, visit)
	}
	if bad {
		return validatorErrorf("ValidateFinite", ErrNaNInf)
	}

	return nil
}

// MaxAsymmetry returns max |A[i,j] − A[j,i]| over stored entries.
// Dense and unknown layouts compare the strict upper triangle; sparse layouts
// compare every stored entry against its mirror (absent mirrors read as 0).
// Errors: ErrNilMatrix, ErrNonSquare.
func MaxAsymmetry(m Matrix) (float64, error) {
	if err := ValidateSquare(m); err != nil {
		return 0, err
	}
	var worst float64
	switch a := m.(type) {
	case *Dense:
		n := a.r
		var i, j int
		var d float64
		for i = 0; i < n; i++ {
			for j = i + 1; j < n; j++ {
				d = math.Abs(a.data[i*n+j] - a.data[j*n+i])
				if d > worst {
					worst = d
				}
			}
		}
	case *CSR:
		a.Do(func(i, j int, v float64) {
			if i == j {
				return
			}
			mirror, _ := a.At(j, i)
			if d := math.Abs(v - mirror); d > worst {
				worst = d
			}
		})
	case *COO:
		return MaxAsymmetry(a.ToCSR())
	default:
		n := m.Rows()
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				aij, _ := m.At(i, j)
				aji, _ := m.At(j, i)
				if d := math.Abs(aij - aji); d > worst {
					worst = d
				}
			}
		}
	}

	return worst, nil
}

// IsSymmetric reports MaxAsymmetry(m) < tol. Non-square or nil input is
// reported as not symmetric.
func IsSymmetric(m Matrix, tol float64) bool {
	d, err := MaxAsymmetry(m)
	if err != nil {
		return false
	}

	return d < tol
}

// ValidateSymmetric returns ErrAsymmetry when MaxAsymmetry(m) > tol.
// Errors: ErrNilMatrix, ErrNonSquare, ErrNaNInf (bad tol), ErrAsymmetry.
func ValidateSymmetric(m Matrix, tol float64) error {
	if math.IsNaN(tol) || math.IsInf(tol, 0) {
		return validatorErrorf("ValidateSymmetric", ErrNaNInf)
	}
	d, err := MaxAsymmetry(m)
	if err != nil {
		return validatorErrorf("ValidateSymmetric", err)
	}
	if d > math.Abs(tol) {
		return validatorErrorf("ValidateSymmetric", ErrAsymmetry)
	}

	return nil
}

// doAll visits every cell through the interface (fallback path).
func doAll(m Matrix, fn func(i, j int, v float64)) {
	r, c := m.Rows(), m.Cols()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v, _ := m.At(i, j)
			fn(i, j, v)
		}
	}
}
