// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/chanhou/megaman/matrix"
	"github.com/stretchr/testify/require"
)

// TestNewCSRValidation rejects malformed arrays.
func TestNewCSRValidation(t *testing.T) {
	_, err := matrix.NewCSR(2, 2, []int{0, 1}, []int{0}, []float64{1})
	require.ErrorIs(t, err, matrix.ErrBadStructure)

	_, err = matrix.NewCSR(1, 3, []int{0, 2}, []int{2, 1}, []float64{1, 1})
	require.ErrorIs(t, err, matrix.ErrBadStructure)

	_, err = matrix.NewCSR(1, 2, []int{0, 1}, []int{5}, []float64{1})
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	m, err := matrix.NewCSR(2, 3, []int{0, 2, 3}, []int{0, 2, 1}, []float64{1, 2, 3})
	require.NoError(t, err)
	CompareExact(t, [][]float64{{1, 0, 2}, {0, 3, 0}}, m)
}

// TestCSRExplicitZero keeps a stored zero distinct from an absent entry.
func TestCSRExplicitZero(t *testing.T) {
	m := MustCSR(t, 3, 3, [][3]float64{{0, 0, 0}, {0, 1, 2.5}})
	require.Equal(t, 2, m.NNZ())
	require.True(t, m.Has(0, 0))
	require.False(t, m.Has(1, 1))
	require.Equal(t, 0.0, MustAt(t, m, 1, 1))
}

// TestCSRSetInsert inserts in sorted position and keeps later rows intact.
func TestCSRSetInsert(t *testing.T) {
	m := MustCSR(t, 3, 3, [][3]float64{{0, 2, 1}, {2, 0, 4}})
	MustSet(t, m, 0, 0, 5)
	MustSet(t, m, 1, 1, 0)
	MustSet(t, m, 0, 2, 7)

	require.Equal(t, 4, m.NNZ())
	CompareExact(t, [][]float64{{5, 0, 7}, {0, 0, 0}, {4, 0, 0}}, m)
	cols, _ := m.RowView(0)
	require.Equal(t, []int{0, 2}, cols)
	require.True(t, m.Has(1, 1))
}

// TestCSRCloneIndependence checks deep copy semantics.
func TestCSRCloneIndependence(t *testing.T) {
	m := MustCSR(t, 2, 2, [][3]float64{{0, 0, 1}})
	c := m.Clone()
	MustSet(t, c, 1, 1, 9)
	MustSet(t, c, 0, 0, 3)

	require.Equal(t, 1, m.NNZ())
	require.Equal(t, 1.0, MustAt(t, m, 0, 0))
}

// TestCOODuplicatesSummed checks assembly semantics.
func TestCOODuplicatesSummed(t *testing.T) {
	coo, err := matrix.NewCOO(2, 2)
	require.NoError(t, err)
	require.NoError(t, coo.Append(1, 0, 1))
	require.NoError(t, coo.Append(1, 0, 2))
	require.NoError(t, coo.Append(0, 1, 0))
	require.Equal(t, 3.0, MustAt(t, coo, 1, 0))

	csr := coo.ToCSR()
	require.Equal(t, 2, csr.NNZ())
	require.Equal(t, 3.0, MustAt(t, csr, 1, 0))

	require.NoError(t, coo.Set(1, 0, 5))
	require.Equal(t, 5.0, MustAt(t, coo, 1, 0))
	require.ErrorIs(t, coo.Append(2, 0, 1), matrix.ErrOutOfRange)
}

// TestCSRMulVecAndSums checks the basic numeric kernels.
func TestCSRMulVecAndSums(t *testing.T) {
	m := MustCSR(t, 2, 3, [][3]float64{{0, 0, 1}, {0, 2, 2}, {1, 1, 3}})
	dst := make([]float64, 2)
	require.NoError(t, m.MulVecTo(dst, []float64{1, 1, 1}))
	require.Equal(t, []float64{3, 3}, dst)
	require.Equal(t, []float64{3, 3}, m.RowSums())
	require.ErrorIs(t, m.MulVecTo(dst, []float64{1}), matrix.ErrDimensionMismatch)

	require.NoError(t, m.ScaleRows([]float64{2, 1}))
	require.NoError(t, m.ScaleCols([]float64{1, 1, 0.5}))
	CompareExact(t, [][]float64{{2, 0, 2}, {0, 3, 0}}, m)
}
