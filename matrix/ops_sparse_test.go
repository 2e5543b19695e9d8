package matrix_test

import (
	"testing"

	"github.com/chanhou/megaman/matrix"
	"github.com/stretchr/testify/require"
)

func TestTranspose(t *testing.T) {
	a := MustCSR(t, 2, 3, [][3]float64{{0, 2, 1}, {1, 0, 0}, {1, 2, 3}})
	at, err := matrix.Transpose(a)
	require.NoError(t, err)
	require.Equal(t, 3, at.Rows())
	require.Equal(t, 3, at.NNZ())
	require.True(t, at.Has(0, 1)) // explicit zero survives
	CompareExact(t, [][]float64{{0, 0}, {0, 0}, {1, 3}}, at)
}

func TestAddScaledUnionPattern(t *testing.T) {
	a := MustCSR(t, 2, 2, [][3]float64{{0, 0, 1}, {0, 1, 2}})
	b := MustCSR(t, 2, 2, [][3]float64{{0, 1, -2}, {1, 0, 4}})
	c, err := matrix.AddScaled(1, a, 1, b)
	require.NoError(t, err)
	require.Equal(t, 3, c.NNZ())
	require.True(t, c.Has(0, 1)) // cancellation keeps the entry
	CompareExact(t, [][]float64{{1, 0}, {4, 0}}, c)

	_, err = matrix.AddScaled(1, a, 1, MustCSR(t, 2, 3, nil))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestSymmetrizeAndShift(t *testing.T) {
	a := MustCSR(t, 2, 2, [][3]float64{{0, 1, 2}})
	s, err := matrix.Symmetrize(a)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{0, 1}, {1, 0}}, s)
	require.True(t, matrix.IsSymmetric(s, 1e-12))

	sh, err := matrix.ShiftDiagonal(s, 0)
	require.NoError(t, err)
	require.True(t, sh.Has(0, 0))
	require.True(t, sh.Has(1, 1))

	sh, err = matrix.ShiftDiagonal(s, 2)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{2, 1}, {1, 2}}, sh)

	require.NoError(t, matrix.SetDiagonal(a, 1))
	CompareExact(t, [][]float64{{1, 2}, {0, 1}}, a)
}

func TestMulMatchesDense(t *testing.T) {
	a := MustCSR(t, 2, 3, [][3]float64{{0, 0, 1}, {0, 2, 2}, {1, 1, 3}})
	b := MustCSR(t, 3, 2, [][3]float64{{0, 0, 1}, {1, 1, 1}, {2, 0, 1}, {2, 1, -1}})
	c, err := matrix.Mul(a, b)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{3, -2}, {0, 3}}, c)

	_, err = matrix.Mul(a, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestMulVecPaths(t *testing.T) {
	d := NewFilledDense(t, 2, 2, []float64{1, 2, 3, 4})
	s, err := matrix.ToCSR(d)
	require.NoError(t, err)
	x := []float64{1, -1}
	want := []float64{-1, -1}
	for _, m := range []matrix.Matrix{d, s, hide{d}} {
		got, err := matrix.MulVec(m, x)
		require.NoError(t, err)
		require.True(t, AlmostEqualSlice(want, got, 0))
	}
	_, err = matrix.MulVec(d, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}
