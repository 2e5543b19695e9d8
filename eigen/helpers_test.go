package eigen_test

import (
	"math"
	"testing"

	"github.com/chanhou/megaman/eigen"
	"github.com/chanhou/megaman/matrix"
	"github.com/stretchr/testify/require"
)

// diagCSR builds a diagonal CSR matrix holding values.
func diagCSR(t *testing.T, values ...float64) *matrix.CSR {
	t.Helper()
	m, err := matrix.NewCSRDiag(values)
	require.NoError(t, err)

	return m
}

// rangeValues returns lo, lo+1, ..., hi.
func rangeValues(lo, hi int) []float64 {
	out := make([]float64, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, float64(v))
	}

	return out
}

// pathLaplacian returns D − A for the unweighted path graph on n nodes,
// plus shift on the diagonal.
func pathLaplacian(t *testing.T, n int, shift float64) *matrix.CSR {
	t.Helper()
	coo, err := matrix.NewCOO(n, n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		deg := 2.0
		if i == 0 || i == n-1 {
			deg = 1
		}
		require.NoError(t, coo.Append(i, i, deg+shift))
		if i+1 < n {
			require.NoError(t, coo.Append(i, i+1, -1))
			require.NoError(t, coo.Append(i+1, i, -1))
		}
	}

	return coo.ToCSR()
}

// pathEigenvalue is the j-th smallest eigenvalue of the n-node path Laplacian.
func pathEigenvalue(n, j int) float64 {
	return 2 - 2*math.Cos(math.Pi*float64(j)/float64(n))
}

// requireUnitColumns checks the column normalization of every returned vector.
func requireUnitColumns(t *testing.T, v *matrix.Dense) {
	t.Helper()
	for j := 0; j < v.Cols(); j++ {
		col, err := v.Col(j)
		require.NoError(t, err)
		var norm, best float64
		for _, x := range col {
			norm += x * x
			if math.Abs(x) > math.Abs(best) {
				best = x
			}
		}
		require.InDelta(t, 1, math.Sqrt(norm), 1e-8, "column %d", j)
		require.Greater(t, best, 0.0, "column %d sign", j)
	}
}

// requireEigenpairs checks ‖M·v − λ·v‖ ≤ tol for every returned pair.
func requireEigenpairs(t *testing.T, m matrix.Matrix, p eigen.Pairs, tol float64) {
	t.Helper()
	for j, lambda := range p.Values {
		col, err := p.Vectors.Col(j)
		require.NoError(t, err)
		mv, err := matrix.MulVec(m, col)
		require.NoError(t, err)
		var r float64
		for i := range mv {
			d := mv[i] - lambda*col[i]
			r += d * d
		}
		require.LessOrEqual(t, math.Sqrt(r), tol, "pair %d (λ=%g)", j, lambda)
	}
}

func requireDiagonalVectors(t *testing.T, p eigen.Pairs, positions []int, tol float64) {
	t.Helper()
	for j, at := range positions {
		v, err := p.Vectors.At(at, j)
		require.NoError(t, err)
		require.InDelta(t, 1, v, tol, "column %d", j)
	}
}
