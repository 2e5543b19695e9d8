package eigen_test

import (
	"math"
	"testing"

	"github.com/chanhou/megaman/eigen"
	"github.com/chanhou/megaman/matrix"
	"github.com/chanhou/megaman/multigrid"
	"github.com/stretchr/testify/require"
)

func TestDecomposeDiagonalEveryMode(t *testing.T) {
	values := rangeValues(1, 40)
	m := diagCSR(t, values...)
	e := eigen.NewEngine(eigen.WithMultigrid(multigrid.NewBackend()))

	cases := []struct {
		solver  eigen.Solver
		largest bool
		want    []float64
		at      []int
		tol     float64
	}{
		{eigen.Dense, true, []float64{40, 39, 38}, []int{39, 38, 37}, 1e-10},
		{eigen.Dense, false, []float64{1, 2, 3}, []int{0, 1, 2}, 1e-10},
		{eigen.Arpack, true, []float64{40, 39, 38}, []int{39, 38, 37}, 1e-8},
		{eigen.Arpack, false, []float64{1, 2, 3}, []int{0, 1, 2}, 1e-8},
		{eigen.LOBPCG, true, []float64{40, 39, 38}, []int{39, 38, 37}, 1e-6},
		{eigen.LOBPCG, false, []float64{1, 2, 3}, []int{0, 1, 2}, 1e-6},
		{eigen.AMG, true, []float64{40, 39, 38}, []int{39, 38, 37}, 1e-6},
		{eigen.AMG, false, []float64{1, 2, 3}, []int{0, 1, 2}, 1e-6},
	}
	for _, tc := range cases {
		name := tc.solver.String()
		p, err := e.Decompose(m, 3, eigen.DecomposeOptions{Solver: tc.solver, Largest: tc.largest, Seed: 3})
		require.NoError(t, err, name)
		require.Equal(t, 3, p.Len(), name)
		require.Equal(t, 40, p.Vectors.Rows(), name)
		require.Equal(t, 3, p.Vectors.Cols(), name)
		for j, want := range tc.want {
			require.InDelta(t, want, p.Values[j], tc.tol, "%s λ%d", name, j)
		}
		requireUnitColumns(t, p.Vectors)
		requireDiagonalVectors(t, p, tc.at, 1e-4)
	}
}

func TestDecomposeDropFirstReturnsExtraPair(t *testing.T) {
	e := eigen.NewEngine()
	m := diagCSR(t, rangeValues(1, 10)...)
	opts := eigen.DefaultDecomposeOptions()
	opts.Solver = eigen.Dense

	p, err := e.Decompose(m, 2, opts)
	require.NoError(t, err)
	require.Equal(t, []float64{10, 9, 8}, roundAll(p.Values))
}

func TestDecomposeOrdering(t *testing.T) {
	e := eigen.NewEngine()
	m := pathLaplacian(t, 30, 0)
	for _, largest := range []bool{true, false} {
		for _, sv := range []eigen.Solver{eigen.Dense, eigen.Arpack} {
			p, err := e.Decompose(m, 4, eigen.DecomposeOptions{Solver: sv, Largest: largest})
			require.NoError(t, err)
			for j := 1; j < p.Len(); j++ {
				if largest {
					require.GreaterOrEqual(t, p.Values[j-1], p.Values[j]-1e-12)
				} else {
					require.LessOrEqual(t, p.Values[j-1], p.Values[j]+1e-12)
				}
			}
			requireEigenpairs(t, m, p, 1e-6)
		}
	}
}

func TestArpackRestartsOnLargeProblem(t *testing.T) {
	e := eigen.NewEngine()
	m := diagCSR(t, rangeValues(1, 100)...)
	p, err := e.Decompose(m, 3, eigen.DecomposeOptions{Solver: eigen.Arpack, Largest: true, Seed: 11})
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{100, 99, 98}, p.Values, 1e-8)
	requireEigenpairs(t, m, p, 1e-6)
}

func TestArpackSymmetricSelectsByMagnitude(t *testing.T) {
	e := eigen.NewEngine()
	m := diagCSR(t, -8, -3, -1, 0.5, 1.5, 2, 4, 5, 6, 7)

	p, err := e.Decompose(m, 2, eigen.DecomposeOptions{Solver: eigen.Arpack, Largest: false})
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{-1, 0.5}, p.Values, 1e-8)

	p, err = e.Decompose(m, 2, eigen.DecomposeOptions{Solver: eigen.Arpack, Largest: true})
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{7, -8}, p.Values, 1e-8)

	// The dense path orders algebraically.
	p, err = e.Decompose(m, 2, eigen.DecomposeOptions{Solver: eigen.Dense, Largest: true})
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{7, 6}, p.Values, 1e-10)
}

func TestDecomposeNonSymmetric(t *testing.T) {
	m, err := matrix.NewDenseRows([][]float64{
		{1, 2, 0},
		{0, 3, 1},
		{0, 0, 2},
	})
	require.NoError(t, err)
	e := eigen.NewEngine()

	for _, sv := range []eigen.Solver{eigen.Dense, eigen.Arpack} {
		p, err := e.Decompose(m, 2, eigen.DecomposeOptions{Solver: sv, Largest: true})
		require.NoError(t, err, sv.String())
		require.InDeltaSlice(t, []float64{3, 2}, p.Values, 1e-8, sv.String())
		requireEigenpairs(t, m, p, 1e-6)

		p, err = e.Decompose(m, 2, eigen.DecomposeOptions{Solver: sv, Largest: false})
		require.NoError(t, err, sv.String())
		require.InDeltaSlice(t, []float64{1, 2}, p.Values, 1e-8, sv.String())
	}
}

func TestDecomposeSeedIsReproducible(t *testing.T) {
	e := eigen.NewEngine()
	m := pathLaplacian(t, 80, 0.5)
	for _, sv := range []eigen.Solver{eigen.Arpack, eigen.LOBPCG} {
		opts := eigen.DecomposeOptions{Solver: sv, Seed: 42}
		a, err := e.Decompose(m, 3, opts)
		require.NoError(t, err)
		b, err := e.Decompose(m, 3, opts)
		require.NoError(t, err)
		require.Equal(t, a.Values, b.Values, sv.String())
		require.Equal(t, a.Vectors.RawData(), b.Vectors.RawData(), sv.String())

		opts.Seed = 7
		c, err := e.Decompose(m, 3, opts)
		require.NoError(t, err)
		require.InDeltaSlice(t, a.Values, c.Values, 1e-6, sv.String())
	}
}

func TestAMGMatchesDenseOnLaplacian(t *testing.T) {
	n := 250
	m := pathLaplacian(t, n, 0.5)
	e := eigen.NewEngine(eigen.WithMultigrid(multigrid.NewBackend()))

	got, err := e.Decompose(m, 3, eigen.DecomposeOptions{Solver: eigen.AMG, Seed: 1, Tolerance: 1e-9})
	require.NoError(t, err)
	for j := 0; j < 3; j++ {
		require.InDelta(t, pathEigenvalue(n, j)+0.5, got.Values[j], 1e-5, "λ%d", j)
	}
	requireUnitColumns(t, got.Vectors)

	// The lowest eigenvector of a path Laplacian is constant.
	first, err := got.Vectors.Col(0)
	require.NoError(t, err)
	for _, v := range first {
		require.InDelta(t, 1/math.Sqrt(float64(n)), v, 1e-3)
	}
}

func TestDecomposeDefaultsResolveAuto(t *testing.T) {
	e := eigen.NewEngine()
	m := diagCSR(t, rangeValues(1, 300)...)

	p, err := e.Decompose(m, 2, eigen.DefaultDecomposeOptions())
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{300, 299, 298}, p.Values, 1e-8)
}

func roundAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Round(x*1e9) / 1e9
	}

	return out
}
