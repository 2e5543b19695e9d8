package eigen_test

import (
	"testing"

	"github.com/chanhou/megaman/eigen"
	"github.com/chanhou/megaman/matrix"
	"github.com/chanhou/megaman/multigrid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SelectSolverSuite struct {
	suite.Suite
	plain *eigen.Engine
	amg   *eigen.Engine
}

func (s *SelectSolverSuite) SetupTest() {
	s.plain = eigen.NewEngine()
	s.amg = eigen.NewEngine(eigen.WithMultigrid(multigrid.NewBackend()))
}

func (s *SelectSolverSuite) TestUnknownName() {
	_, err := s.plain.SelectSolver(eigen.Solver(42), 100, 2)
	s.Require().ErrorIs(err, eigen.ErrUnsupportedSolver)

	_, err = eigen.ParseSolver("magic")
	s.Require().ErrorIs(err, eigen.ErrUnsupportedSolver)
}

func (s *SelectSolverSuite) TestAMGRequiresBackend() {
	s.Require().False(s.plain.HasMultigrid())
	_, err := s.plain.SelectSolver(eigen.AMG, 1000, 2)
	s.Require().ErrorIs(err, eigen.ErrUnavailableSolver)

	got, err := s.amg.SelectSolver(eigen.AMG, 1000, 2)
	s.Require().NoError(err)
	s.Require().Equal(eigen.AMG, got)
}

func (s *SelectSolverSuite) TestLOBPCGDowngrade() {
	got, err := s.plain.SelectSolver(eigen.LOBPCG, 10, 2)
	s.Require().NoError(err)
	s.Require().Equal(eigen.Dense, got)

	got, err = s.plain.SelectSolver(eigen.LOBPCG, 11, 2)
	s.Require().NoError(err)
	s.Require().Equal(eigen.LOBPCG, got)
}

func (s *SelectSolverSuite) TestAutoResolution() {
	cases := []struct {
		name   string
		engine *eigen.Engine
		size   int
		nvec   int
		want   eigen.Solver
	}{
		{"large few with amg", s.amg, 201, 9, eigen.AMG},
		{"large few without amg", s.plain, 201, 9, eigen.Arpack},
		{"boundary size", s.amg, 200, 2, eigen.Dense},
		{"many vectors", s.amg, 5000, 10, eigen.Dense},
		{"small", s.plain, 50, 2, eigen.Dense},
	}
	for _, tc := range cases {
		got, err := tc.engine.SelectSolver(eigen.Auto, tc.size, tc.nvec)
		s.Require().NoError(err, tc.name)
		s.Require().Equal(tc.want, got, tc.name)
	}
}

func (s *SelectSolverSuite) TestUnknownSizeKeepsAuto() {
	got, err := s.plain.SelectSolver(eigen.Auto, 0, 0)
	s.Require().NoError(err)
	s.Require().Equal(eigen.Auto, got)
}

func (s *SelectSolverSuite) TestExplicitSolversPassThrough() {
	for _, sv := range []eigen.Solver{eigen.Dense, eigen.Arpack} {
		got, err := s.plain.SelectSolver(sv, 5, 3)
		s.Require().NoError(err)
		s.Require().Equal(sv, got)
	}
}

func TestSelectSolverSuite(t *testing.T) {
	suite.Run(t, new(SelectSolverSuite))
}

func TestParseSolver(t *testing.T) {
	for name, want := range map[string]eigen.Solver{
		"":        eigen.Auto,
		"auto":    eigen.Auto,
		"Dense":   eigen.Dense,
		" arpack": eigen.Arpack,
		"LOBPCG":  eigen.LOBPCG,
		"amg":     eigen.AMG,
	} {
		got, err := eigen.ParseSolver(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
		if name != "" {
			require.Equal(t, want.String(), got.String())
		}
	}
	require.Equal(t, "solver(42)", eigen.Solver(42).String())
}

func TestDecomposeRejectsBadInput(t *testing.T) {
	e := eigen.NewEngine()

	rect, err := matrix.NewDense(3, 4)
	require.NoError(t, err)
	_, err = e.Decompose(rect, 1, eigen.DefaultDecomposeOptions())
	require.ErrorIs(t, err, matrix.ErrNonSquare)

	m := diagCSR(t, 1, 2, 3)
	_, err = e.Decompose(m, 0, eigen.DefaultDecomposeOptions())
	require.ErrorIs(t, err, eigen.ErrInvalidCount)

	// DropFirst asks for k+1 = 4 pairs of a 3x3 matrix.
	_, err = e.Decompose(m, 3, eigen.DefaultDecomposeOptions())
	require.ErrorIs(t, err, eigen.ErrInvalidCount)

	_, err = e.Decompose(m, 1, eigen.DecomposeOptions{Solver: eigen.AMG})
	require.ErrorIs(t, err, eigen.ErrUnavailableSolver)

	_, err = e.Decompose(nil, 1, eigen.DefaultDecomposeOptions())
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestDecomposeRequiresSymmetry(t *testing.T) {
	n := 20
	coo, err := matrix.NewCOO(n, n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, coo.Append(i, i, float64(i+1)))
	}
	require.NoError(t, coo.Append(0, 5, 1))
	m := coo.ToCSR()

	e := eigen.NewEngine(eigen.WithMultigrid(multigrid.NewBackend()))
	for _, sv := range []eigen.Solver{eigen.LOBPCG, eigen.AMG} {
		_, err = e.Decompose(m, 1, eigen.DecomposeOptions{Solver: sv})
		require.ErrorIs(t, err, eigen.ErrSymmetryRequired, sv.String())
	}
}

func TestNullSpaceRejectsBadCounts(t *testing.T) {
	e := eigen.NewEngine()
	m := diagCSR(t, 1, 2, 3, 4)
	for _, tc := range []struct{ k, skip int }{{0, 0}, {1, -1}, {3, 2}, {1, 4}} {
		_, err := e.NullSpace(m, tc.k, eigen.NullSpaceOptions{KSkip: tc.skip, Solver: eigen.Dense})
		require.ErrorIs(t, err, eigen.ErrInvalidCount, "k=%d skip=%d", tc.k, tc.skip)
	}

	_, err := e.NullSpace(m, 1, eigen.NullSpaceOptions{Solver: eigen.AMG})
	require.ErrorIs(t, err, eigen.ErrUnavailableSolver)
}
