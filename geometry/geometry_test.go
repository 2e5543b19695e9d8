package geometry_test

import (
	"testing"

	"github.com/chanhou/megaman/geometry"
	"github.com/chanhou/megaman/matrix"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// square returns 5 points on the corners and center of a unit square.
func square(t *testing.T) *matrix.Dense {
	t.Helper()
	d, err := matrix.NewDenseRows([][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0.5, 0.5}})
	require.NoError(t, err)

	return d
}

// calls counts collaborator invocations in order.
type calls struct {
	order []string
	last  map[string]geometry.Params
}

func (c *calls) record(stage string, p geometry.Params) {
	c.order = append(c.order, stage)
	if c.last == nil {
		c.last = map[string]geometry.Params{}
	}
	c.last[stage] = p.Clone()
}

// countingGeometry wires the default collaborators behind recorders.
func countingGeometry(c *calls, opts ...geometry.Option) *geometry.Geometry {
	return geometry.New(append([]geometry.Option{
		geometry.WithAdjacencyFunc(func(x matrix.Matrix, method string, p geometry.Params) (matrix.Matrix, error) {
			c.record(geometry.StageAdjacency, p)
			return geometry.DefaultAdjacency(x, method, p)
		}),
		geometry.WithAffinityFunc(func(a matrix.Matrix, method string, p geometry.Params) (matrix.Matrix, error) {
			c.record(geometry.StageAffinity, p)
			return geometry.DefaultAffinity(a, method, p)
		}),
		geometry.WithLaplacianFunc(func(a matrix.Matrix, method string, full bool, p geometry.Params) (geometry.LaplacianResult, error) {
			c.record(geometry.StageLaplacian, p)
			return geometry.DefaultLaplacian(a, method, full, p)
		}),
	}, opts...)...)
}

type GeometrySuite struct {
	suite.Suite
	calls *calls
	geom  *geometry.Geometry
}

func (s *GeometrySuite) SetupTest() {
	s.calls = &calls{}
	s.geom = countingGeometry(s.calls)
	s.Require().NoError(s.geom.SetData(square(s.T())))
}

func (s *GeometrySuite) TestAdjacencyIsCached() {
	first, err := s.geom.ComputeAdjacency(nil, false)
	s.Require().NoError(err)
	second, err := s.geom.ComputeAdjacency(nil, false)
	s.Require().NoError(err)

	s.Require().Same(first, second)
	s.Require().Equal([]string{geometry.StageAdjacency}, s.calls.order)
}

func (s *GeometrySuite) TestCopyIsIndependent() {
	live, err := s.geom.ComputeAdjacency(nil, false)
	s.Require().NoError(err)
	dup, err := s.geom.ComputeAdjacency(nil, true)
	s.Require().NoError(err)

	s.Require().NotSame(live, dup)
	s.Require().Equal(live, dup)
	s.Require().NoError(dup.Set(0, 1, 42))
	v, err := live.At(0, 1)
	s.Require().NoError(err)
	s.Require().NotEqual(42.0, v)
	s.Require().Same(live, s.geom.Adjacency())
}

func (s *GeometrySuite) TestLaplacianDerivesUpstreamInOrder() {
	res, err := s.geom.ComputeLaplacian(nil, false, false)
	s.Require().NoError(err)
	s.Require().NotNil(res.Laplacian)
	s.Require().Nil(res.Symmetric)
	s.Require().Equal([]string{geometry.StageAdjacency, geometry.StageAffinity, geometry.StageLaplacian}, s.calls.order)
	s.Require().NotNil(s.geom.Adjacency())
	s.Require().NotNil(s.geom.Affinity())
	s.Require().Equal(5, res.Laplacian.Rows())
}

func (s *GeometrySuite) TestParamsAreSticky() {
	_, err := s.geom.ComputeAdjacency(geometry.Params{"radius": 1.0}, false)
	s.Require().NoError(err)
	_, err = s.geom.ComputeAdjacency(geometry.Params{"n_neighbors": 2}, false)
	s.Require().NoError(err)

	s.Require().Equal(geometry.Params{"radius": 1.0, "n_neighbors": 2}, s.calls.last[geometry.StageAdjacency])
	s.Require().Equal(geometry.Params{"radius": 1.0, "n_neighbors": 2}, s.geom.AdjacencyParams())

	// Same merged params: served from cache.
	_, err = s.geom.ComputeAdjacency(geometry.Params{"radius": 1.0}, false)
	s.Require().NoError(err)
	s.Require().Len(s.calls.order, 2)
}

func (s *GeometrySuite) TestAuxiliaryOutputs() {
	plain, err := s.geom.ComputeLaplacian(nil, false, false)
	s.Require().NoError(err)
	s.Require().Nil(s.geom.LaplacianWeights())

	full, err := s.geom.ComputeLaplacian(nil, false, true)
	s.Require().NoError(err)
	s.Require().NotNil(full.Symmetric)
	s.Require().Len(full.Weights, 5)
	s.Require().NotSame(plain.Laplacian, full.Laplacian, "recomputed for auxiliary outputs")

	again, err := s.geom.ComputeLaplacian(nil, false, true)
	s.Require().NoError(err)
	s.Require().Same(full.Laplacian, again.Laplacian)
	s.Require().Same(full.Symmetric, again.Symmetric)

	s.geom.ClearLaplacian()
	s.Require().Nil(s.geom.Laplacian())
	s.Require().Nil(s.geom.LaplacianSymmetric())
	s.Require().Nil(s.geom.LaplacianWeights())
	s.Require().NotNil(s.geom.Affinity(), "no cascade")
}

func (s *GeometrySuite) TestSetDataRederivesAdjacency() {
	adj, err := s.geom.ComputeAdjacency(nil, false)
	s.Require().NoError(err)
	other, err := matrix.NewDenseRows([][]float64{{0}, {5}})
	s.Require().NoError(err)
	s.Require().NoError(s.geom.SetData(other))
	s.Require().Same(adj, s.geom.Adjacency(), "no cascade")

	again, err := s.geom.ComputeAdjacency(nil, false)
	s.Require().NoError(err)
	s.Require().NotSame(adj, again)
	s.Require().Equal(2, again.Rows())
	s.Require().Equal([]string{geometry.StageAdjacency, geometry.StageAdjacency}, s.calls.order)
}

func (s *GeometrySuite) TestAffinityFollowsRecomputedAdjacency() {
	aff, err := s.geom.ComputeAffinity(nil, false)
	s.Require().NoError(err)
	_, err = s.geom.ComputeAdjacency(geometry.Params{"radius": 2.0}, false)
	s.Require().NoError(err)
	s.Require().Same(aff, s.geom.Affinity(), "no cascade")

	fresh, err := s.geom.ComputeAffinity(nil, false)
	s.Require().NoError(err)
	s.Require().NotSame(aff, fresh)

	cached, err := s.geom.ComputeAffinity(nil, false)
	s.Require().NoError(err)
	s.Require().Same(fresh, cached)
	s.Require().Equal([]string{
		geometry.StageAdjacency, geometry.StageAffinity,
		geometry.StageAdjacency, geometry.StageAffinity,
	}, s.calls.order)
}

func (s *GeometrySuite) TestInjectedUpstreamRederivesDownstream() {
	lap, err := s.geom.ComputeLaplacian(nil, false, false)
	s.Require().NoError(err)
	adj, err := matrix.NewDenseRows([][]float64{{0, 1, 0}, {1, 0, 1}, {0, 1, 0}})
	s.Require().NoError(err)
	s.Require().NoError(s.geom.SetAdjacency(adj))

	// The affinity still belongs to the old adjacency, so the Laplacian
	// derived from it stays cached until the affinity is recomputed.
	same, err := s.geom.ComputeLaplacian(nil, false, false)
	s.Require().NoError(err)
	s.Require().Same(lap.Laplacian, same.Laplacian)

	aff, err := s.geom.ComputeAffinity(nil, false)
	s.Require().NoError(err)
	s.Require().Equal(3, aff.Rows())
	fresh, err := s.geom.ComputeLaplacian(nil, false, false)
	s.Require().NoError(err)
	s.Require().Equal(3, fresh.Laplacian.Rows())
}

func (s *GeometrySuite) TestClearIsIndependent() {
	_, err := s.geom.ComputeAffinity(nil, false)
	s.Require().NoError(err)

	s.geom.ClearAdjacency()
	s.Require().Nil(s.geom.Adjacency())
	s.Require().NotNil(s.geom.Affinity())
	s.Require().NotNil(s.geom.Data())

	s.geom.ClearData()
	s.Require().Nil(s.geom.Data())
	_, err = s.geom.ComputeAffinity(nil, false)
	s.Require().NoError(err, "cached affinity needs no upstream")
}

func TestGeometrySuite(t *testing.T) {
	suite.Run(t, new(GeometrySuite))
}

func TestMissingData(t *testing.T) {
	g := geometry.New()
	_, err := g.ComputeLaplacian(nil, false, false)
	require.ErrorIs(t, err, geometry.ErrMissingData)

	_, err = g.ComputeAdjacency(nil, true)
	require.ErrorIs(t, err, geometry.ErrMissingData)
}

func TestInjectedAdjacencyWithoutData(t *testing.T) {
	g := geometry.New()
	adj, err := matrix.NewDenseRows([][]float64{{0, 1}, {1, 0}})
	require.NoError(t, err)
	require.NoError(t, g.SetAdjacency(adj))

	got, err := g.ComputeAdjacency(nil, false)
	require.NoError(t, err)
	require.Same(t, adj, got)

	_, err = g.ComputeLaplacian(nil, false, false)
	require.NoError(t, err)

	// New params need the dataset.
	_, err = g.ComputeAdjacency(geometry.Params{"radius": 3.0}, false)
	require.ErrorIs(t, err, geometry.ErrMissingData)
	require.Same(t, adj, g.Adjacency())
}

func TestSetNonSquareKeepsCache(t *testing.T) {
	g := geometry.New()
	require.NoError(t, g.SetData(square(t)))
	adj, err := g.ComputeAdjacency(nil, false)
	require.NoError(t, err)

	rect, err := matrix.NewDense(3, 4)
	require.NoError(t, err)
	require.ErrorIs(t, g.SetAdjacency(rect), geometry.ErrShape)
	require.ErrorIs(t, g.SetAffinity(rect), geometry.ErrShape)
	require.ErrorIs(t, g.SetLaplacian(rect), geometry.ErrShape)
	require.Same(t, adj, g.Adjacency())
}

func TestSetDataValidation(t *testing.T) {
	g := geometry.New()
	require.ErrorIs(t, g.SetData(nil), geometry.ErrInvalidInput)

	require.ErrorIs(t, g.SetData(foreign{}), geometry.ErrInvalidInput)
	require.Nil(t, g.Data())

	coo, err := matrix.NewCOO(2, 2)
	require.NoError(t, err)
	require.NoError(t, g.SetData(coo))
}

func TestConstructorOptions(t *testing.T) {
	c := &calls{}
	g := countingGeometry(c,
		geometry.WithAdjacency("brute", geometry.Params{"n_neighbors": 2}),
		geometry.WithAffinity("gaussian", geometry.Params{"radius": 1.0}),
		geometry.WithLaplacian("randomwalk", nil),
		geometry.WithLogger(nil),
	)
	require.NoError(t, g.SetData(square(t)))
	res, err := g.ComputeLaplacian(nil, true, true)
	require.NoError(t, err)
	require.Equal(t, geometry.Params{"n_neighbors": 2}, c.last[geometry.StageAdjacency])
	require.Equal(t, geometry.Params{"radius": 1.0}, c.last[geometry.StageAffinity])
	require.NotSame(t, g.Laplacian(), res.Laplacian)
	require.Len(t, res.Weights, 5)
}

// foreign is a Matrix implementation outside the accepted layouts.
type foreign struct{}

func (foreign) Rows() int                    { return 2 }
func (foreign) Cols() int                    { return 2 }
func (foreign) At(int, int) (float64, error) { return 0, nil }
func (foreign) Set(int, int, float64) error  { return nil }
func (f foreign) Clone() matrix.Matrix       { return f }
