// SPDX-License-Identifier: MIT

package geometry

import (
	"fmt"
	"time"

	"github.com/chanhou/megaman/adjacency"
	"github.com/chanhou/megaman/affinity"
	"github.com/chanhou/megaman/laplacian"
	"github.com/chanhou/megaman/matrix"
	"github.com/chanhou/megaman/metrics"
	"go.uber.org/zap"
)

// Stage names, used in logs and metrics.
const (
	StageAdjacency = "adjacency"
	StageAffinity  = "affinity"
	StageLaplacian = "laplacian"
)

// stage is one derived-matrix slot: its method, sticky params, the cached
// value and the merged params the value corresponds to.
//
// gen counts the values stored in the slot; from is the generation of the
// upstream input the cached value was derived from.
type stage struct {
	method string
	params Params
	value  matrix.Matrix
	at     Params
	gen    uint64
	from   uint64
}

// hit reports whether the cached value matches merged and was derived from
// upstream generation up.
func (s *stage) hit(merged Params, up uint64) bool {
	return s.value != nil && s.from == up && merged.Equal(s.at)
}

// store caches v computed with merged from upstream generation up and makes
// merged the sticky params.
func (s *stage) store(v matrix.Matrix, merged Params, up uint64) {
	s.value = v
	s.params = merged
	s.at = merged.Clone()
	s.gen++
	s.from = up
}

// inject caches an externally supplied v against the current params and the
// current upstream generation.
func (s *stage) inject(v matrix.Matrix, up uint64) {
	s.value = v
	s.at = s.params.Clone()
	s.gen++
	s.from = up
}

func (s *stage) clear() {
	s.value = nil
	s.at = nil
}

// Geometry stores a dataset and lazily derives, caches and serves its
// adjacency, affinity and Laplacian matrices.
//
// Every Compute* merges the given params over the stage's stored ones and
// returns the cached matrix when it was produced with exactly the merged
// params from the current upstream input. Setting or clearing one slot never
// touches another: a replaced upstream input leaves downstream getters
// returning the old matrices until the next Compute* on that stage.
//
// A Geometry is not safe for concurrent mutation.
type Geometry struct {
	data    matrix.Matrix
	dataGen uint64

	adjacency stage
	affinity  stage
	laplacian stage

	// Auxiliary Laplacian outputs live in the Laplacian slot.
	lapSymmetric matrix.Matrix
	lapWeights   []float64
	lapAux       bool

	adjacencyFn AdjacencyFunc
	affinityFn  AffinityFunc
	laplacianFn LaplacianFunc
	logger      *zap.Logger
}

// New returns an empty Geometry using the adjacency, affinity and laplacian
// packages as collaborators unless overridden.
func New(opts ...Option) *Geometry {
	g := &Geometry{
		adjacency:   stage{method: DefaultAdjacencyMethod},
		affinity:    stage{method: DefaultAffinityMethod},
		laplacian:   stage{method: DefaultLaplacianMethod},
		adjacencyFn: DefaultAdjacency,
		affinityFn:  DefaultAffinity,
		laplacianFn: DefaultLaplacian,
		logger:      zap.NewNop(),
	}
	for _, fn := range opts {
		if fn != nil {
			fn(g)
		}
	}

	return g
}

// DefaultAdjacency is the adjacency package's Compute.
func DefaultAdjacency(x matrix.Matrix, method string, p Params) (matrix.Matrix, error) {
	return adjacency.Compute(x, method, p)
}

// DefaultAffinity is the affinity package's Compute.
func DefaultAffinity(adj matrix.Matrix, method string, p Params) (matrix.Matrix, error) {
	return affinity.Compute(adj, method, p)
}

// DefaultLaplacian is the laplacian package's Compute.
func DefaultLaplacian(aff matrix.Matrix, method string, fullOutput bool, p Params) (LaplacianResult, error) {
	return laplacian.Compute(aff, method, fullOutput, p)
}

// SetData stores x as the dataset. Downstream caches are kept, but the next
// ComputeAdjacency derives a fresh matrix.
// Errors: ErrInvalidInput (nil, empty, or a layout other than Dense/CSR/COO).
func (g *Geometry) SetData(x matrix.Matrix) error {
	if err := matrix.ValidateNotNil(x); err != nil {
		return geometryErrorf("SetData", fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}
	if x.Rows() < 1 || x.Cols() < 1 {
		return geometryErrorf("SetData", fmt.Errorf("%dx%d dataset: %w", x.Rows(), x.Cols(), ErrInvalidInput))
	}
	if matrix.LayoutOf(x) == matrix.LayoutUnknown {
		return geometryErrorf("SetData", fmt.Errorf("%T: %w: %w", x, ErrInvalidInput, matrix.ErrUnsupportedLayout))
	}
	g.data = x
	g.dataGen++

	return nil
}

// ComputeAdjacency returns the adjacency matrix, deriving it from the
// dataset when there is no cached matrix for the merged params.
// copy returns an independent clone and leaves the cache as is.
// Errors: ErrMissingData, plus collaborator failures.
func (g *Geometry) ComputeAdjacency(p Params, copy bool) (matrix.Matrix, error) {
	merged := g.adjacency.params.Merge(p)
	if g.adjacency.hit(merged, g.dataGen) {
		return g.served(StageAdjacency, g.adjacency.value, copy), nil
	}
	if g.data == nil {
		return nil, geometryErrorf("ComputeAdjacency", ErrMissingData)
	}
	start := time.Now()
	adj, err := g.adjacencyFn(g.data, g.adjacency.method, merged)
	if err != nil {
		return nil, geometryErrorf("ComputeAdjacency", err)
	}
	g.adjacency.store(adj, merged, g.dataGen)
	g.derived(StageAdjacency, g.adjacency.method, merged, adj, start)

	return clone(adj, copy), nil
}

// ComputeAffinity returns the affinity matrix, deriving the adjacency
// matrix first when it is missing. A cached affinity is served only while
// the adjacency slot holds the matrix it was derived from.
func (g *Geometry) ComputeAffinity(p Params, copy bool) (matrix.Matrix, error) {
	merged := g.affinity.params.Merge(p)
	if g.affinity.hit(merged, g.adjacency.gen) {
		return g.served(StageAffinity, g.affinity.value, copy), nil
	}
	if g.adjacency.value == nil {
		if _, err := g.ComputeAdjacency(nil, false); err != nil {
			return nil, err
		}
	}
	start := time.Now()
	aff, err := g.affinityFn(g.adjacency.value, g.affinity.method, merged)
	if err != nil {
		return nil, geometryErrorf("ComputeAffinity", err)
	}
	g.affinity.store(aff, merged, g.adjacency.gen)
	g.derived(StageAffinity, g.affinity.method, merged, aff, start)

	return clone(aff, copy), nil
}

// ComputeLaplacian returns the Laplacian, deriving the affinity matrix first
// when it is missing. withAuxiliary also fills Symmetric and Weights; a
// cached Laplacian computed without them is recomputed.
func (g *Geometry) ComputeLaplacian(p Params, copy, withAuxiliary bool) (LaplacianResult, error) {
	merged := g.laplacian.params.Merge(p)
	if g.laplacian.hit(merged, g.affinity.gen) && (!withAuxiliary || g.lapAux) {
		metrics.GeometryCacheHitsTotal.WithLabelValues(StageLaplacian).Inc()
		return g.laplacianResult(copy, withAuxiliary), nil
	}
	if g.affinity.value == nil {
		if _, err := g.ComputeAffinity(nil, false); err != nil {
			return LaplacianResult{}, err
		}
	}
	start := time.Now()
	res, err := g.laplacianFn(g.affinity.value, g.laplacian.method, withAuxiliary, merged)
	if err != nil {
		return LaplacianResult{}, geometryErrorf("ComputeLaplacian", err)
	}
	g.laplacian.store(res.Laplacian, merged, g.affinity.gen)
	g.lapSymmetric, g.lapWeights, g.lapAux = nil, nil, false
	if withAuxiliary {
		g.lapSymmetric, g.lapWeights, g.lapAux = res.Symmetric, res.Weights, true
	}
	g.derived(StageLaplacian, g.laplacian.method, merged, res.Laplacian, start)

	return g.laplacianResult(copy, withAuxiliary), nil
}

func (g *Geometry) laplacianResult(copy, withAuxiliary bool) LaplacianResult {
	out := LaplacianResult{Laplacian: clone(g.laplacian.value, copy)}
	if !withAuxiliary {
		return out
	}
	out.Symmetric = clone(g.lapSymmetric, copy)
	out.Weights = g.lapWeights
	if copy && g.lapWeights != nil {
		out.Weights = append([]float64(nil), g.lapWeights...)
	}

	return out
}

// SetAdjacency injects a precomputed adjacency matrix.
// Errors: ErrShape when m is not square; the previous cache is kept.
func (g *Geometry) SetAdjacency(m matrix.Matrix) error {
	if err := matrix.ValidateSquare(m); err != nil {
		return geometryErrorf("SetAdjacency", err)
	}
	g.adjacency.inject(m, g.dataGen)

	return nil
}

// SetAffinity injects a precomputed affinity matrix.
func (g *Geometry) SetAffinity(m matrix.Matrix) error {
	if err := matrix.ValidateSquare(m); err != nil {
		return geometryErrorf("SetAffinity", err)
	}
	g.affinity.inject(m, g.adjacency.gen)

	return nil
}

// SetLaplacian injects a precomputed Laplacian. Auxiliary outputs of a
// previous computation are discarded.
func (g *Geometry) SetLaplacian(m matrix.Matrix) error {
	if err := matrix.ValidateSquare(m); err != nil {
		return geometryErrorf("SetLaplacian", err)
	}
	g.laplacian.inject(m, g.affinity.gen)
	g.lapSymmetric, g.lapWeights, g.lapAux = nil, nil, false

	return nil
}

// ClearData drops the dataset.
func (g *Geometry) ClearData() { g.data = nil }

// ClearAdjacency drops the cached adjacency matrix.
func (g *Geometry) ClearAdjacency() { g.adjacency.clear() }

// ClearAffinity drops the cached affinity matrix.
func (g *Geometry) ClearAffinity() { g.affinity.clear() }

// ClearLaplacian drops the cached Laplacian and its auxiliary outputs.
func (g *Geometry) ClearLaplacian() {
	g.laplacian.clear()
	g.lapSymmetric, g.lapWeights, g.lapAux = nil, nil, false
}

// Data returns the dataset or nil.
func (g *Geometry) Data() matrix.Matrix { return g.data }

// Adjacency returns the cached adjacency matrix or nil.
func (g *Geometry) Adjacency() matrix.Matrix { return g.adjacency.value }

// Affinity returns the cached affinity matrix or nil.
func (g *Geometry) Affinity() matrix.Matrix { return g.affinity.value }

// Laplacian returns the cached Laplacian or nil.
func (g *Geometry) Laplacian() matrix.Matrix { return g.laplacian.value }

// LaplacianSymmetric returns the cached symmetric form or nil.
func (g *Geometry) LaplacianSymmetric() matrix.Matrix { return g.lapSymmetric }

// LaplacianWeights returns the cached renormalization weights or nil.
func (g *Geometry) LaplacianWeights() []float64 { return g.lapWeights }

// AdjacencyParams returns a copy of the sticky adjacency params.
func (g *Geometry) AdjacencyParams() Params { return g.adjacency.params.Clone() }

// AffinityParams returns a copy of the sticky affinity params.
func (g *Geometry) AffinityParams() Params { return g.affinity.params.Clone() }

// LaplacianParams returns a copy of the sticky Laplacian params.
func (g *Geometry) LaplacianParams() Params { return g.laplacian.params.Clone() }

func (g *Geometry) served(name string, m matrix.Matrix, copy bool) matrix.Matrix {
	metrics.GeometryCacheHitsTotal.WithLabelValues(name).Inc()

	return clone(m, copy)
}

func (g *Geometry) derived(name, method string, merged Params, m matrix.Matrix, start time.Time) {
	metrics.GeometryComputationsTotal.WithLabelValues(name, method).Inc()
	g.logger.Debug("geometry derived",
		zap.String("stage", name),
		zap.String("method", method),
		zap.Any("params", map[string]any(merged)),
		zap.Int("size", m.Rows()),
		zap.Duration("elapsed", time.Since(start)))
}

func clone(m matrix.Matrix, copy bool) matrix.Matrix {
	if !copy || m == nil {
		return m
	}

	return m.Clone()
}
