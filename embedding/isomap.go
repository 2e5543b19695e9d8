// SPDX-License-Identifier: MIT

package embedding

import (
	"errors"
	"fmt"
	"math"

	"github.com/chanhou/megaman/dijkstra"
	"github.com/chanhou/megaman/eigen"
	"github.com/chanhou/megaman/geometry"
	"github.com/chanhou/megaman/matrix"
	"go.uber.org/zap"
)

// ErrDisconnected indicates a neighborhood graph with unreachable pairs.
var ErrDisconnected = errors.New("embedding: neighborhood graph is not connected")

// Isomap embeds the dataset held by g by classical scaling of the graph
// geodesic distances over its adjacency:
//
//	B = -½·J·D²·J,  J = I − 11ᵀ/N,  X[:, c] = sqrt(λ_c)·v_c
//
// for the nComponents largest eigenpairs (λ_c, v_c) of B.
// Errors: ErrInvalidComponents, ErrDisconnected, geometry and eigen errors.
func Isomap(g *geometry.Geometry, nComponents int, engine *eigen.Engine, opts Options) (Result, error) {
	if engine == nil {
		engine = eigen.NewEngine()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	adj, err := g.ComputeAdjacency(nil, false)
	if err != nil {
		return Result{}, fmt.Errorf("embedding: %w", err)
	}
	n := adj.Rows()
	if nComponents < 1 || nComponents >= n {
		return Result{}, fmt.Errorf("embedding: %d components of %d points: %w", nComponents, n, ErrInvalidComponents)
	}
	d, err := dijkstra.AllPairs(adj)
	if err != nil {
		return Result{}, fmt.Errorf("embedding: %w", err)
	}
	b, err := doubleCenter(d)
	if err != nil {
		return Result{}, err
	}

	solver, err := engine.SelectSolver(opts.Solver, n, nComponents)
	if err != nil {
		return Result{}, fmt.Errorf("embedding: %w", err)
	}
	if solver == eigen.AMG {
		// B is dense and indefinite; AMG has nothing to coarsen.
		logger.Info("isomap runs amg requests with lobpcg")
		solver = eigen.LOBPCG
	}

	// Same strategy as Spectral: −B for block solvers, B + c·I otherwise,
	// so the wanted pairs are at the end the solver targets.
	negate := solver == eigen.LOBPCG
	op, err := matrix.ToCSR(b)
	if err != nil {
		return Result{}, fmt.Errorf("embedding: %w", err)
	}
	shift := 0.0
	if negate {
		op.Apply(func(_, _ int, v float64) float64 { return -v })
	} else {
		shift = gershgorin(op)
		if op, err = matrix.ShiftDiagonal(op, shift); err != nil {
			return Result{}, fmt.Errorf("embedding: %w", err)
		}
	}
	pairs, err := engine.Decompose(op, nComponents, eigen.DecomposeOptions{
		Solver:        solver,
		Tolerance:     opts.Tolerance,
		MaxIterations: opts.MaxIterations,
		Seed:          opts.Seed,
		Largest:       !negate,
	})
	if err != nil {
		return Result{}, fmt.Errorf("embedding: %w", err)
	}

	out, err := matrix.NewDense(n, nComponents)
	if err != nil {
		return Result{}, fmt.Errorf("embedding: %w", err)
	}
	values := make([]float64, nComponents)
	for c := 0; c < nComponents; c++ {
		values[c] = pairs.Values[c] - shift
		if negate {
			values[c] = -pairs.Values[c]
		}
		col, err := pairs.Vectors.Col(c)
		if err != nil {
			return Result{}, fmt.Errorf("embedding: %w", err)
		}
		scale := math.Sqrt(math.Max(values[c], 0))
		for i := range col {
			col[i] *= scale
		}
		if err = out.SetCol(c, col); err != nil {
			return Result{}, fmt.Errorf("embedding: %w", err)
		}
	}
	logger.Debug("isomap embedding",
		zap.Stringer("solver", solver),
		zap.Int("points", n),
		zap.Int("dimensions", nComponents),
		zap.Float64s("eigenvalues", values))

	return Result{Embedding: out, Eigenvalues: values, Solver: solver, Components: 1}, nil
}

// doubleCenter returns -½·J·(D∘D)·J. D is averaged with its transpose
// first; per-source shortest paths can differ in the last bits.
func doubleCenter(d *matrix.Dense) (*matrix.Dense, error) {
	n := d.Rows()
	b, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			dij, _ := d.At(i, j)
			dji, _ := d.At(j, i)
			if math.IsInf(dij, 1) || math.IsInf(dji, 1) {
				return nil, fmt.Errorf("%w: no path between points %d and %d", ErrDisconnected, i, j)
			}
			sq := 0.5 * (dij*dij + dji*dji)
			_ = b.Set(i, j, sq)
			_ = b.Set(j, i, sq)
		}
	}

	rowMean := make([]float64, n)
	var total float64
	for i := 0; i < n; i++ {
		row, _ := b.Row(i)
		for _, v := range row {
			rowMean[i] += v
		}
		total += rowMean[i]
		rowMean[i] /= float64(n)
	}
	mean := total / float64(n*n)
	for i := 0; i < n; i++ {
		row, _ := b.Row(i)
		for j := range row {
			row[j] = -0.5 * (row[j] - rowMean[i] - rowMean[j] + mean)
		}
	}

	return b, nil
}
