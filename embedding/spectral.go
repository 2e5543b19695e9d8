// SPDX-License-Identifier: MIT

// Package embedding computes embeddings from a geometry store.
//
// Spectral (Laplacian eigenmaps / diffusion maps) takes the Laplacian with its symmetric form S and weights w
// (L = diag(1/w)·S), solves the symmetric problem
//
//	W^{-1/2} S W^{-1/2} y = λ y
//
// for the eigenvalues closest to zero and maps the vectors back with
// x = W^{-1/2} y, which are eigenvectors of L with the same eigenvalues.
// The first (trivial) pair is dropped.
//
// Isomap runs classical scaling on graph geodesic distances of the adjacency.
package embedding

import (
	"errors"
	"fmt"
	"math"

	"github.com/chanhou/megaman/bfs"
	"github.com/chanhou/megaman/eigen"
	"github.com/chanhou/megaman/geometry"
	"github.com/chanhou/megaman/matrix"
	"go.uber.org/zap"
)

// ErrInvalidComponents indicates nComponents < 1 or ≥ N.
var ErrInvalidComponents = errors.New("embedding: invalid number of components")

// Options configures Spectral.
type Options struct {
	Solver        eigen.Solver
	Tolerance     float64
	MaxIterations int
	Seed          uint64
	// KeepFirst retains the trivial leading component.
	KeepFirst bool
	Logger    *zap.Logger
}

// Result is an N×nComponents embedding with one eigenvalue per column.
type Result struct {
	Embedding   *matrix.Dense
	Eigenvalues []float64
	// Solver is the strategy actually used after selection.
	Solver eigen.Solver
	// Components is the number of connected components of the graph.
	Components int
}

// Spectral embeds the dataset held by g into nComponents dimensions.
// Errors: ErrInvalidComponents, geometry and eigen errors.
func Spectral(g *geometry.Geometry, nComponents int, engine *eigen.Engine, opts Options) (Result, error) {
	if engine == nil {
		engine = eigen.NewEngine()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lap, err := g.ComputeLaplacian(nil, false, true)
	if err != nil {
		return Result{}, fmt.Errorf("embedding: %w", err)
	}
	n := lap.Laplacian.Rows()
	if nComponents < 1 || nComponents >= n {
		return Result{}, fmt.Errorf("embedding: %d components of %d points: %w", nComponents, n, ErrInvalidComponents)
	}

	s, invSqrtW, err := symmetricOperator(lap)
	if err != nil {
		return Result{}, fmt.Errorf("embedding: %w", err)
	}
	_, components, err := bfs.Components(s)
	if err != nil {
		return Result{}, fmt.Errorf("embedding: %w", err)
	}
	if components > 1 {
		logger.Warn("graph is not connected; leading eigenvectors are component indicators",
			zap.Int("components", components))
	}
	want := nComponents
	if !opts.KeepFirst {
		want++
	}
	solver, err := engine.SelectSolver(opts.Solver, n, want)
	if err != nil {
		return Result{}, fmt.Errorf("embedding: %w", err)
	}

	// S is negative semi-definite with the wanted pairs closest to zero.
	// Block solvers get −S (smallest end); the others get S + c·I with c a
	// Gershgorin bound, which moves the wanted pairs to the largest end.
	negate := solver == eigen.LOBPCG || solver == eigen.AMG
	op := s.CloneCSR()
	shift := 0.0
	if negate {
		op.Apply(func(_, _ int, v float64) float64 { return -v })
	} else {
		shift = gershgorin(s)
		if op, err = matrix.ShiftDiagonal(op, shift); err != nil {
			return Result{}, fmt.Errorf("embedding: %w", err)
		}
	}
	pairs, err := engine.Decompose(op, nComponents, eigen.DecomposeOptions{
		Solver:        solver,
		Tolerance:     opts.Tolerance,
		MaxIterations: opts.MaxIterations,
		Seed:          opts.Seed,
		DropFirst:     !opts.KeepFirst,
		Largest:       !negate,
	})
	if err != nil {
		return Result{}, fmt.Errorf("embedding: %w", err)
	}

	first := 0
	if !opts.KeepFirst {
		first = 1
	}
	out, err := matrix.NewDense(n, nComponents)
	if err != nil {
		return Result{}, fmt.Errorf("embedding: %w", err)
	}
	values := make([]float64, nComponents)
	for c := 0; c < nComponents; c++ {
		col, err := pairs.Vectors.Col(first + c)
		if err != nil {
			return Result{}, fmt.Errorf("embedding: %w", err)
		}
		for i := range col {
			col[i] *= invSqrtW[i]
		}
		if err = out.SetCol(c, col); err != nil {
			return Result{}, fmt.Errorf("embedding: %w", err)
		}
		values[c] = pairs.Values[first+c] - shift
		if negate {
			values[c] = -pairs.Values[first+c]
		}
	}
	logger.Debug("spectral embedding",
		zap.Stringer("solver", solver),
		zap.Int("points", n),
		zap.Int("dimensions", nComponents),
		zap.Int("graph_components", components),
		zap.Float64s("eigenvalues", values))

	return Result{Embedding: out, Eigenvalues: values, Solver: solver, Components: components}, nil
}

// gershgorin bounds the spectral radius of a by its largest absolute row sum.
func gershgorin(a *matrix.CSR) float64 {
	var bound float64
	for i := 0; i < a.Rows(); i++ {
		_, vals := a.RowView(i)
		var sum float64
		for _, v := range vals {
			sum += math.Abs(v)
		}
		bound = math.Max(bound, sum)
	}

	return bound
}

// symmetricOperator returns W^{-1/2}·S·W^{-1/2} and the scaling vector.
func symmetricOperator(lap geometry.LaplacianResult) (*matrix.CSR, []float64, error) {
	if lap.Symmetric == nil || len(lap.Weights) != lap.Laplacian.Rows() {
		return nil, nil, errors.New("laplacian symmetric form and weights are required")
	}
	sym, err := matrix.ToCSR(lap.Symmetric, matrix.WithKeepZeros())
	if err != nil {
		return nil, nil, err
	}
	sym = sym.CloneCSR()
	scale := make([]float64, len(lap.Weights))
	for i, w := range lap.Weights {
		if w <= 0 || math.IsNaN(w) {
			return nil, nil, fmt.Errorf("weight %d is %g", i, w)
		}
		scale[i] = 1 / math.Sqrt(w)
	}
	if err = sym.ScaleRows(scale); err != nil {
		return nil, nil, err
	}
	if err = sym.ScaleCols(scale); err != nil {
		return nil, nil, err
	}

	return sym, scale, nil
}
