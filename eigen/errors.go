// SPDX-License-Identifier: MIT
// Package eigen: sentinel error set.
// Every failure returned by the engine matches exactly one of these via
// errors.Is; context (operation, solver, sizes) is attached with %w wrapping.

package eigen

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedSolver: the solver name is not one of
	// auto, dense, arpack, lobpcg, amg (or NullSpace got a mode it cannot serve).
	ErrUnsupportedSolver = errors.New("eigen: unsupported solver")

	// ErrUnavailableSolver: amg was requested but no multigrid backend is registered.
	ErrUnavailableSolver = errors.New("eigen: solver backend unavailable")

	// ErrSymmetryRequired: lobpcg/amg received a matrix with max|M−Mᵀ| ≥ 1e-8.
	ErrSymmetryRequired = errors.New("eigen: solver requires a symmetric matrix")

	// ErrNullSpaceComputation: NullSpace could not obtain the pairs it needs.
	// The wrapped chain carries the underlying diagnostic.
	ErrNullSpaceComputation = errors.New("eigen: null space computation failed")

	// ErrNotConverged: an iterative solver exhausted its iteration budget.
	ErrNotConverged = errors.New("eigen: iteration did not converge")

	// ErrBreakdown: a factorization failed or a basis collapsed numerically.
	ErrBreakdown = errors.New("eigen: numerical breakdown")

	// ErrInvalidCount: the requested number of pairs is < 1 or exceeds the size.
	ErrInvalidCount = errors.New("eigen: invalid number of eigenpairs")
)

// Operation tags for wrapped errors.
const (
	opSelect    = "SelectSolver"
	opDecompose = "Decompose"
	opNullSpace = "NullSpace"
	opDense     = "dense"
	opLanczos   = "arpack(lanczos)"
	opArnoldi   = "arpack(arnoldi)"
	opShiftInv  = "arpack(shift-invert)"
	opLOBPCG    = "lobpcg"
)

// eigenErrorf wraps err with an operation tag.
func eigenErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// nullSpaceError wraps a solver diagnostic so that both the
// ErrNullSpaceComputation sentinel and the original cause match errors.Is.
func nullSpaceError(solver Solver, cause error) error {
	return fmt.Errorf("%w with %s: %w; note that %s can fail when the matrix is singular or otherwise ill-behaved, solver=dense is recommended",
		ErrNullSpaceComputation, solver, cause, solver)
}
