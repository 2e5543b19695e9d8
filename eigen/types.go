// SPDX-License-Identifier: MIT

package eigen

import (
	"fmt"
	"strings"

	"github.com/chanhou/megaman/matrix"
)

// Solver names an eigen solver strategy.
type Solver int

const (
	// Auto resolves to AMG, Arpack or Dense from the problem size.
	Auto Solver = iota
	// Dense materializes the matrix and uses a full symmetric/general eigensolver.
	Dense
	// Arpack is the restarted Krylov family (Lanczos / Arnoldi, shift-invert for null spaces).
	Arpack
	// LOBPCG is the locally optimal block preconditioned conjugate gradient method.
	LOBPCG
	// AMG is LOBPCG preconditioned by an algebraic multigrid backend.
	AMG
)

var solverNames = [...]string{
	Auto:   "auto",
	Dense:  "dense",
	Arpack: "arpack",
	LOBPCG: "lobpcg",
	AMG:    "amg",
}

// String returns the lowercase solver name.
func (s Solver) String() string {
	if s < 0 || int(s) >= len(solverNames) {
		return fmt.Sprintf("solver(%d)", int(s))
	}

	return solverNames[s]
}

// ParseSolver maps a case-insensitive name to a Solver. The empty string is Auto.
// Errors: ErrUnsupportedSolver.
func ParseSolver(name string) (Solver, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Auto, nil
	}
	for i, s := range solverNames {
		if s == n {
			return Solver(i), nil
		}
	}

	return Auto, eigenErrorf(opSelect, fmt.Errorf("%q: %w", name, ErrUnsupportedSolver))
}

// valid reports whether s is one of the five known solvers.
func (s Solver) valid() bool { return s >= Auto && s <= AMG }

// Pairs holds eigenvalues and their eigenvectors, column j of Vectors
// belonging to Values[j]. Each vector has unit 2-norm and its
// largest-magnitude component is positive.
type Pairs struct {
	Values  []float64
	Vectors *matrix.Dense
}

// Len returns the number of pairs.
func (p Pairs) Len() int { return len(p.Values) }

// Preconditioner applies an approximation of A⁻¹.
type Preconditioner interface {
	// Apply writes M⁻¹·src into dst; both have length n.
	Apply(dst, src []float64)
}

// MultigridBackend builds a preconditioner for a symmetric sparse matrix.
// Registering one with WithMultigrid makes the amg solver available.
type MultigridBackend interface {
	Preconditioner(a *matrix.CSR) (Preconditioner, error)
}

// Default numeric parameters.
const (
	// SymmetryTolerance: a matrix is symmetric when max|M−Mᵀ| < SymmetryTolerance.
	SymmetryTolerance = 1e-8

	// DefaultArpackTolerance is the relative Ritz residual bound for Krylov solvers.
	DefaultArpackTolerance = 1e-10

	// DefaultArpackRestarts bounds Krylov restart cycles.
	DefaultArpackRestarts = 300

	// DefaultLOBPCGIterations bounds LOBPCG iterations.
	DefaultLOBPCGIterations = 500

	// DefaultNullSpaceTolerance and DefaultNullSpaceIterations mirror the
	// null-space defaults of the arpack path.
	DefaultNullSpaceTolerance  = 1e-6
	DefaultNullSpaceIterations = 100

	// autoSizeThreshold and autoVectorThreshold drive Auto resolution.
	autoSizeThreshold   = 200
	autoVectorThreshold = 10
)

// DecomposeOptions configures Engine.Decompose.
type DecomposeOptions struct {
	// Solver is the requested strategy (default Auto).
	Solver Solver
	// Tolerance is the convergence bound; 0 selects the solver default.
	Tolerance float64
	// MaxIterations bounds restarts/iterations; 0 selects the solver default.
	MaxIterations int
	// Seed drives every random start vector/block.
	Seed uint64
	// DropFirst requests k+1 pairs so the caller can discard the trivial one.
	DropFirst bool
	// Largest selects the largest end of the spectrum and the output order.
	Largest bool
}

// DefaultDecomposeOptions returns Solver=Auto, DropFirst=true, Largest=true.
func DefaultDecomposeOptions() DecomposeOptions {
	return DecomposeOptions{
		Solver:    Auto,
		DropFirst: true,
		Largest:   true,
	}
}

// NullSpaceOptions configures Engine.NullSpace.
type NullSpaceOptions struct {
	// KSkip is the number of lowest pairs skipped (default 1).
	KSkip int
	// Solver is the requested strategy (default Arpack).
	Solver Solver
	// Tolerance for the arpack path (default 1e-6).
	Tolerance float64
	// MaxIterations for the arpack path (default 100 restarts).
	MaxIterations int
	// Seed drives the start vector.
	Seed uint64
}

// DefaultNullSpaceOptions returns KSkip=1, Solver=Arpack, Tolerance=1e-6, MaxIterations=100.
func DefaultNullSpaceOptions() NullSpaceOptions {
	return NullSpaceOptions{
		KSkip:         1,
		Solver:        Arpack,
		Tolerance:     DefaultNullSpaceTolerance,
		MaxIterations: DefaultNullSpaceIterations,
	}
}

// NullSpaceResult holds the null-space basis and its reconstruction error
// (the sum of the eigenvalues of the returned columns). Vectors is nil when
// no columns were selected.
type NullSpaceResult struct {
	Vectors *matrix.Dense
	Error   float64
}
